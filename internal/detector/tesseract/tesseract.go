// Package tesseract adapts the Tesseract OCR engine (via gosseract) to the
// detector boundary. Tesseract must be installed on the system; see the
// gosseract documentation for platform packages.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/draw"

	"treepress/internal/domain"
	"treepress/internal/llm"
)

// Recognizer implements port.TextRecognizer and port.LineDetector on top of
// a single gosseract client. Region geometry at the boundary is in page
// points; scale converts points to raster pixels.
type Recognizer struct {
	client *gosseract.Client
	scale  float64
}

// New creates a recognizer for rasters rendered at the given points-to-
// pixels scale. Close releases the underlying Tesseract handle.
func New(language string, scale float64) (*Recognizer, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("setting ocr language: %w", err)
		}
	}
	if scale <= 0 {
		scale = 1
	}
	return &Recognizer{client: client, scale: scale}, nil
}

func (r *Recognizer) Close() error {
	return r.client.Close()
}

func (r *Recognizer) Recognize(ctx context.Context, page image.Image, regions []domain.Rect) ([]string, error) {
	out := make([]string, len(regions))
	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		crop := cropPoints(page, region, r.scale)
		if crop == nil {
			continue
		}
		buf, err := llm.EncodeImagePNG(crop)
		if err != nil {
			return nil, err
		}
		if err := r.client.SetImageFromBytes(buf); err != nil {
			return nil, fmt.Errorf("setting ocr image: %w", err)
		}
		text, err := r.client.Text()
		if err != nil {
			return nil, fmt.Errorf("ocr failed: %w", err)
		}
		out[i] = strings.TrimSpace(text)
	}
	return out, nil
}

func (r *Recognizer) DetectLines(ctx context.Context, pages []image.Image) ([][]domain.Rect, error) {
	out := make([][]domain.Rect, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page == nil {
			continue
		}
		buf, err := llm.EncodeImagePNG(page)
		if err != nil {
			return nil, err
		}
		if err := r.client.SetImageFromBytes(buf); err != nil {
			return nil, fmt.Errorf("setting ocr image: %w", err)
		}
		boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
		if err != nil {
			return nil, fmt.Errorf("detecting lines: %w", err)
		}
		rects := make([]domain.Rect, 0, len(boxes))
		for _, b := range boxes {
			rects = append(rects, domain.Rect{
				X0: float64(b.Box.Min.X) / r.scale,
				Y0: float64(b.Box.Min.Y) / r.scale,
				X1: float64(b.Box.Max.X) / r.scale,
				Y1: float64(b.Box.Max.Y) / r.scale,
			})
		}
		out[i] = rects
	}
	return out, nil
}

func cropPoints(page image.Image, region domain.Rect, scale float64) image.Image {
	if page == nil {
		return nil
	}
	bounds := page.Bounds()
	x0 := max(int(region.X0*scale), bounds.Min.X)
	y0 := max(int(region.Y0*scale), bounds.Min.Y)
	x1 := min(int(region.X1*scale), bounds.Max.X)
	y1 := min(int(region.Y1*scale), bounds.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	draw.Copy(dst, image.Point{}, page, image.Rect(x0, y0, x1, y1), draw.Src, nil)
	return dst
}
