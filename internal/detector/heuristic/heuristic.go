// Package heuristic provides in-process layout and line detection driven by
// the provider's embedded text geometry. It stands in for an external
// vision model on born-digital PDFs; scanned documents need a real
// detector behind the same interfaces.
package heuristic

import (
	"context"
	"image"
	"sort"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// Detector implements port.LayoutDetector and port.LineDetector from
// provider text lines. Page images are accepted for interface parity but
// not inspected.
type Detector struct {
	provider port.Provider
}

func New(provider port.Provider) *Detector {
	return &Detector{provider: provider}
}

func (d *Detector) DetectLines(ctx context.Context, pages []image.Image) ([][]domain.Rect, error) {
	out := make([][]domain.Rect, len(pages))
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := d.provider.PageLines(i)
		if err != nil {
			return nil, err
		}
		boxes := make([]domain.Rect, 0, len(lines))
		for _, l := range lines {
			boxes = append(boxes, l.BBox)
		}
		out[i] = boxes
	}
	return out, nil
}

func (d *Detector) DetectLayout(ctx context.Context, pages []image.Image) ([][]port.LayoutBox, error) {
	out := make([][]port.LayoutBox, len(pages))
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := d.provider.PageLines(i)
		if err != nil {
			return nil, err
		}
		_, height, err := d.provider.PageSize(i)
		if err != nil {
			return nil, err
		}
		out[i] = segment(lines, height)
	}
	return out, nil
}

// segment groups consecutive lines into regions split at vertical gaps
// larger than 1.8x the median line advance, then labels each region.
func segment(lines []port.ProviderLine, pageHeight float64) []port.LayoutBox {
	if len(lines) == 0 {
		return nil
	}

	gaps := make([]float64, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].BBox.Y0-lines[i-1].BBox.Y0)
	}
	gapLimit := 2.5 * medianPositive(gaps)
	if gapLimit <= 0 {
		gapLimit = pageHeight
	}

	var regions [][]port.ProviderLine
	current := []port.ProviderLine{lines[0]}
	for i := 1; i < len(lines); i++ {
		if lines[i].BBox.Y0-lines[i-1].BBox.Y0 > gapLimit {
			regions = append(regions, current)
			current = nil
		}
		current = append(current, lines[i])
	}
	regions = append(regions, current)

	median := medianFontSize(lines)
	boxes := make([]port.LayoutBox, 0, len(regions))
	for _, region := range regions {
		bbox := region[0].BBox
		for _, l := range region[1:] {
			bbox = bbox.Merge(l.BBox)
		}
		boxes = append(boxes, port.LayoutBox{
			BBox:       bbox,
			Label:      labelRegion(region, bbox, median, pageHeight),
			Confidence: 0.5,
		})
	}
	return boxes
}

func labelRegion(region []port.ProviderLine, bbox domain.Rect, medianSize, pageHeight float64) string {
	text := regionText(region)
	size := medianFontSize(region)

	switch {
	case bbox.Y1 < pageHeight*0.08 && len(region) <= 2:
		return "Page-header"
	case bbox.Y0 > pageHeight*0.92 && len(region) <= 2:
		return "Page-footer"
	case size > medianSize*1.15 && len(region) <= 3 && len(text) < 200:
		return "Section-header"
	case looksLikeList(region):
		return "List-item"
	default:
		return "Text"
	}
}

func looksLikeList(region []port.ProviderLine) bool {
	if len(region) < 2 {
		return false
	}
	markers := 0
	for _, l := range region {
		if len(l.Spans) == 0 {
			continue
		}
		t := strings.TrimSpace(l.Spans[0].Text)
		if strings.HasPrefix(t, "•") || strings.HasPrefix(t, "-") || startsNumbered(t) {
			markers++
		}
	}
	return markers*2 >= len(region)
}

func startsNumbered(t string) bool {
	i := 0
	for i < len(t) && t[i] >= '0' && t[i] <= '9' {
		i++
	}
	return i > 0 && i < len(t) && (t[i] == '.' || t[i] == ')')
}

func regionText(region []port.ProviderLine) string {
	var sb strings.Builder
	for _, l := range region {
		for _, s := range l.Spans {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func medianFontSize(lines []port.ProviderLine) float64 {
	var sizes []float64
	for _, l := range lines {
		for _, s := range l.Spans {
			if s.Size > 0 {
				sizes = append(sizes, s.Size)
			}
		}
	}
	return medianPositive(sizes)
}

func medianPositive(vals []float64) float64 {
	var pos []float64
	for _, v := range vals {
		if v > 0 {
			pos = append(pos, v)
		}
	}
	if len(pos) == 0 {
		return 0
	}
	sort.Float64s(pos)
	return pos[len(pos)/2]
}
