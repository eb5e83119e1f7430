package port

import (
	"context"
	"image"

	"treepress/internal/domain"
)

// LayoutBox is one region detected on a page, labeled with the detector's
// own vocabulary. Builders map labels onto block types.
type LayoutBox struct {
	BBox       domain.Rect
	Label      string
	Confidence float64
}

// LayoutDetector segments page images into labeled regions. It is an
// opaque synchronous collaborator with no retry semantics of its own; any
// error propagates unmodified to the caller.
type LayoutDetector interface {
	DetectLayout(ctx context.Context, pages []image.Image) ([][]LayoutBox, error)
}

// LineDetector finds text line boxes on page images, used for pages whose
// text layer is missing or unreliable.
type LineDetector interface {
	DetectLines(ctx context.Context, pages []image.Image) ([][]domain.Rect, error)
}

// TextRecognizer performs OCR over the given regions of a page raster,
// returning one string per region (empty when nothing was recognized).
type TextRecognizer interface {
	Recognize(ctx context.Context, page image.Image, regions []domain.Rect) ([]string, error)
}
