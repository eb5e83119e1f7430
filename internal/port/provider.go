package port

import (
	"image"

	"treepress/internal/domain"
)

// ProviderSpan is a run of text with uniform styling inside a line.
type ProviderSpan struct {
	Text string
	BBox domain.Rect
	Font string
	Size float64
}

// ProviderLine is one embedded text line reported by the document provider.
type ProviderLine struct {
	BBox  domain.Rect
	Spans []ProviderSpan
}

// Provider abstracts the source document: page geometry, rasters and any
// embedded text. Implementations own native resources and must be closed.
type Provider interface {
	// PageCount returns the number of pages selected for conversion.
	PageCount() int
	// PageSize returns the page dimensions in points.
	PageSize(i int) (width, height float64, err error)
	// PageImage rasters page i. The scale of the raster relative to page
	// points is returned so callers can map geometry onto pixels.
	PageImage(i int) (img image.Image, scale float64, err error)
	// PageLines returns the embedded text lines of page i, empty when the
	// page has no text layer (scanned pages).
	PageLines(i int) ([]ProviderLine, error)
	Close() error
}
