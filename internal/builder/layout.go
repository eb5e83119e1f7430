package builder

import (
	"context"
	"fmt"
	"image"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// labelToType maps detector layout labels onto the block enumeration.
// Labels outside the table come through as Unknown and are resolved by
// later processors.
var labelToType = map[string]domain.BlockType{
	"Text":              domain.BlockTypeText,
	"Text-inline-math":  domain.BlockTypeTextInlineMath,
	"Section-header":    domain.BlockTypeSectionHeader,
	"Page-header":       domain.BlockTypePageHeader,
	"Page-footer":       domain.BlockTypePageFooter,
	"Table":             domain.BlockTypeTable,
	"Form":              domain.BlockTypeForm,
	"Figure":            domain.BlockTypeFigure,
	"Picture":           domain.BlockTypePicture,
	"Caption":           domain.BlockTypeCaption,
	"Footnote":          domain.BlockTypeFootnote,
	"Formula":           domain.BlockTypeEquation,
	"Code":              domain.BlockTypeCode,
	"List-item":         domain.BlockTypeListItem,
	"Table-of-contents": domain.BlockTypeTableOfContents,
	"Handwriting":       domain.BlockTypeHandwriting,
	"Complex-region":    domain.BlockTypeComplexRegion,
}

// LayoutBuilder creates the pages of a document and populates each with
// typed top-level blocks from the layout detector.
type LayoutBuilder struct {
	detector port.LayoutDetector
}

func NewLayoutBuilder(detector port.LayoutDetector) *LayoutBuilder {
	return &LayoutBuilder{detector: detector}
}

func (b *LayoutBuilder) Build(ctx context.Context, provider port.Provider, doc *domain.Document) error {
	count := provider.PageCount()
	images := make([]image.Image, count)
	for i := 0; i < count; i++ {
		width, height, err := provider.PageSize(i)
		if err != nil {
			return fmt.Errorf("page %d size: %w", i, err)
		}
		img, scale, err := provider.PageImage(i)
		if err != nil {
			return fmt.Errorf("page %d raster: %w", i, err)
		}
		images[i] = img
		doc.Pages = append(doc.Pages, &domain.Page{
			Index:      i,
			Width:      width,
			Height:     height,
			Image:      img,
			ImageScale: scale,
		})
	}

	detections, err := b.detector.DetectLayout(ctx, images)
	if err != nil {
		return fmt.Errorf("layout detection: %w", err)
	}
	if len(detections) != count {
		return fmt.Errorf("layout detection returned %d pages, want %d", len(detections), count)
	}

	for i, page := range doc.Pages {
		for _, box := range detections[i] {
			t, ok := labelToType[box.Label]
			if !ok {
				t = domain.BlockTypeUnknown
			}
			page.Blocks = append(page.Blocks, domain.NewBlock(t, box.BBox))
		}
	}
	return nil
}
