package builder

import (
	"context"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// DocumentBuilder runs the three provider-facing builder stages in fixed
// order (layout, then line, then OCR), each consuming the output of the
// previous, and returns the initial document tree. Builder errors propagate
// unmodified; there is nothing to recover from a broken detection result.
type DocumentBuilder struct {
	layout *LayoutBuilder
	line   *LineBuilder
	ocr    *OcrBuilder
}

func NewDocumentBuilder(layout *LayoutBuilder, line *LineBuilder, ocr *OcrBuilder) *DocumentBuilder {
	return &DocumentBuilder{layout: layout, line: line, ocr: ocr}
}

func (b *DocumentBuilder) Build(ctx context.Context, provider port.Provider, filepath string) (*domain.Document, error) {
	doc := &domain.Document{Filepath: filepath}
	if err := b.layout.Build(ctx, provider, doc); err != nil {
		return nil, err
	}
	if err := b.line.Build(ctx, provider, doc); err != nil {
		return nil, err
	}
	if err := b.ocr.Build(ctx, provider, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
