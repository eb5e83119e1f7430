package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// BlankPageProcessor empties pages that carry no renderable content, so
// paginated output does not emit separator-only pages for scanner blanks.
type BlankPageProcessor struct{}

func NewBlankPageProcessor() *BlankPageProcessor { return &BlankPageProcessor{} }

func (p *BlankPageProcessor) Name() string { return "blank-page" }

func (p *BlankPageProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		if !pageHasContent(page) {
			page.Blocks = nil
		}
	}
	return nil
}

func pageHasContent(page *domain.Page) bool {
	for _, block := range page.Blocks {
		if block.Ignored {
			continue
		}
		switch block.Type {
		case domain.BlockTypeFigure, domain.BlockTypePicture:
			return true
		}
		if strings.TrimSpace(block.RawText()) != "" || strings.TrimSpace(block.Text) != "" {
			return true
		}
	}
	return false
}
