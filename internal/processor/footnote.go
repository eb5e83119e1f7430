package processor

import (
	"context"
	"strings"
	"unicode"

	"treepress/internal/domain"
)

// FootnoteProcessor finds footnotes missed by layout detection (marker
// prefix plus position near the page bottom), retypes them, and sinks them
// to the end of their page so they render after the body.
type FootnoteProcessor struct{}

func NewFootnoteProcessor() *FootnoteProcessor { return &FootnoteProcessor{} }

func (p *FootnoteProcessor) Name() string { return "footnote" }

func (p *FootnoteProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type == domain.BlockTypeText && isFootnote(block, page) {
				block.Type = domain.BlockTypeFootnote
			}
		}
		sinkFootnotes(page)
	}
	return nil
}

func isFootnote(block *domain.Block, page *domain.Page) bool {
	if block.BBox.Y0 < page.Height*0.75 {
		return false
	}
	text := strings.TrimSpace(block.RawText())
	if text == "" {
		return false
	}
	r := []rune(text)[0]
	return unicode.IsDigit(r) || r == '*' || r == '†' || r == '‡'
}

func sinkFootnotes(page *domain.Page) {
	var body, notes []*domain.Block
	for _, block := range page.Blocks {
		if block.Type == domain.BlockTypeFootnote {
			notes = append(notes, block)
		} else {
			body = append(body, block)
		}
	}
	if len(notes) == 0 {
		return
	}
	page.Blocks = append(body, notes...)
}
