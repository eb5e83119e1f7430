package processor

import (
	"context"
	"sort"

	"treepress/internal/domain"
)

// BlockquoteProcessor retypes indented, narrowed text regions as
// blockquotes. Indentation is measured against the modal left margin of
// the page's text blocks.
type BlockquoteProcessor struct{}

func NewBlockquoteProcessor() *BlockquoteProcessor { return &BlockquoteProcessor{} }

func (p *BlockquoteProcessor) Name() string { return "blockquote" }

func (p *BlockquoteProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		margin, ok := textMargin(page)
		if !ok {
			continue
		}
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeText {
				continue
			}
			indented := block.BBox.X0 > margin+12
			narrowed := block.BBox.Width() < page.Width*0.75
			if indented && narrowed {
				block.Type = domain.BlockTypeBlockquote
			}
		}
	}
	return nil
}

// textMargin returns the median left edge of the text blocks on a page.
func textMargin(page *domain.Page) (float64, bool) {
	var lefts []float64
	for _, block := range page.Blocks {
		if block.Type == domain.BlockTypeText {
			lefts = append(lefts, block.BBox.X0)
		}
	}
	if len(lefts) < 3 {
		return 0, false
	}
	sort.Float64s(lefts)
	return lefts[len(lefts)/2], true
}
