package processor

import (
	"context"

	"treepress/internal/domain"
)

// PageHeaderProcessor suppresses page headers and footers from output.
// They stay in the tree (the JSON renderer still exposes them) but carry
// the ignored flag every text-producing renderer honors.
type PageHeaderProcessor struct{}

func NewPageHeaderProcessor() *PageHeaderProcessor { return &PageHeaderProcessor{} }

func (p *PageHeaderProcessor) Name() string { return "page-header" }

func (p *PageHeaderProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, block := range doc.ContainedBlocks(domain.BlockTypePageHeader, domain.BlockTypePageFooter) {
		block.Ignored = true
	}
	return nil
}
