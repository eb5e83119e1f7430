package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

var referenceHeadings = map[string]bool{
	"references":   true,
	"bibliography": true,
	"works cited":  true,
}

// ReferenceProcessor retypes the text blocks following a references
// heading so they render as a citation list rather than paragraphs. The
// section ends at the next section header.
type ReferenceProcessor struct{}

func NewReferenceProcessor() *ReferenceProcessor { return &ReferenceProcessor{} }

func (p *ReferenceProcessor) Name() string { return "reference" }

func (p *ReferenceProcessor) Process(ctx context.Context, doc *domain.Document) error {
	inReferences := false
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch block.Type {
			case domain.BlockTypeSectionHeader:
				title := strings.ToLower(strings.TrimSpace(block.RawText()))
				inReferences = referenceHeadings[title]
			case domain.BlockTypeText:
				if inReferences {
					block.Type = domain.BlockTypeReference
				}
			}
		}
	}
	return nil
}
