package llmproc

import (
	"context"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const complexPrompt = `The image shows a region of a page whose layout was too complex to parse
automatically. Transcribe it as clean Markdown, preserving reading order,
headings, lists and emphasis.
`

var complexSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"corrected_markdown": {Type: "string"},
	},
	Required: []string{"corrected_markdown"},
}

// ComplexRegionProcessor transcribes complex-region blocks into Markdown.
type ComplexRegionProcessor struct {
	base
}

func NewComplexRegionProcessor(svc port.LLMService) *ComplexRegionProcessor {
	return &ComplexRegionProcessor{base{svc: svc}}
}

func (p *ComplexRegionProcessor) Name() string { return "llm-complex-region" }

func (p *ComplexRegionProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeComplexRegion {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: complexPrompt,
				Images: blockImage(page, block),
				Block:  block,
				Schema: complexSchema,
			})
			md, ok := stringField(result, "corrected_markdown")
			if !ok {
				continue
			}
			block.Text = md
			block.Children = nil
		}
	}
	return nil
}
