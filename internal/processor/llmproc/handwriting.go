package llmproc

import (
	"context"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const handwritingPrompt = `The image shows handwritten text. Transcribe it as Markdown, keeping
line breaks where the writing has them. Use your best judgement for
illegible words rather than placeholders.
`

var handwritingSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"markdown": {Type: "string"},
	},
	Required: []string{"markdown"},
}

// HandwritingProcessor transcribes handwriting regions.
type HandwritingProcessor struct {
	base
}

func NewHandwritingProcessor(svc port.LLMService) *HandwritingProcessor {
	return &HandwritingProcessor{base{svc: svc}}
}

func (p *HandwritingProcessor) Name() string { return "llm-handwriting" }

func (p *HandwritingProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeHandwriting {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: handwritingPrompt,
				Images: blockImage(page, block),
				Block:  block,
				Schema: handwritingSchema,
			})
			md, ok := stringField(result, "markdown")
			if !ok {
				continue
			}
			block.Text = md
			block.Handwritten = true
			block.Children = nil
		}
	}
	return nil
}
