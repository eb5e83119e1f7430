package llmproc

import (
	"context"
	"fmt"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const mathBlockPrompt = `The image shows a paragraph containing inline mathematics. The recovered
text below may have garbled the math. Rewrite the paragraph as Markdown
with inline math in $...$ delimiters, correcting the math from the image
and leaving the prose unchanged.

Recovered text:
%s
`

var mathBlockSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"corrected_markdown": {Type: "string"},
	},
	Required: []string{"corrected_markdown"},
}

// MathBlockProcessor corrects inline math inside text blocks. A correction
// is applied only when its length is within a sane ratio of the original,
// which guards against the model rewriting the whole paragraph.
type MathBlockProcessor struct {
	base
}

func NewMathBlockProcessor(svc port.LLMService) *MathBlockProcessor {
	return &MathBlockProcessor{base{svc: svc}}
}

func (p *MathBlockProcessor) Name() string { return "llm-math-block" }

func (p *MathBlockProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeTextInlineMath {
				continue
			}
			original := block.RawText()
			if original == "" {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: fmt.Sprintf(mathBlockPrompt, original),
				Images: blockImage(page, block),
				Block:  block,
				Schema: mathBlockSchema,
			})
			md, ok := stringField(result, "corrected_markdown")
			if !ok || !saneLength(original, md) {
				continue
			}
			block.Text = md
			block.Children = nil
		}
	}
	return nil
}

func saneLength(original, corrected string) bool {
	lo := float64(len(original)) * 0.3
	hi := float64(len(original)) * 2.0
	n := float64(len(corrected))
	return n >= lo && n <= hi
}
