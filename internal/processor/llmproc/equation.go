package llmproc

import (
	"context"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const equationPrompt = `The image shows a display equation. Transcribe it as LaTeX. Return only
the equation body, without surrounding $$ delimiters.
`

var equationSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"latex_equation": {Type: "string"},
	},
	Required: []string{"latex_equation"},
}

// EquationProcessor transcribes display equations to LaTeX. It handles
// equations the deterministic pass left empty, and re-transcribes ones
// whose recovered latex looks like a garbled extraction.
type EquationProcessor struct {
	base
}

func NewEquationProcessor(svc port.LLMService) *EquationProcessor {
	return &EquationProcessor{base{svc: svc}}
}

func (p *EquationProcessor) Name() string { return "llm-equation" }

func (p *EquationProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeEquation {
				continue
			}
			if block.Latex != "" && !suspiciousLatex(block.Latex) {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: equationPrompt,
				Images: blockImage(page, block),
				Block:  block,
				Schema: equationSchema,
			})
			latex, ok := stringField(result, "latex_equation")
			if !ok {
				continue
			}
			block.Latex = latex
		}
	}
	return nil
}

// suspiciousLatex flags transcriptions that look like mangled extraction
// rather than math: replacement characters, unbalanced grouping, or a
// longer body with no math structure at all.
func suspiciousLatex(s string) bool {
	if strings.ContainsRune(s, '�') {
		return true
	}
	if strings.Count(s, "{") != strings.Count(s, "}") {
		return true
	}
	if len([]rune(s)) > 8 && !strings.ContainsAny(s, `\=^_+*/<>∑∏∫√±×÷≤≥≈`) {
		return true
	}
	return false
}
