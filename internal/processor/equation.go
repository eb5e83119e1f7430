package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// EquationProcessor normalizes equation text into the latex attribute:
// delimiters stripped, whitespace collapsed. LLM improvement, when
// enabled, runs later and only touches equations this pass left doubtful.
type EquationProcessor struct{}

func NewEquationProcessor() *EquationProcessor { return &EquationProcessor{} }

func (p *EquationProcessor) Name() string { return "equation" }

func (p *EquationProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, block := range doc.ContainedBlocks(domain.BlockTypeEquation) {
		if block.Latex != "" {
			continue
		}
		block.Latex = normalizeLatex(block.RawText())
	}
	return nil
}

func normalizeLatex(raw string) string {
	s := strings.TrimSpace(raw)
	for _, delim := range []string{"$$", `\[`, `\]`, `\(`, `\)`} {
		s = strings.ReplaceAll(s, delim, " ")
	}
	s = strings.Trim(s, "$ ")
	return strings.Join(strings.Fields(s), " ")
}
