package processor

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"treepress/internal/domain"
)

// TextProcessor finalizes prose: lines join into paragraphs with
// end-of-line hyphenation undone, text is NFKC-normalized, and soft
// hyphens are dropped. Runs after the table and form passes so reclaimed
// regions are no longer treated as prose.
type TextProcessor struct{}

func NewTextProcessor() *TextProcessor { return &TextProcessor{} }

func (p *TextProcessor) Name() string { return "text" }

var proseTypes = []domain.BlockType{
	domain.BlockTypeText,
	domain.BlockTypeTextInlineMath,
	domain.BlockTypeBlockquote,
	domain.BlockTypeFootnote,
	domain.BlockTypeSectionHeader,
	domain.BlockTypeCaption,
	domain.BlockTypeReference,
}

func (p *TextProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, block := range doc.ContainedBlocks(proseTypes...) {
		if block.Text != "" {
			block.Text = normalizeText(block.Text)
			continue
		}
		lines := block.ContainedBlocks(domain.BlockTypeLine)
		if len(lines) == 0 {
			block.Text = normalizeText(block.RawText())
			block.Children = nil
			continue
		}
		texts := make([]string, 0, len(lines))
		for _, l := range lines {
			texts = append(texts, l.RawText())
		}
		// Lines are consumed; RawText must return the joined paragraph
		// from here on so renderers see the normalized text.
		block.Text = normalizeText(joinLines(texts))
		block.Children = nil
	}
	return nil
}

// joinLines merges hard-wrapped lines into a paragraph, undoing
// end-of-line hyphenation.
func joinLines(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString(line)
			continue
		}
		prev := sb.String()
		if strings.HasSuffix(prev, "-") && !strings.HasSuffix(prev, "--") {
			// Undo hyphenation: drop the hyphen and join directly.
			joined := strings.TrimSuffix(prev, "-") + line
			sb.Reset()
			sb.WriteString(joined)
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(line)
	}
	return sb.String()
}

func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "­", "") // soft hyphen
	return strings.TrimSpace(s)
}
