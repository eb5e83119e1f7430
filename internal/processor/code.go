package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// CodeProcessor identifies code listings by monospace fonts and assembles
// their text with newlines preserved, so rendering can fence them verbatim.
type CodeProcessor struct{}

func NewCodeProcessor() *CodeProcessor { return &CodeProcessor{} }

func (p *CodeProcessor) Name() string { return "code" }

func (p *CodeProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch block.Type {
			case domain.BlockTypeCode:
				block.Text = codeText(block)
			case domain.BlockTypeText, domain.BlockTypeUnknown:
				if looksMonospace(block) {
					block.Type = domain.BlockTypeCode
					block.Text = codeText(block)
				}
			}
		}
	}
	return nil
}

// codeText joins lines verbatim, recreating relative indentation from span
// geometry where the text layer dropped leading whitespace.
func codeText(block *domain.Block) string {
	lines := block.ContainedBlocks(domain.BlockTypeLine)
	if len(lines) == 0 {
		return block.RawText()
	}
	baseX := lines[0].BBox.X0
	for _, l := range lines {
		if l.BBox.X0 < baseX {
			baseX = l.BBox.X0
		}
	}
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		text := l.RawText()
		if !strings.HasPrefix(text, " ") && l.BBox.Height() > 0 {
			indent := int((l.BBox.X0 - baseX) / (l.BBox.Height() * 0.5))
			if indent > 0 && indent < 40 {
				sb.WriteString(strings.Repeat(" ", indent))
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func looksMonospace(block *domain.Block) bool {
	spans := block.ContainedBlocks(domain.BlockTypeSpan)
	if len(spans) == 0 {
		return false
	}
	mono := 0
	for _, s := range spans {
		font := strings.ToLower(s.Font)
		if strings.Contains(font, "mono") || strings.Contains(font, "courier") ||
			strings.Contains(font, "consolas") {
			mono++
		}
	}
	return mono*2 >= len(spans)
}
