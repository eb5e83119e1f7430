package processor

import (
	"context"
	"strconv"
	"strings"

	"treepress/internal/domain"
)

// LineNumbersProcessor strips margin line numbering (common in legal and
// review documents). A page qualifies when most of its lines begin with
// strictly increasing integers.
type LineNumbersProcessor struct{}

func NewLineNumbersProcessor() *LineNumbersProcessor { return &LineNumbersProcessor{} }

func (p *LineNumbersProcessor) Name() string { return "line-numbers" }

func (p *LineNumbersProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		lines := page.ContainedBlocks(domain.BlockTypeLine)
		if pageIsLineNumbered(lines) {
			for _, line := range lines {
				stripLeadingNumber(line)
			}
		}
	}
	return nil
}

func pageIsLineNumbered(lines []*domain.Block) bool {
	if len(lines) < 10 {
		return false
	}
	numbered := 0
	prev := -1
	for _, line := range lines {
		n, ok := leadingNumber(line)
		if ok && n > prev {
			numbered++
			prev = n
		}
	}
	return numbered*5 >= len(lines)*3
}

func leadingNumber(line *domain.Block) (int, bool) {
	text := strings.TrimSpace(line.RawText())
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripLeadingNumber(line *domain.Block) {
	if _, ok := leadingNumber(line); !ok {
		return
	}
	for _, span := range line.ContainedBlocks(domain.BlockTypeSpan) {
		trimmed := strings.TrimLeft(span.Text, " ")
		i := 0
		for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
			i++
		}
		if i == 0 {
			return
		}
		span.Text = strings.TrimLeft(trimmed[i:], " ")
		return
	}
}
