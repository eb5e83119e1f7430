package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// IgnoreTextProcessor suppresses running headers and footers that layout
// detection labeled as body text: the same normalized first line appearing
// near the page edge on a large share of pages is furniture, not content.
type IgnoreTextProcessor struct {
	// pageFraction is the share of pages a string must appear on.
	pageFraction float64
}

func NewIgnoreTextProcessor() *IgnoreTextProcessor {
	return &IgnoreTextProcessor{pageFraction: 0.45}
}

func (p *IgnoreTextProcessor) Name() string { return "ignore-text" }

func (p *IgnoreTextProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if len(doc.Pages) < 3 {
		return nil
	}
	counts := map[string]int{}
	for _, page := range doc.Pages {
		seen := map[string]bool{}
		for _, block := range edgeBlocks(page) {
			key := normalizeFurniture(block.RawText())
			if key != "" && !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}

	threshold := int(float64(len(doc.Pages)) * p.pageFraction)
	if threshold < 2 {
		threshold = 2
	}
	for _, page := range doc.Pages {
		for _, block := range edgeBlocks(page) {
			if counts[normalizeFurniture(block.RawText())] >= threshold {
				block.Ignored = true
			}
		}
	}
	return nil
}

// edgeBlocks are text-ish blocks in the top or bottom tenth of a page.
func edgeBlocks(page *domain.Page) []*domain.Block {
	var out []*domain.Block
	for _, block := range page.Blocks {
		switch block.Type {
		case domain.BlockTypeText, domain.BlockTypePageHeader, domain.BlockTypePageFooter:
		default:
			continue
		}
		if block.BBox.Y1 < page.Height*0.1 || block.BBox.Y0 > page.Height*0.9 {
			out = append(out, block)
		}
	}
	return out
}

// normalizeFurniture collapses digits so "Page 3" and "Page 17" compare
// equal across pages.
func normalizeFurniture(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune('#')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
