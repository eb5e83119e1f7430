package processor

import (
	"context"
	"strings"
	"unicode"

	"treepress/internal/domain"
)

var bulletMarkers = []string{"•", "◦", "▪", "‣", "·", "-", "*"}

// ListProcessor extracts list markers from item text and assigns nesting
// levels from indentation inside each group. The structure builder already
// wrapped consecutive items in groups.
type ListProcessor struct{}

func NewListProcessor() *ListProcessor { return &ListProcessor{} }

func (p *ListProcessor) Name() string { return "list" }

func (p *ListProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, group := range doc.ContainedBlocks(domain.BlockTypeListGroup) {
		items := childItems(group)
		if len(items) == 0 {
			continue
		}
		baseX := items[0].BBox.X0
		for _, item := range items {
			if item.BBox.X0 < baseX {
				baseX = item.BBox.X0
			}
		}
		for _, item := range items {
			marker, rest := splitMarker(item.RawText())
			item.ListMarker = marker
			item.Text = rest
			item.Level = int((item.BBox.X0 - baseX) / 14)
		}
	}
	// Items that never joined a group still need their markers parsed.
	for _, item := range doc.ContainedBlocks(domain.BlockTypeListItem) {
		if item.ListMarker == "" && item.Text == "" {
			marker, rest := splitMarker(item.RawText())
			item.ListMarker = marker
			item.Text = rest
		}
	}
	return nil
}

func childItems(group *domain.Block) []*domain.Block {
	var items []*domain.Block
	for _, c := range group.Children {
		if c.Type == domain.BlockTypeListItem {
			items = append(items, c)
		}
	}
	return items
}

// splitMarker peels a bullet or "1." / "a)" style marker off item text.
func splitMarker(text string) (string, string) {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	for _, m := range bulletMarkers {
		if strings.HasPrefix(s, m) {
			return m, strings.TrimSpace(strings.TrimPrefix(s, m))
		}
	}
	for i, r := range s {
		if unicode.IsDigit(r) || (i == 0 && unicode.IsLetter(r)) {
			continue
		}
		if i > 0 && (r == '.' || r == ')') {
			return s[:i+1], strings.TrimSpace(s[i+1:])
		}
		break
	}
	return "", s
}
