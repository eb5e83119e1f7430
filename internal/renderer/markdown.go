package renderer

import (
	"fmt"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// MarkdownRenderer walks the page blocks in order and emits GitHub-flavored
// Markdown. Per-type rendering can be overridden block type by block type.
type MarkdownRenderer struct {
	paginate  bool
	overrides map[domain.BlockType]port.BlockRenderFunc
}

func NewMarkdownRenderer(paginate bool, overrides map[domain.BlockType]port.BlockRenderFunc) *MarkdownRenderer {
	return &MarkdownRenderer{paginate: paginate, overrides: overrides}
}

func (r *MarkdownRenderer) Render(doc *domain.Document) (*port.RenderResult, error) {
	var sb strings.Builder
	for i, page := range doc.Pages {
		if r.paginate && i > 0 {
			sb.WriteString(pageSeparator(page.Index))
		}
		for _, block := range page.Blocks {
			text := r.renderBlock(doc, block)
			if text == "" {
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
	return &port.RenderResult{
		Format:   "markdown",
		Data:     []byte(strings.TrimRight(sb.String(), "\n") + "\n"),
		Metadata: doc.Metadata,
		TOC:      doc.TOC,
	}, nil
}

func pageSeparator(index int) string {
	return fmt.Sprintf("\n\n{%d}------------------------------------------------\n\n", index)
}

func (r *MarkdownRenderer) renderBlock(doc *domain.Document, b *domain.Block) string {
	if b.Ignored {
		return ""
	}
	if fn, ok := r.overrides[b.Type]; ok {
		return fn(doc, b)
	}
	switch b.Type {
	case domain.BlockTypeSectionHeader:
		return headingMarkdown(b)
	case domain.BlockTypeText, domain.BlockTypeTextInlineMath, domain.BlockTypeCaption,
		domain.BlockTypeFootnote, domain.BlockTypeReference, domain.BlockTypeHandwriting,
		domain.BlockTypeComplexRegion, domain.BlockTypeUnknown:
		return b.RawText()
	case domain.BlockTypeBlockquote:
		return blockquoteMarkdown(b)
	case domain.BlockTypeCode:
		return codeMarkdown(b)
	case domain.BlockTypeEquation:
		return equationMarkdown(b)
	case domain.BlockTypeListGroup:
		return r.listMarkdown(doc, b)
	case domain.BlockTypeListItem:
		return listItemMarkdown(b, 0)
	case domain.BlockTypeTable:
		return r.tableMarkdown(doc, b)
	case domain.BlockTypeForm:
		if b.HTML != "" {
			return b.HTML
		}
		return b.RawText()
	case domain.BlockTypePicture, domain.BlockTypeFigure:
		return figureMarkdown(b)
	case domain.BlockTypeTableOfContents:
		return b.RawText()
	case domain.BlockTypePageHeader, domain.BlockTypePageFooter:
		// Ignored by the page-header processor; reaching here means the
		// processor did not run, so keep the text.
		return b.RawText()
	default:
		return b.RawText()
	}
}

func headingMarkdown(b *domain.Block) string {
	level := b.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + strings.TrimSpace(b.RawText())
}

func blockquoteMarkdown(b *domain.Block) string {
	lines := strings.Split(b.RawText(), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func codeMarkdown(b *domain.Block) string {
	return "```" + b.Language + "\n" + b.RawText() + "\n```"
}

func equationMarkdown(b *domain.Block) string {
	if b.Latex != "" {
		return "$$" + b.Latex + "$$"
	}
	return b.RawText()
}

func figureMarkdown(b *domain.Block) string {
	desc := b.Description
	if desc == "" {
		desc = strings.TrimSpace(b.RawText())
	}
	out := "![" + strings.ReplaceAll(desc, "\n", " ") + "]()"
	for _, c := range b.Children {
		if c.Type == domain.BlockTypeCaption && c.RawText() != "" {
			out += "\n\n" + c.RawText()
		}
	}
	return out
}

func (r *MarkdownRenderer) listMarkdown(doc *domain.Document, b *domain.Block) string {
	var lines []string
	for _, item := range b.Children {
		if item.Type != domain.BlockTypeListItem {
			continue
		}
		lines = append(lines, listItemMarkdown(item, item.Level))
	}
	return strings.Join(lines, "\n")
}

func listItemMarkdown(b *domain.Block, level int) string {
	marker := b.ListMarker
	if marker == "" {
		marker = "-"
	}
	indent := strings.Repeat("  ", max(level-1, 0))
	text := strings.ReplaceAll(strings.TrimSpace(b.RawText()), "\n", " ")
	return indent + marker + " " + text
}

// tableMarkdown emits a pipe table when the cell grid is rectangular with
// no spans, and falls back to the block's HTML otherwise.
func (r *MarkdownRenderer) tableMarkdown(doc *domain.Document, b *domain.Block) string {
	grid, cols, pipeSafe := tableGrid(b)
	var caption string
	for _, c := range b.Children {
		if c.Type == domain.BlockTypeCaption && c.RawText() != "" {
			caption = c.RawText()
		}
	}
	var body string
	switch {
	case pipeSafe && len(grid) > 0:
		body = pipeTable(grid, cols)
	case b.HTML != "":
		body = b.HTML
	default:
		body = htmlTable(b)
	}
	if caption != "" {
		return body + "\n\n" + caption
	}
	return body
}

func tableGrid(b *domain.Block) (rows map[int]map[int]string, cols int, pipeSafe bool) {
	rows = map[int]map[int]string{}
	pipeSafe = true
	for _, c := range b.Children {
		if c.Type != domain.BlockTypeTableCell {
			continue
		}
		if c.RowSpan > 1 || c.ColSpan > 1 || strings.Contains(c.Text, "\n") {
			pipeSafe = false
		}
		if rows[c.Row] == nil {
			rows[c.Row] = map[int]string{}
		}
		rows[c.Row][c.Col] = c.Text
		if c.Col+1 > cols {
			cols = c.Col + 1
		}
	}
	return rows, cols, pipeSafe
}

func pipeTable(rows map[int]map[int]string, cols int) string {
	maxRow := -1
	for r := range rows {
		if r > maxRow {
			maxRow = r
		}
	}
	var sb strings.Builder
	for r := 0; r <= maxRow; r++ {
		sb.WriteString("|")
		for c := 0; c < cols; c++ {
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(rows[r][c], "|", "\\|"))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		if r == 0 {
			sb.WriteString("|")
			sb.WriteString(strings.Repeat("---|", cols))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func htmlTable(b *domain.Block) string {
	byRow := map[int][]*domain.Block{}
	maxRow := -1
	for _, c := range b.Children {
		if c.Type != domain.BlockTypeTableCell {
			continue
		}
		byRow[c.Row] = append(byRow[c.Row], c)
		if c.Row > maxRow {
			maxRow = c.Row
		}
	}
	var sb strings.Builder
	sb.WriteString("<table>")
	for r := 0; r <= maxRow; r++ {
		sb.WriteString("<tr>")
		for _, c := range byRow[r] {
			tag := "td"
			if c.IsHeader {
				tag = "th"
			}
			sb.WriteString("<" + tag)
			if c.ColSpan > 1 {
				fmt.Fprintf(&sb, ` colspan="%d"`, c.ColSpan)
			}
			if c.RowSpan > 1 {
				fmt.Fprintf(&sb, ` rowspan="%d"`, c.RowSpan)
			}
			sb.WriteString(">")
			sb.WriteString(strings.ReplaceAll(strings.ReplaceAll(c.Text, "<", "&lt;"), ">", "&gt;"))
			sb.WriteString("</" + tag + ">")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")
	return sb.String()
}
