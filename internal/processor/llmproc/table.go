package llmproc

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const tablePrompt = `You are given an image of a table and the cell text that was recovered from it.
Produce the complete, corrected table as a single HTML <table> element.
Preserve all data; use <th> for header cells. Recovered cells:

`

var tableSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"html_table": {Type: "string", Description: "The corrected table as HTML."},
	},
	Required: []string{"html_table"},
}

// TableProcessor asks the model to reconstruct tables whose deterministic
// cell assembly came out ragged, then rebuilds the cell children from the
// returned HTML.
type TableProcessor struct {
	base
}

func NewTableProcessor(svc port.LLMService) *TableProcessor {
	return &TableProcessor{base{svc: svc}}
}

func (p *TableProcessor) Name() string { return "llm-table" }

func (p *TableProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeTable || !ragged(block) {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: tablePrompt + cellDump(block),
				Images: blockImage(page, block),
				Block:  block,
				Schema: tableSchema,
			})
			markup, ok := stringField(result, "html_table")
			if !ok {
				continue
			}
			cells := parseHTMLTable(markup)
			if len(cells) == 0 {
				continue
			}
			applyCells(block, cells)
		}
	}
	return nil
}

// ragged flags tables whose rows disagree on column count or that have no
// cells at all.
func ragged(block *domain.Block) bool {
	counts := map[int]int{}
	for _, c := range block.Children {
		if c.Type == domain.BlockTypeTableCell {
			counts[c.Row]++
		}
	}
	if len(counts) == 0 {
		return true
	}
	first := -1
	for _, n := range counts {
		if first == -1 {
			first = n
		} else if n != first {
			return true
		}
	}
	return false
}

func cellDump(block *domain.Block) string {
	var sb strings.Builder
	for _, c := range block.Children {
		if c.Type == domain.BlockTypeTableCell {
			sb.WriteString(c.Text)
			sb.WriteString(" | ")
		}
	}
	if sb.Len() == 0 {
		return block.RawText()
	}
	return sb.String()
}

type htmlCell struct {
	row, col int
	text     string
	header   bool
	colSpan  int
	rowSpan  int
}

// parseHTMLTable walks a returned <table> element into positioned cells.
func parseHTMLTable(markup string) []htmlCell {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	var cells []htmlCell
	row := -1
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "tr":
				row++
				col := 0
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
						continue
					}
					cells = append(cells, htmlCell{
						row:     row,
						col:     col,
						text:    strings.TrimSpace(nodeText(c)),
						header:  c.Data == "th",
						colSpan: intAttr(c, "colspan"),
						rowSpan: intAttr(c, "rowspan"),
					})
					col++
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return cells
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func intAttr(n *html.Node, key string) int {
	for _, a := range n.Attr {
		if a.Key == key {
			v := 0
			for _, r := range a.Val {
				if r < '0' || r > '9' {
					return 0
				}
				v = v*10 + int(r-'0')
			}
			return v
		}
	}
	return 0
}

// applyCells swaps the block's cells for the corrected set. Non-cell
// children (captions) are kept; nothing is orphaned.
func applyCells(block *domain.Block, cells []htmlCell) {
	var kept []*domain.Block
	for _, c := range block.Children {
		if c.Type != domain.BlockTypeTableCell {
			kept = append(kept, c)
		}
	}
	block.Children = kept
	for _, hc := range cells {
		cell := domain.NewBlock(domain.BlockTypeTableCell, block.BBox)
		cell.Text = hc.text
		cell.Row = hc.row
		cell.Col = hc.col
		cell.IsHeader = hc.header
		if hc.colSpan > 1 {
			cell.ColSpan = hc.colSpan
		}
		if hc.rowSpan > 1 {
			cell.RowSpan = hc.rowSpan
		}
		block.AddChild(cell)
	}
	block.HTML = ""
}
