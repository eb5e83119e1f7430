package processor

import (
	"context"
	"sort"
	"strings"

	"treepress/internal/domain"
)

// TableProcessor assembles table cells deterministically: contained lines
// cluster into rows by vertical position, spans cluster into columns by
// left edge. Unclassified regions with a convincing grid are retyped to
// tables here, before any LLM table pass, so LLM processors only ever see
// already-typed tables.
type TableProcessor struct{}

func NewTableProcessor() *TableProcessor { return &TableProcessor{} }

func (p *TableProcessor) Name() string { return "table" }

func (p *TableProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch block.Type {
			case domain.BlockTypeTable:
				buildCells(block)
			case domain.BlockTypeUnknown:
				if rows := rowsOf(block); looksTabular(rows) {
					block.Type = domain.BlockTypeTable
					buildCells(block)
				}
			}
		}
	}
	return nil
}

type row struct {
	y     float64
	spans []*domain.Block
}

// rowsOf clusters the block's span leaves into visual rows.
func rowsOf(block *domain.Block) []row {
	var rows []row
	for _, line := range block.ContainedBlocks(domain.BlockTypeLine) {
		spans := line.ContainedBlocks(domain.BlockTypeSpan)
		if len(spans) == 0 {
			continue
		}
		y := line.BBox.CenterY()
		matched := false
		for i := range rows {
			if abs(rows[i].y-y) < line.BBox.Height()*0.6 {
				rows[i].spans = append(rows[i].spans, spans...)
				matched = true
				break
			}
		}
		if !matched {
			rows = append(rows, row{y: y, spans: spans})
		}
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].y < rows[b].y })
	return rows
}

// looksTabular wants at least two rows with at least two aligned columns.
func looksTabular(rows []row) bool {
	if len(rows) < 2 {
		return false
	}
	multi := 0
	for _, r := range rows {
		if len(r.spans) >= 2 {
			multi++
		}
	}
	return multi >= 2
}

// buildCells replaces the block's line children with TableCell children.
// Caption children survive the rebuild.
func buildCells(block *domain.Block) {
	rows := rowsOf(block)
	if len(rows) == 0 {
		return
	}
	columns := columnEdges(rows)

	var kept []*domain.Block
	for _, c := range block.Children {
		if c.Type == domain.BlockTypeCaption {
			kept = append(kept, c)
		}
	}
	block.Children = kept

	for ri, r := range rows {
		cells := map[int][]*domain.Block{}
		for _, span := range r.spans {
			ci := columnIndex(columns, span.BBox.X0)
			cells[ci] = append(cells[ci], span)
		}
		for ci, spans := range cells {
			bbox := spans[0].BBox
			var texts []string
			for _, s := range spans {
				bbox = bbox.Merge(s.BBox)
				texts = append(texts, s.Text)
			}
			cell := domain.NewBlock(domain.BlockTypeTableCell, bbox)
			cell.Text = strings.TrimSpace(strings.Join(texts, " "))
			cell.Row = ri
			cell.Col = ci
			cell.IsHeader = ri == 0
			block.AddChild(cell)
		}
	}

	sort.SliceStable(block.Children, func(a, b int) bool {
		ca, cb := block.Children[a], block.Children[b]
		if ca.Row != cb.Row {
			return ca.Row < cb.Row
		}
		return ca.Col < cb.Col
	})
}

// columnEdges derives column boundaries from clustered span left edges.
func columnEdges(rows []row) []float64 {
	var lefts []float64
	for _, r := range rows {
		for _, s := range r.spans {
			lefts = append(lefts, s.BBox.X0)
		}
	}
	sort.Float64s(lefts)
	var edges []float64
	for _, x := range lefts {
		if len(edges) == 0 || x-edges[len(edges)-1] > 18 {
			edges = append(edges, x)
		}
	}
	return edges
}

func columnIndex(edges []float64, x float64) int {
	idx := 0
	for i, e := range edges {
		if x >= e-9 {
			idx = i
		}
	}
	return idx
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
