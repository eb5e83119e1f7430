package llmproc

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/domain"
	"treepress/internal/port"
	"treepress/internal/processor"
)

type stubService struct {
	result map[string]any
	calls  int
	last   port.LLMRequest
}

func (s *stubService) Invoke(ctx context.Context, req port.LLMRequest) map[string]any {
	s.calls++
	s.last = req
	if s.result == nil {
		return map[string]any{}
	}
	return s.result
}

func pageWith(blocks ...*domain.Block) *domain.Page {
	return &domain.Page{
		Index:      0,
		Width:      612,
		Height:     792,
		Blocks:     blocks,
		Image:      image.NewRGBA(image.Rect(0, 0, 816, 1056)),
		ImageScale: 96.0 / 72.0,
	}
}

func docWith(pages ...*domain.Page) *domain.Document {
	return &domain.Document{Filepath: "test.pdf", Pages: pages}
}

func raggedTable() *domain.Block {
	table := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 200})
	for _, c := range []struct {
		row, col int
		text     string
	}{{0, 0, "Name"}, {0, 1, "Score"}, {1, 0, "Ada"}} {
		cell := domain.NewBlock(domain.BlockTypeTableCell, table.BBox)
		cell.Row, cell.Col, cell.Text = c.row, c.col, c.text
		table.AddChild(cell)
	}
	return table
}

func TestProcessorsNoOpWithNilService(t *testing.T) {
	procs := []port.Processor{
		NewTableProcessor(nil),
		NewTableMergeProcessor(nil),
		NewFormProcessor(nil),
		NewComplexRegionProcessor(nil),
		NewImageDescriptionProcessor(nil),
		NewEquationProcessor(nil),
		NewHandwritingProcessor(nil),
		NewMathBlockProcessor(nil),
		NewSectionHeaderProcessor(nil),
		NewPageCorrectionProcessor(nil),
	}
	eq := domain.NewBlock(domain.BlockTypeEquation, domain.Rect{X0: 72, Y0: 100, X1: 200, Y1: 130})
	doc := docWith(pageWith(raggedTable(), eq))

	for _, p := range procs {
		require.NoError(t, p.Process(context.Background(), doc))
	}

	assert.Empty(t, eq.Latex)
	assert.Len(t, doc.Pages[0].Blocks, 2)
}

func TestTableProcessorRebuildsFromHTML(t *testing.T) {
	svc := &stubService{result: map[string]any{
		"html_table": `<table>
			<tr><th>Name</th><th>Score</th></tr>
			<tr><td>Ada</td><td>92</td></tr>
		</table>`,
	}}
	table := raggedTable()
	doc := docWith(pageWith(table))

	require.NoError(t, NewTableProcessor(svc).Process(context.Background(), doc))

	require.Equal(t, 1, svc.calls)
	cells := table.ContainedBlocks(domain.BlockTypeTableCell)
	require.Len(t, cells, 4)
	assert.Equal(t, "Name", cells[0].Text)
	assert.True(t, cells[0].IsHeader)
	assert.Equal(t, "92", cells[3].Text)
	assert.Equal(t, 1, cells[3].Row)
	assert.False(t, cells[3].IsHeader)
}

func TestTableProcessorSkipsWellFormedTables(t *testing.T) {
	svc := &stubService{}
	table := raggedTable()
	// Complete the grid so every row has the same cell count.
	cell := domain.NewBlock(domain.BlockTypeTableCell, table.BBox)
	cell.Row, cell.Col, cell.Text = 1, 1, "92"
	table.AddChild(cell)
	doc := docWith(pageWith(table))

	require.NoError(t, NewTableProcessor(svc).Process(context.Background(), doc))

	assert.Zero(t, svc.calls)
}

func TestTableProcessorIgnoresEmptyResult(t *testing.T) {
	svc := &stubService{}
	table := raggedTable()
	doc := docWith(pageWith(table))

	require.NoError(t, NewTableProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls)
	assert.Len(t, table.ContainedBlocks(domain.BlockTypeTableCell), 3)
}

func TestFormProcessorWritesHTML(t *testing.T) {
	svc := &stubService{result: map[string]any{
		"form_values": []any{
			map[string]any{"label": "Name", "value": "Ada"},
			map[string]any{"label": "Date", "value": ""},
		},
	}}
	form := domain.NewBlock(domain.BlockTypeForm, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 300})
	doc := docWith(pageWith(form))

	require.NoError(t, NewFormProcessor(svc).Process(context.Background(), doc))

	assert.Contains(t, form.HTML, "<td>Name</td><td>Ada</td>")
	assert.Contains(t, form.HTML, "<td>Date</td><td></td>")
	require.NotNil(t, svc.last.Schema)
	assert.Contains(t, svc.last.Schema.Defs, "FormValue")
}

func TestEquationProcessorSetsLatex(t *testing.T) {
	svc := &stubService{result: map[string]any{"latex_equation": "E = mc^2"}}
	eq := domain.NewBlock(domain.BlockTypeEquation, domain.Rect{X0: 72, Y0: 100, X1: 300, Y1: 140})
	doc := docWith(pageWith(eq))

	require.NoError(t, NewEquationProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "E = mc^2", eq.Latex)
}

func TestEquationProcessorSkipsAlreadyTranscribed(t *testing.T) {
	svc := &stubService{result: map[string]any{"latex_equation": "other"}}
	eq := domain.NewBlock(domain.BlockTypeEquation, domain.Rect{X0: 72, Y0: 100, X1: 300, Y1: 140})
	eq.Latex = "x"
	doc := docWith(pageWith(eq))

	require.NoError(t, NewEquationProcessor(svc).Process(context.Background(), doc))

	assert.Zero(t, svc.calls)
	assert.Equal(t, "x", eq.Latex)
}

func TestEquationProcessorRetranscribesGarbledLatex(t *testing.T) {
	svc := &stubService{result: map[string]any{"latex_equation": `\sum_{i=1}^{n} x_i`}}
	eq := domain.NewBlock(domain.BlockTypeEquation, domain.Rect{X0: 72, Y0: 100, X1: 300, Y1: 140})
	eq.Latex = "n i1 sum x i" // extraction lost every operator
	doc := docWith(pageWith(eq))

	require.NoError(t, NewEquationProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, `\sum_{i=1}^{n} x_i`, eq.Latex)
}

func TestSuspiciousLatex(t *testing.T) {
	assert.True(t, suspiciousLatex("x � y"))
	assert.True(t, suspiciousLatex(`\frac{a}{b`))
	assert.True(t, suspiciousLatex("n i1 sum x i"))
	assert.False(t, suspiciousLatex("E = mc^2"))
	assert.False(t, suspiciousLatex(`\alpha + \beta`))
	assert.False(t, suspiciousLatex("x"))
}

func TestImageDescriptionFillsEmptyOnly(t *testing.T) {
	svc := &stubService{result: map[string]any{"image_description": "a scatter plot"}}
	pic := domain.NewBlock(domain.BlockTypePicture, domain.Rect{X0: 72, Y0: 100, X1: 300, Y1: 300})
	described := domain.NewBlock(domain.BlockTypeFigure, domain.Rect{X0: 72, Y0: 400, X1: 300, Y1: 600})
	described.Description = "already set"
	doc := docWith(pageWith(pic, described))

	require.NoError(t, NewImageDescriptionProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "a scatter plot", pic.Description)
	assert.Equal(t, "already set", described.Description)
}

func TestMathBlockRejectsRunawayRewrite(t *testing.T) {
	svc := &stubService{result: map[string]any{
		"corrected_markdown": "this rewrite is far longer than the original text could justify, repeating itself over and over and over again well past the sanity bound",
	}}
	block := domain.NewBlock(domain.BlockTypeTextInlineMath, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	block.Text = "short $x$"
	doc := docWith(pageWith(block))

	require.NoError(t, NewMathBlockProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "short $x$", block.Text)
}

func TestMathBlockAppliesSaneRewrite(t *testing.T) {
	svc := &stubService{result: map[string]any{"corrected_markdown": "short $x^2$"}}
	block := domain.NewBlock(domain.BlockTypeTextInlineMath, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	block.Text = "short x 2"
	doc := docWith(pageWith(block))

	require.NoError(t, NewMathBlockProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "short $x^2$", block.Text)
}

func TestSectionHeaderAppliesLevels(t *testing.T) {
	h1 := domain.NewBlock(domain.BlockTypeSectionHeader, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 120})
	h1.Text = "Intro"
	h1.Level = 2
	h2 := domain.NewBlock(domain.BlockTypeSectionHeader, domain.Rect{X0: 72, Y0: 300, X1: 400, Y1: 320})
	h2.Text = "Detail"
	h2.Level = 1
	svc := &stubService{result: map[string]any{
		"section_headers": []any{
			map[string]any{"id": h1.ID.String(), "level": float64(1)},
			map[string]any{"id": h2.ID.String(), "level": float64(2)},
		},
	}}
	doc := docWith(pageWith(h1, h2))

	require.NoError(t, NewSectionHeaderProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls, "one document-wide call")
	assert.Equal(t, 1, h1.Level)
	assert.Equal(t, 2, h2.Level)
}

func TestSectionHeaderIgnoresBogusEntries(t *testing.T) {
	h1 := domain.NewBlock(domain.BlockTypeSectionHeader, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 120})
	h1.Text = "Intro"
	h1.Level = 1
	h2 := domain.NewBlock(domain.BlockTypeSectionHeader, domain.Rect{X0: 72, Y0: 300, X1: 400, Y1: 320})
	h2.Text = "More"
	h2.Level = 2
	svc := &stubService{result: map[string]any{
		"section_headers": []any{
			map[string]any{"id": "not-a-known-id", "level": float64(3)},
			map[string]any{"id": h1.ID.String(), "level": float64(9)},
		},
	}}
	doc := docWith(pageWith(h1, h2))

	require.NoError(t, NewSectionHeaderProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, h1.Level)
	assert.Equal(t, 2, h2.Level)
}

func TestTableMergeMovesCells(t *testing.T) {
	first := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 600, X1: 400, Y1: 780})
	for i := 0; i < 2; i++ {
		c := domain.NewBlock(domain.BlockTypeTableCell, first.BBox)
		c.Row, c.Col = i, 0
		c.Text = "a"
		first.AddChild(c)
	}
	second := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 40, X1: 400, Y1: 180})
	c := domain.NewBlock(domain.BlockTypeTableCell, second.BBox)
	c.Row, c.Col = 0, 0
	c.Text = "b"
	second.AddChild(c)

	svc := &stubService{result: map[string]any{"decision": "merge"}}
	doc := docWith(pageWith(first), pageWith(second))
	doc.Pages[1].Index = 1

	require.NoError(t, NewTableMergeProcessor(svc).Process(context.Background(), doc))

	cells := first.ContainedBlocks(domain.BlockTypeTableCell)
	require.Len(t, cells, 3)
	assert.Equal(t, 2, cells[2].Row, "continued rows renumber after the existing ones")
	assert.Empty(t, doc.Pages[1].Blocks, "merged table leaves its page")
}

func TestTableMergeRespectsSeparateDecision(t *testing.T) {
	first := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 600, X1: 400, Y1: 780})
	second := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 40, X1: 400, Y1: 180})
	svc := &stubService{result: map[string]any{"decision": "separate"}}
	doc := docWith(pageWith(first), pageWith(second))
	doc.Pages[1].Index = 1

	require.NoError(t, NewTableMergeProcessor(svc).Process(context.Background(), doc))

	assert.Len(t, doc.Pages[1].Blocks, 1)
}

// A tabular Unknown region retyped by the deterministic table pass must be
// visible to the merge pass running later in the pipeline.
func TestTableMergeSeesRetypedUnknown(t *testing.T) {
	region := domain.NewBlock(domain.BlockTypeUnknown, domain.Rect{X0: 72, Y0: 700, X1: 400, Y1: 760})
	for ri, texts := range [][]string{{"Name", "Score"}, {"Ada", "92"}} {
		y := 700 + float64(ri)*20
		line := domain.NewBlock(domain.BlockTypeLine, domain.Rect{X0: 72, Y0: y, X1: 400, Y1: y + 14})
		for ci, text := range texts {
			x := 72 + float64(ci)*150
			span := domain.NewBlock(domain.BlockTypeSpan, domain.Rect{X0: x, Y0: y, X1: x + 80, Y1: y + 14})
			span.Text = text
			line.AddChild(span)
		}
		region.AddChild(line)
	}
	continuation := domain.NewBlock(domain.BlockTypeTable, domain.Rect{X0: 72, Y0: 40, X1: 400, Y1: 120})
	cell := domain.NewBlock(domain.BlockTypeTableCell, continuation.BBox)
	cell.Text = "Grace"
	continuation.AddChild(cell)
	doc := docWith(pageWith(region), pageWith(continuation))
	doc.Pages[1].Index = 1

	require.NoError(t, processor.NewTableProcessor().Process(context.Background(), doc))
	require.Equal(t, domain.BlockTypeTable, region.Type)

	svc := &stubService{result: map[string]any{"decision": "merge"}}
	require.NoError(t, NewTableMergeProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls)
	assert.Same(t, region, svc.last.Block)
	cells := region.ContainedBlocks(domain.BlockTypeTableCell)
	require.Len(t, cells, 5)
	assert.Equal(t, 2, cells[4].Row, "continued row follows the retyped grid")
	assert.Empty(t, doc.Pages[1].Blocks)
}

func TestPageCorrectionAppliesPerBlock(t *testing.T) {
	a := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	a.Text = "teh quick fox"
	b := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 200, X1: 400, Y1: 230})
	b.Text = "fine already"
	svc := &stubService{result: map[string]any{
		"blocks": []any{
			map[string]any{"id": a.ID.String(), "corrected_text": "the quick fox"},
		},
	}}
	doc := docWith(pageWith(a, b))

	require.NoError(t, NewPageCorrectionProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "the quick fox", a.Text)
	assert.Equal(t, "fine already", b.Text)
}

func TestPageCorrectionRejectsOversizedRewrite(t *testing.T) {
	a := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	a.Text = "tiny"
	svc := &stubService{result: map[string]any{
		"blocks": []any{
			map[string]any{"id": a.ID.String(), "corrected_text": "this correction balloons to many times the original length and must be discarded"},
		},
	}}
	doc := docWith(pageWith(a))

	require.NoError(t, NewPageCorrectionProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "tiny", a.Text)
}

func TestHandwritingTranscribes(t *testing.T) {
	svc := &stubService{result: map[string]any{"markdown": "Dear committee,"}}
	hw := domain.NewBlock(domain.BlockTypeHandwriting, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 300})
	doc := docWith(pageWith(hw))

	require.NoError(t, NewHandwritingProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "Dear committee,", hw.Text)
	assert.True(t, hw.Handwritten)
}

func TestComplexRegionTranscribes(t *testing.T) {
	svc := &stubService{result: map[string]any{"corrected_markdown": "## Sidebar\n\ncontent"}}
	cr := domain.NewBlock(domain.BlockTypeComplexRegion, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 300})
	doc := docWith(pageWith(cr))

	require.NoError(t, NewComplexRegionProcessor(svc).Process(context.Background(), doc))

	assert.Equal(t, "## Sidebar\n\ncontent", cr.Text)
}
