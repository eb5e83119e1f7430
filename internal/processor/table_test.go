package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/domain"
)

func gridBlock(t domain.BlockType) *domain.Block {
	block := domain.NewBlock(t, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 160})
	rows := [][]string{
		{"Name", "Score"},
		{"Ada", "92"},
		{"Grace", "88"},
	}
	for ri, cells := range rows {
		y := 100 + float64(ri)*20
		line := domain.NewBlock(domain.BlockTypeLine, domain.Rect{X0: 72, Y0: y, X1: 400, Y1: y + 14})
		for ci, text := range cells {
			x := 72 + float64(ci)*150
			span := domain.NewBlock(domain.BlockTypeSpan, domain.Rect{X0: x, Y0: y, X1: x + 80, Y1: y + 14})
			span.Text = text
			line.AddChild(span)
		}
		block.AddChild(line)
	}
	return block
}

func TestTableProcessorBuildsCells(t *testing.T) {
	table := gridBlock(domain.BlockTypeTable)
	doc := onePageDoc(612, 792, table)

	require.NoError(t, NewTableProcessor().Process(context.Background(), doc))

	cells := table.ContainedBlocks(domain.BlockTypeTableCell)
	require.Len(t, cells, 6)
	assert.Equal(t, "Name", cells[0].Text)
	assert.Equal(t, 0, cells[0].Row)
	assert.Equal(t, 0, cells[0].Col)
	assert.True(t, cells[0].IsHeader)
	assert.Equal(t, "Score", cells[1].Text)
	assert.Equal(t, 1, cells[1].Col)
	assert.Equal(t, "88", cells[5].Text)
	assert.Equal(t, 2, cells[5].Row)
	assert.False(t, cells[5].IsHeader)
	assert.Empty(t, table.ContainedBlocks(domain.BlockTypeLine))
}

func TestTableProcessorRetypesTabularUnknown(t *testing.T) {
	unknown := gridBlock(domain.BlockTypeUnknown)
	doc := onePageDoc(612, 792, unknown)

	require.NoError(t, NewTableProcessor().Process(context.Background(), doc))

	assert.Equal(t, domain.BlockTypeTable, unknown.Type)
	assert.Len(t, unknown.ContainedBlocks(domain.BlockTypeTableCell), 6)
}

func TestTableProcessorLeavesProseUnknownAlone(t *testing.T) {
	unknown := textBlock(domain.BlockTypeUnknown, "just a paragraph", domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 114})
	doc := onePageDoc(612, 792, unknown)

	require.NoError(t, NewTableProcessor().Process(context.Background(), doc))

	assert.Equal(t, domain.BlockTypeUnknown, unknown.Type)
}

func TestTableProcessorKeepsCaption(t *testing.T) {
	table := gridBlock(domain.BlockTypeTable)
	caption := textBlock(domain.BlockTypeCaption, "Table 1: scores", domain.Rect{X0: 72, Y0: 165, X1: 300, Y1: 179})
	table.AddChild(caption)
	doc := onePageDoc(612, 792, table)

	require.NoError(t, NewTableProcessor().Process(context.Background(), doc))

	var kept bool
	for _, c := range table.Children {
		if c == caption {
			kept = true
		}
	}
	assert.True(t, kept)
}
