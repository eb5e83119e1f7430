package domain

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTextJoinsLinesWithNewlines(t *testing.T) {
	block := NewBlock(BlockTypeText, Rect{})
	for _, text := range []string{"first line", "second line"} {
		line := NewBlock(BlockTypeLine, Rect{})
		span := NewBlock(BlockTypeSpan, Rect{})
		span.Text = text
		line.AddChild(span)
		block.AddChild(line)
	}

	assert.Equal(t, "first line\nsecond line", block.RawText())
}

func TestRawTextConcatenatesSpans(t *testing.T) {
	line := NewBlock(BlockTypeLine, Rect{})
	for _, text := range []string{"Hello ", "world"} {
		span := NewBlock(BlockTypeSpan, Rect{})
		span.Text = text
		line.AddChild(span)
	}

	assert.Equal(t, "Hello world", line.RawText())
}

func TestContainedBlocksFiltersByType(t *testing.T) {
	page := &Page{Blocks: []*Block{
		NewBlock(BlockTypeText, Rect{}),
		NewBlock(BlockTypeTable, Rect{}),
	}}
	page.Blocks[1].AddChild(NewBlock(BlockTypeTableCell, Rect{}))

	assert.Len(t, page.ContainedBlocks(BlockTypeTableCell), 1)
	assert.Len(t, page.ContainedBlocks(BlockTypeText, BlockTypeTable), 2)
	assert.Len(t, page.ContainedBlocks(), 3)
}

func TestAggregateMetadata(t *testing.T) {
	a := NewBlock(BlockTypeTable, Rect{})
	a.UpdateMetadata(2, 100)
	b := NewBlock(BlockTypeEquation, Rect{})
	b.UpdateMetadata(1, 15)
	doc := &Document{Pages: []*Page{
		{Index: 0, Blocks: []*Block{a}},
		{Index: 1, Blocks: []*Block{b}},
	}}

	doc.AggregateMetadata()

	assert.Equal(t, 2, doc.Metadata.PageCount)
	assert.Equal(t, 3, doc.Metadata.LLMRequestCount)
	assert.Equal(t, 115, doc.Metadata.LLMTokensUsed)
}

func TestCropMapsPointsToPixels(t *testing.T) {
	page := &Page{
		Width: 100, Height: 100,
		Image:      image.NewRGBA(image.Rect(0, 0, 200, 200)),
		ImageScale: 2,
	}

	img := page.Crop(Rect{X0: 10, Y0: 10, X1: 40, Y1: 30}, 0)

	require.NotNil(t, img)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestCropWithoutRaster(t *testing.T) {
	page := &Page{Width: 100, Height: 100}
	assert.Nil(t, page.Crop(Rect{X0: 10, Y0: 10, X1: 40, Y1: 30}, 0))
}

func TestRectOverlapRatio(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := Rect{X0: 5, Y0: 0, X1: 15, Y1: 10}
	assert.InDelta(t, 0.5, a.OverlapRatio(b), 0.001)

	far := Rect{X0: 20, Y0: 20, X1: 30, Y1: 30}
	assert.Zero(t, a.OverlapRatio(far))
}

func TestRectMerge(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := Rect{X0: 5, Y0: -5, X1: 20, Y1: 8}
	m := a.Merge(b)
	assert.Equal(t, Rect{X0: 0, Y0: -5, X1: 20, Y1: 10}, m)
}
