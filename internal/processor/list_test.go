package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/domain"
)

func listItem(text string, x, y float64) *domain.Block {
	bbox := domain.Rect{X0: x, Y0: y, X1: x + 200, Y1: y + 14}
	item := domain.NewBlock(domain.BlockTypeListItem, bbox)
	item.AddChild(lineBlock(text, bbox, 12))
	return item
}

func TestListProcessorExtractsMarkers(t *testing.T) {
	a := listItem("• first point", 72, 100)
	b := listItem("• second point", 72, 120)
	nested := listItem("- nested point", 90, 140)
	group := domain.NewBlock(domain.BlockTypeListGroup, domain.Rect{X0: 72, Y0: 100, X1: 272, Y1: 154})
	group.AddChild(a)
	group.AddChild(b)
	group.AddChild(nested)
	doc := onePageDoc(612, 792, group)

	require.NoError(t, NewListProcessor().Process(context.Background(), doc))

	assert.Equal(t, "•", a.ListMarker)
	assert.Equal(t, "first point", a.Text)
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, "-", nested.ListMarker)
	assert.Equal(t, "nested point", nested.Text)
	assert.Equal(t, 1, nested.Level)
}

func TestListProcessorNumberedMarkers(t *testing.T) {
	one := listItem("1. alpha", 72, 100)
	two := listItem("2) beta", 72, 120)
	lettered := listItem("a) gamma", 72, 140)
	group := domain.NewBlock(domain.BlockTypeListGroup, domain.Rect{X0: 72, Y0: 100, X1: 272, Y1: 154})
	group.AddChild(one)
	group.AddChild(two)
	group.AddChild(lettered)
	doc := onePageDoc(612, 792, group)

	require.NoError(t, NewListProcessor().Process(context.Background(), doc))

	assert.Equal(t, "1.", one.ListMarker)
	assert.Equal(t, "alpha", one.Text)
	assert.Equal(t, "2)", two.ListMarker)
	assert.Equal(t, "a)", lettered.ListMarker)
	assert.Equal(t, "gamma", lettered.Text)
}

func TestListProcessorUngroupedItem(t *testing.T) {
	solo := listItem("* loose item", 72, 100)
	doc := onePageDoc(612, 792, solo)

	require.NoError(t, NewListProcessor().Process(context.Background(), doc))

	assert.Equal(t, "*", solo.ListMarker)
	assert.Equal(t, "loose item", solo.Text)
}

func TestListProcessorTextWithoutMarker(t *testing.T) {
	plain := listItem("no marker here", 72, 100)
	group := domain.NewBlock(domain.BlockTypeListGroup, domain.Rect{X0: 72, Y0: 100, X1: 272, Y1: 114})
	group.AddChild(plain)
	doc := onePageDoc(612, 792, group)

	require.NoError(t, NewListProcessor().Process(context.Background(), doc))

	assert.Empty(t, plain.ListMarker)
	assert.Equal(t, "no marker here", plain.Text)
}
