package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/domain"
)

func header(text string, size float64) *domain.Block {
	bbox := domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 100 + size}
	h := domain.NewBlock(domain.BlockTypeSectionHeader, bbox)
	h.AddChild(lineBlock(text, bbox, size))
	return h
}

func TestSectionHeaderLevelsFromFontSizes(t *testing.T) {
	h1 := header("Introduction", 24)
	h2 := header("Background", 18)
	h2b := header("Related Work", 18)
	h3 := header("Prior Methods", 14)
	doc := onePageDoc(612, 792, h1, h2, h2b, h3)

	require.NoError(t, NewSectionHeaderProcessor().Process(context.Background(), doc))

	assert.Equal(t, 1, h1.Level)
	assert.Equal(t, 2, h2.Level)
	assert.Equal(t, 2, h2b.Level)
	assert.Equal(t, 3, h3.Level)
}

func TestSectionHeaderGroupsNearbySizes(t *testing.T) {
	// 18pt and 17.8pt are within the clustering threshold and should land
	// on the same level.
	a := header("One", 18)
	b := header("Two", 17.8)
	doc := onePageDoc(612, 792, a, b)

	require.NoError(t, NewSectionHeaderProcessor().Process(context.Background(), doc))

	assert.Equal(t, a.Level, b.Level)
}

func TestSectionHeaderPreservesExistingLevel(t *testing.T) {
	h := header("Preset", 24)
	h.Level = 4
	doc := onePageDoc(612, 792, h)

	require.NoError(t, NewSectionHeaderProcessor().Process(context.Background(), doc))

	assert.Equal(t, 4, h.Level)
}
