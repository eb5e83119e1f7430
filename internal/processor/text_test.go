package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/domain"
	"treepress/internal/renderer"
)

func TestTextProcessorJoinsLines(t *testing.T) {
	block := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	block.AddChild(lineBlock("The quick brown fox", domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 114}, 12))
	block.AddChild(lineBlock("jumps over the dog.", domain.Rect{X0: 72, Y0: 116, X1: 400, Y1: 130}, 12))
	doc := onePageDoc(612, 792, block)

	require.NoError(t, NewTextProcessor().Process(context.Background(), doc))

	assert.Equal(t, "The quick brown fox jumps over the dog.", block.Text)
}

func TestTextProcessorUndoesHyphenation(t *testing.T) {
	block := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	block.AddChild(lineBlock("The conver-", domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 114}, 12))
	block.AddChild(lineBlock("sion pipeline runs.", domain.Rect{X0: 72, Y0: 116, X1: 400, Y1: 130}, 12))
	doc := onePageDoc(612, 792, block)

	require.NoError(t, NewTextProcessor().Process(context.Background(), doc))

	assert.Equal(t, "The conversion pipeline runs.", block.Text)
}

func TestTextProcessorConsumesLines(t *testing.T) {
	block := domain.NewBlock(domain.BlockTypeText, domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 130})
	block.AddChild(lineBlock("The conver-", domain.Rect{X0: 72, Y0: 100, X1: 400, Y1: 114}, 12))
	block.AddChild(lineBlock("sion pipeline runs.", domain.Rect{X0: 72, Y0: 116, X1: 400, Y1: 130}, 12))
	doc := onePageDoc(612, 792, block)

	require.NoError(t, NewTextProcessor().Process(context.Background(), doc))

	// The line children are gone, so RawText reflects the joined text
	// and the renderers pick it up.
	assert.Empty(t, block.Children)
	assert.Equal(t, "The conversion pipeline runs.", block.RawText())

	result, err := renderer.NewMarkdownRenderer(false, nil).Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(result.Data), "The conversion pipeline runs.")
}

func TestTextProcessorStripsSoftHyphens(t *testing.T) {
	block := domain.NewBlock(domain.BlockTypeText, domain.Rect{})
	block.Text = "in­visible"
	doc := onePageDoc(612, 792, block)

	require.NoError(t, NewTextProcessor().Process(context.Background(), doc))

	assert.Equal(t, "invisible", block.Text)
}

func TestTextProcessorNormalizesCompatibilityForms(t *testing.T) {
	block := domain.NewBlock(domain.BlockTypeText, domain.Rect{})
	block.Text = "eﬀort" // ff ligature
	doc := onePageDoc(612, 792, block)

	require.NoError(t, NewTextProcessor().Process(context.Background(), doc))

	assert.Equal(t, "effort", block.Text)
}
