package processor

import (
	"treepress/internal/domain"
)

// lineBlock builds a Line with a single styled span, the shape the line
// builder produces for embedded text.
func lineBlock(text string, bbox domain.Rect, size float64) *domain.Block {
	line := domain.NewBlock(domain.BlockTypeLine, bbox)
	span := domain.NewBlock(domain.BlockTypeSpan, bbox)
	span.Text = text
	span.FontSize = size
	line.AddChild(span)
	return line
}

func textBlock(t domain.BlockType, text string, bbox domain.Rect) *domain.Block {
	b := domain.NewBlock(t, bbox)
	b.AddChild(lineBlock(text, bbox, 12))
	return b
}

func onePageDoc(width, height float64, blocks ...*domain.Block) *domain.Document {
	return &domain.Document{
		Filepath: "test.pdf",
		Pages: []*domain.Page{
			{Index: 0, Width: width, Height: height, Blocks: blocks},
		},
	}
}
