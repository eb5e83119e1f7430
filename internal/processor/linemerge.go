package processor

import (
	"context"

	"treepress/internal/domain"
)

// LineMergeProcessor merges adjacent line fragments the text layer split
// apart: two lines inside one block whose boxes overlap vertically by more
// than half the smaller height are the same visual line.
type LineMergeProcessor struct{}

func NewLineMergeProcessor() *LineMergeProcessor { return &LineMergeProcessor{} }

func (p *LineMergeProcessor) Name() string { return "line-merge" }

func (p *LineMergeProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			mergeLines(block)
		}
	}
	return nil
}

func mergeLines(block *domain.Block) {
	if len(block.Children) < 2 {
		return
	}
	var out []*domain.Block
	for _, child := range block.Children {
		if child.Type != domain.BlockTypeLine || len(out) == 0 {
			out = append(out, child)
			continue
		}
		prev := out[len(out)-1]
		if prev.Type == domain.BlockTypeLine && sameVisualLine(prev, child) {
			prev.Children = append(prev.Children, child.Children...)
			prev.BBox = prev.BBox.Merge(child.BBox)
			continue
		}
		out = append(out, child)
	}
	block.Children = out
}

func sameVisualLine(a, b *domain.Block) bool {
	overlap := a.BBox.VerticalOverlap(b.BBox)
	minHeight := min(a.BBox.Height(), b.BBox.Height())
	if minHeight <= 0 {
		return false
	}
	// Must also be horizontally adjacent, not stacked duplicates.
	return overlap > minHeight*0.5 && b.BBox.X0 >= a.BBox.X0
}
