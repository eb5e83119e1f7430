package builder

import (
	"sort"

	"treepress/internal/domain"
)

// StructureBuilder finalizes tree topology in place, once, after the three
// provider-facing builders: list items are grouped, captions attach to the
// figure or table they describe, empty leftovers are removed, and block
// order is normalized. After this pass the bounding geometry is read-only.
type StructureBuilder struct{}

func NewStructureBuilder() *StructureBuilder {
	return &StructureBuilder{}
}

func (b *StructureBuilder) Build(doc *domain.Document) {
	for _, page := range doc.Pages {
		page.Blocks = dropEmpty(page.Blocks)
		sortBlocks(page.Blocks)
		page.Blocks = groupListItems(page.Blocks)
		page.Blocks = attachCaptions(page.Blocks)
	}
}

func dropEmpty(blocks []*domain.Block) []*domain.Block {
	out := blocks[:0]
	for _, block := range blocks {
		switch block.Type {
		case domain.BlockTypeFigure, domain.BlockTypePicture:
			// Image blocks legitimately carry no text.
			out = append(out, block)
		default:
			if len(block.Children) > 0 || block.RawText() != "" {
				out = append(out, block)
			}
		}
	}
	return out
}

func sortBlocks(blocks []*domain.Block) {
	sort.SliceStable(blocks, func(a, b int) bool {
		ba, bb := blocks[a], blocks[b]
		if ba.BBox.VerticalOverlap(bb.BBox) > 0 {
			return ba.BBox.X0 < bb.BBox.X0
		}
		return ba.BBox.Y0 < bb.BBox.Y0
	})
}

// groupListItems wraps runs of consecutive ListItem blocks in a ListGroup
// so renderers see one list, not a scatter of items.
func groupListItems(blocks []*domain.Block) []*domain.Block {
	var out []*domain.Block
	var run []*domain.Block

	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) == 1 {
			out = append(out, run[0])
		} else {
			bbox := run[0].BBox
			for _, item := range run[1:] {
				bbox = bbox.Merge(item.BBox)
			}
			group := domain.NewBlock(domain.BlockTypeListGroup, bbox)
			group.Children = append(group.Children, run...)
			out = append(out, group)
		}
		run = nil
	}

	for _, block := range blocks {
		if block.Type == domain.BlockTypeListItem {
			run = append(run, block)
			continue
		}
		flush()
		out = append(out, block)
	}
	flush()
	return out
}

// attachCaptions moves a caption adjacent to a table or image under that
// block, keeping the pair together through reordering and rendering.
func attachCaptions(blocks []*domain.Block) []*domain.Block {
	captionTargets := map[domain.BlockType]bool{
		domain.BlockTypeTable:   true,
		domain.BlockTypeFigure:  true,
		domain.BlockTypePicture: true,
	}
	for i, block := range blocks {
		if block == nil || block.Type != domain.BlockTypeCaption {
			continue
		}
		var target *domain.Block
		if i > 0 && blocks[i-1] != nil && captionTargets[blocks[i-1].Type] {
			target = blocks[i-1]
		} else if i+1 < len(blocks) && blocks[i+1] != nil && captionTargets[blocks[i+1].Type] {
			target = blocks[i+1]
		}
		if target == nil {
			continue
		}
		gap := target.BBox.Y0 - block.BBox.Y1
		if gap < 0 {
			gap = block.BBox.Y0 - target.BBox.Y1
		}
		if gap > 36 {
			continue
		}
		target.AddChild(block)
		blocks[i] = nil
	}
	out := blocks[:0]
	for _, b := range blocks {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
