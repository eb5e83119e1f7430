package builder

import (
	"context"
	"fmt"
	"image"
	"sort"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// LineBuilder attaches text lines to layout blocks. Embedded provider text
// is preferred; pages without a text layer fall back to the line detector
// and the resulting lines are flagged for OCR.
type LineBuilder struct {
	detector port.LineDetector
}

func NewLineBuilder(detector port.LineDetector) *LineBuilder {
	return &LineBuilder{detector: detector}
}

func (b *LineBuilder) Build(ctx context.Context, provider port.Provider, doc *domain.Document) error {
	var bare []*domain.Page
	for _, page := range doc.Pages {
		lines, err := provider.PageLines(page.Index)
		if err != nil {
			return fmt.Errorf("page %d lines: %w", page.Index, err)
		}
		if len(lines) == 0 {
			bare = append(bare, page)
			continue
		}
		for _, pl := range lines {
			line := domain.NewBlock(domain.BlockTypeLine, pl.BBox)
			for _, ps := range pl.Spans {
				span := domain.NewBlock(domain.BlockTypeSpan, ps.BBox)
				span.Text = ps.Text
				span.Font = ps.Font
				span.FontSize = ps.Size
				line.AddChild(span)
			}
			attachLine(page, line)
		}
		sortChildrenByPosition(page)
	}

	if len(bare) == 0 || b.detector == nil {
		return nil
	}

	// Detected lines carry no text yet; the OCR builder fills them in.
	images := make([]image.Image, len(bare))
	for i, page := range bare {
		images[i] = page.Image
	}
	detections, err := b.detector.DetectLines(ctx, images)
	if err != nil {
		return fmt.Errorf("line detection: %w", err)
	}
	for i, page := range bare {
		if i >= len(detections) {
			break
		}
		for _, bbox := range detections[i] {
			line := domain.NewBlock(domain.BlockTypeLine, bbox)
			line.NeedsOCR = true
			span := domain.NewBlock(domain.BlockTypeSpan, bbox)
			line.AddChild(span)
			attachLine(page, line)
		}
		sortChildrenByPosition(page)
	}
	return nil
}

// attachLine places a line under the layout block it overlaps most. Lines
// outside every region get a fresh Text block so no text is dropped.
func attachLine(page *domain.Page, line *domain.Block) {
	var best *domain.Block
	bestRatio := 0.0
	for _, block := range page.Blocks {
		if block.Type == domain.BlockTypeLine || block.Type == domain.BlockTypeSpan {
			continue
		}
		ratio := line.BBox.OverlapRatio(block.BBox)
		if ratio > bestRatio {
			bestRatio = ratio
			best = block
		}
	}
	if best == nil || bestRatio < 0.3 {
		holder := domain.NewBlock(domain.BlockTypeText, line.BBox)
		holder.AddChild(line)
		page.Blocks = append(page.Blocks, holder)
		return
	}
	best.AddChild(line)
	best.BBox = best.BBox.Merge(line.BBox)
}

func sortChildrenByPosition(page *domain.Page) {
	for _, block := range page.Blocks {
		sort.SliceStable(block.Children, func(a, b int) bool {
			ca, cb := block.Children[a], block.Children[b]
			if ca.BBox.Y0 != cb.BBox.Y0 {
				return ca.BBox.Y0 < cb.BBox.Y0
			}
			return ca.BBox.X0 < cb.BBox.X0
		})
	}
}
