package processor

import (
	"context"
	"sort"

	"treepress/internal/domain"
)

// SectionHeaderProcessor assigns heading levels by clustering header font
// sizes document-wide: the largest cluster becomes level 1, the next level
// 2, and so on, capped at six levels.
type SectionHeaderProcessor struct{}

func NewSectionHeaderProcessor() *SectionHeaderProcessor { return &SectionHeaderProcessor{} }

func (p *SectionHeaderProcessor) Name() string { return "section-header" }

func (p *SectionHeaderProcessor) Process(ctx context.Context, doc *domain.Document) error {
	headers := doc.ContainedBlocks(domain.BlockTypeSectionHeader)
	if len(headers) == 0 {
		return nil
	}

	sizes := make([]float64, 0, len(headers))
	for _, h := range headers {
		sizes = append(sizes, headerSize(h))
	}
	clusters := clusterSizes(sizes)

	for _, h := range headers {
		if h.Level > 0 {
			continue
		}
		size := headerSize(h)
		level := 1
		for i, c := range clusters {
			if size >= c-0.5 {
				level = i + 1
				break
			}
			level = i + 2
		}
		if level > 6 {
			level = 6
		}
		h.Level = level
	}
	return nil
}

func headerSize(h *domain.Block) float64 {
	var best float64
	for _, span := range h.ContainedBlocks(domain.BlockTypeSpan) {
		if span.FontSize > best {
			best = span.FontSize
		}
	}
	if best == 0 {
		best = h.BBox.Height()
	}
	return best
}

// clusterSizes reduces the observed sizes to descending representatives at
// least half a point apart.
func clusterSizes(sizes []float64) []float64 {
	sorted := append([]float64(nil), sizes...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	var clusters []float64
	for _, s := range sorted {
		if len(clusters) == 0 || clusters[len(clusters)-1]-s > 0.5 {
			clusters = append(clusters, s)
		}
	}
	if len(clusters) > 6 {
		clusters = clusters[:6]
	}
	return clusters
}
