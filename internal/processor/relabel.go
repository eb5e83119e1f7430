package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// BlockRelabelProcessor applies config-driven block type relabeling, e.g.
// "Picture:Figure;ComplexRegion:Table". Pairs naming a type outside the
// closed enumeration are ignored.
type BlockRelabelProcessor struct {
	relabel map[domain.BlockType]domain.BlockType
}

// NewBlockRelabelProcessor parses a "From:To;From:To" relabel spec.
func NewBlockRelabelProcessor(spec string) *BlockRelabelProcessor {
	relabel := map[domain.BlockType]domain.BlockType{}
	for _, pair := range strings.Split(spec, ";") {
		from, to, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found {
			continue
		}
		f := domain.BlockType(strings.TrimSpace(from))
		t := domain.BlockType(strings.TrimSpace(to))
		if domain.ValidBlockType(f) && domain.ValidBlockType(t) {
			relabel[f] = t
		}
	}
	return &BlockRelabelProcessor{relabel: relabel}
}

func (p *BlockRelabelProcessor) Name() string { return "block-relabel" }

func (p *BlockRelabelProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if len(p.relabel) == 0 {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if to, ok := p.relabel[block.Type]; ok {
				block.Type = to
			}
		}
	}
	return nil
}
