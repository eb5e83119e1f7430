package port

import "treepress/internal/domain"

// RenderResult is the output of one conversion.
type RenderResult struct {
	Format   string
	Data     []byte
	Metadata domain.DocumentMetadata
	TOC      []domain.TOCEntry
}

// Renderer converts a finished document into its output form. Renderers
// are pure functions of the document and must not mutate it.
type Renderer interface {
	Render(doc *domain.Document) (*RenderResult, error)
}

// BlockRenderFunc renders one block to markdown. The converter's override
// map associates block types with alternate implementations, resolved once
// at construction and frozen for the conversion.
type BlockRenderFunc func(doc *domain.Document, b *domain.Block) string
