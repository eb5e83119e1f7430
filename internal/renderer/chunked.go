package renderer

import (
	"encoding/json"

	"github.com/google/uuid"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// Chunk is one top-level block flattened for retrieval pipelines.
type Chunk struct {
	ID        uuid.UUID        `json:"id"`
	Page      int              `json:"page"`
	BlockType domain.BlockType `json:"block_type"`
	BBox      domain.Rect      `json:"bbox"`
	Markdown  string           `json:"markdown"`
}

// ChunkedRenderer emits one JSON chunk per top-level block, each carrying
// its Markdown rendering and position.
type ChunkedRenderer struct {
	md *MarkdownRenderer
}

func NewChunkedRenderer(overrides map[domain.BlockType]port.BlockRenderFunc) *ChunkedRenderer {
	return &ChunkedRenderer{md: NewMarkdownRenderer(false, overrides)}
}

func (r *ChunkedRenderer) Render(doc *domain.Document) (*port.RenderResult, error) {
	var chunks []Chunk
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			text := r.md.renderBlock(doc, block)
			if text == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				ID:        block.ID,
				Page:      page.Index,
				BlockType: block.Type,
				BBox:      block.BBox,
				Markdown:  text,
			})
		}
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return nil, err
	}
	return &port.RenderResult{
		Format:   "chunked",
		Data:     data,
		Metadata: doc.Metadata,
		TOC:      doc.TOC,
	}, nil
}
