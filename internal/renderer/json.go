package renderer

import (
	"encoding/json"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// JSONRenderer serializes the whole document tree.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(doc *domain.Document) (*port.RenderResult, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return &port.RenderResult{
		Format:   "json",
		Data:     data,
		Metadata: doc.Metadata,
		TOC:      doc.TOC,
	}, nil
}
