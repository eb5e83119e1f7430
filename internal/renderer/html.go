package renderer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// HTMLRenderer renders the Markdown output through goldmark with GFM
// extensions, so pipe tables and strikethrough survive the conversion.
type HTMLRenderer struct {
	md *MarkdownRenderer
	gm goldmark.Markdown
}

func NewHTMLRenderer(paginate bool, overrides map[domain.BlockType]port.BlockRenderFunc) *HTMLRenderer {
	return &HTMLRenderer{
		md: NewMarkdownRenderer(paginate, overrides),
		gm: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (r *HTMLRenderer) Render(doc *domain.Document) (*port.RenderResult, error) {
	md, err := r.md.Render(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.gm.Convert(md.Data, &buf); err != nil {
		return nil, err
	}
	return &port.RenderResult{
		Format:   "html",
		Data:     buf.Bytes(),
		Metadata: doc.Metadata,
		TOC:      doc.TOC,
	}, nil
}
