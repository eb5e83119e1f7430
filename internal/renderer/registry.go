package renderer

import (
	"treepress/internal/domain"
	"treepress/internal/port"
)

// Options are the renderer construction knobs shared across formats.
type Options struct {
	Paginate  bool
	Overrides map[domain.BlockType]port.BlockRenderFunc
}

// Factory builds a renderer from shared options.
type Factory func(opts Options) port.Renderer

var registry = map[string]Factory{
	"markdown": func(opts Options) port.Renderer { return NewMarkdownRenderer(opts.Paginate, opts.Overrides) },
	"json":     func(opts Options) port.Renderer { return NewJSONRenderer() },
	"html":     func(opts Options) port.Renderer { return NewHTMLRenderer(opts.Paginate, opts.Overrides) },
	"chunked":  func(opts Options) port.Renderer { return NewChunkedRenderer(opts.Overrides) },
}

// Known reports whether a format name resolves to a renderer.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// New resolves a renderer by format name.
func New(name string, opts Options) (port.Renderer, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, &domain.ConfigurationError{Kind: "renderer", Name: name}
	}
	return factory(opts), nil
}
