// Package llmproc holds the LLM-backed pipeline processors. Each follows
// the same protocol: a cheap local rule selects candidate blocks, one
// service call per candidate carries a prompt, optional block crops and a
// response schema, and the structured result is applied only when it
// parses and passes the processor's own sanity checks. A failed or empty
// service result leaves the block exactly as it was.
package llmproc

import (
	"image"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// base carries the shared service handle. A nil service (use_llm disabled)
// makes every processor in this package a no-op via its candidate rule.
type base struct {
	svc port.LLMService
}

func (b base) disabled() bool { return b.svc == nil }

// blockImage crops a block's region from its page raster with a small
// margin of context.
func blockImage(page *domain.Page, block *domain.Block) []image.Image {
	img := page.Crop(block.BBox, 6)
	if img == nil {
		return nil
	}
	return []image.Image{img}
}

// pageImage returns the full page raster.
func pageImage(page *domain.Page) []image.Image {
	if page.Image == nil {
		return nil
	}
	return []image.Image{page.Image}
}

// stringField pulls a non-empty string out of a service result.
func stringField(result map[string]any, key string) (string, bool) {
	v, ok := result[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// listField pulls an object list out of a service result. Anything that
// is not a list of objects comes back nil.
func listField(result map[string]any, key string) []map[string]any {
	raw, ok := result[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		out = append(out, m)
	}
	return out
}
