package port

import (
	"context"
	"image"
	"time"

	"treepress/internal/domain"
)

// Schema is a structural description of the expected LLM output, expressed
// as a subset of JSON Schema. Shared sub-schemas live in Defs and are
// referenced with "#/$defs/<name>" refs; the LLM service inlines them
// before dispatch so backends without native reference resolution can still
// enforce structure.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

// LLMRequest is one enrichment task issued by a processor.
type LLMRequest struct {
	Prompt string
	Images []image.Image
	// Block, when set, receives request/token accounting on success.
	Block  *domain.Block
	Schema *Schema
	// Optional per-call overrides of the service defaults.
	MaxRetries *int
	Timeout    *time.Duration
}

// LLMService is the polymorphic interface to a text/vision model backend.
// Invoke returns the parsed structured result, or an empty map once retries
// are exhausted or a non-retriable failure occurs. It never returns an
// error for ordinary failure classes; "no enrichment available" is the
// empty map.
type LLMService interface {
	Invoke(ctx context.Context, req LLMRequest) map[string]any
}
