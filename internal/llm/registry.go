package llm

import (
	"treepress/internal/config"
	"treepress/internal/domain"
	"treepress/internal/port"
)

// Factory creates an LLM service from a backend config.
type Factory func(cfg *config.LLMConfig) (port.LLMService, error)

// registry of backend factories, populated by init() in each backend
// package or explicitly via Register.
var backends = map[string]Factory{}

// Register registers a backend factory under a stable name.
func Register(name string, factory Factory) {
	backends[name] = factory
}

// Known reports whether a backend name is registered.
func Known(name string) bool {
	_, ok := backends[name]
	return ok
}

// New creates an LLM service by symbolic name. An unregistered name fails
// fast with a ConfigurationError.
func New(name string, cfg *config.LLMConfig) (port.LLMService, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, &domain.ConfigurationError{Kind: "llm service", Name: name}
	}
	return factory(cfg)
}
