package domain

import "fmt"

// ConfigurationError reports a symbolic processor, renderer or LLM service
// name that does not resolve against its registry. It is fatal and surfaced
// at converter construction.
type ConfigurationError struct {
	Kind string // "processor", "renderer", "llm service"
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Name)
}

// InputTypeError reports a conversion input that is neither a file path nor
// an in-memory byte buffer.
type InputTypeError struct {
	Input any
}

func (e *InputTypeError) Error() string {
	return fmt.Sprintf("unsupported input type %T: expected string path or []byte", e.Input)
}
