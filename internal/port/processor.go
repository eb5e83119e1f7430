package port

import (
	"context"

	"treepress/internal/domain"
)

// Processor is one pipeline unit. It receives the whole document, may read
// and mutate any block in place, and runs exactly once per conversion in a
// fixed position. A returned error is fatal to the conversion and
// propagates unmodified; failures of a processor's own LLM sub-calls must
// instead degrade to per-block no-ops.
type Processor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document) error
}
