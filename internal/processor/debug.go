package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"treepress/internal/domain"
)

// DebugProcessor dumps the final tree and page rasters to a folder when
// one is configured. It must run last so the dump reflects the fully
// enriched document.
type DebugProcessor struct {
	folder string
}

func NewDebugProcessor(folder string) *DebugProcessor {
	return &DebugProcessor{folder: folder}
}

func (p *DebugProcessor) Name() string { return "debug" }

func (p *DebugProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.folder == "" {
		return nil
	}
	if err := os.MkdirAll(p.folder, 0o755); err != nil {
		return fmt.Errorf("creating debug folder: %w", err)
	}

	treePath := filepath.Join(p.folder, "document.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling debug tree: %w", err)
	}
	if err := os.WriteFile(treePath, data, 0o644); err != nil {
		return fmt.Errorf("writing debug tree: %w", err)
	}

	for _, page := range doc.Pages {
		if page.Image == nil {
			continue
		}
		f, err := os.Create(filepath.Join(p.folder, fmt.Sprintf("page_%03d.png", page.Index)))
		if err != nil {
			return fmt.Errorf("creating debug raster: %w", err)
		}
		err = png.Encode(f, page.Image)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("encoding debug raster: %w", err)
		}
	}
	log.Debug().Str("component", "processor").Str("folder", p.folder).
		Int("pages", len(doc.Pages)).Msg("wrote debug dump")
	return nil
}
