package llmproc

import (
	"context"
	"fmt"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const pageCorrectionPrompt = `The image shows a full document page. Below is the text recovered for
each block on it, tagged with the block id. Correct OCR and extraction
errors in the text of each block; do not merge, split or reorder blocks.
Return every block with its id and corrected text.

Blocks:
%s
`

var pageCorrectionSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"blocks": {
			Type:  "array",
			Items: &port.Schema{Ref: "#/$defs/BlockCorrection"},
		},
	},
	Required: []string{"blocks"},
	Defs: map[string]*port.Schema{
		"BlockCorrection": {
			Type: "object",
			Properties: map[string]*port.Schema{
				"id":             {Type: "string"},
				"corrected_text": {Type: "string"},
			},
			Required: []string{"id", "corrected_text"},
		},
	},
}

// correctableTypes are the block types whose text a page-level correction
// pass may touch.
var correctableTypes = map[domain.BlockType]bool{
	domain.BlockTypeText:          true,
	domain.BlockTypeSectionHeader: true,
	domain.BlockTypeListItem:      true,
	domain.BlockTypeFootnote:      true,
	domain.BlockTypeCaption:       true,
}

// PageCorrectionProcessor sends each page image with its recovered block
// texts and applies per-block corrections. A correction growing a block
// past five times its original length is discarded.
type PageCorrectionProcessor struct {
	base
}

func NewPageCorrectionProcessor(svc port.LLMService) *PageCorrectionProcessor {
	return &PageCorrectionProcessor{base{svc: svc}}
}

func (p *PageCorrectionProcessor) Name() string { return "llm-page-correction" }

func (p *PageCorrectionProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		if page.Image == nil {
			continue
		}
		byID := map[string]*domain.Block{}
		var sb strings.Builder
		for _, block := range page.Blocks {
			if !correctableTypes[block.Type] || block.Ignored {
				continue
			}
			text := block.RawText()
			if strings.TrimSpace(text) == "" {
				continue
			}
			id := block.ID.String()
			byID[id] = block
			sb.WriteString(id)
			sb.WriteString(": ")
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
		if len(byID) == 0 {
			continue
		}
		var anchor *domain.Block
		for _, b := range page.Blocks {
			if byID[b.ID.String()] != nil {
				anchor = b
				break
			}
		}
		result := p.svc.Invoke(ctx, port.LLMRequest{
			Prompt: fmt.Sprintf(pageCorrectionPrompt, sb.String()),
			Images: pageImage(page),
			Block:  anchor,
			Schema: pageCorrectionSchema,
		})
		for _, entry := range listField(result, "blocks") {
			id, _ := entry["id"].(string)
			corrected, _ := entry["corrected_text"].(string)
			block, found := byID[id]
			if !found || corrected == "" {
				continue
			}
			if len(corrected) > 5*len(block.RawText()) {
				continue
			}
			block.Text = corrected
			block.Children = nil
		}
	}
	return nil
}
