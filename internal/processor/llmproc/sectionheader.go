package llmproc

import (
	"context"
	"fmt"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const sectionHeaderPrompt = `Below are the section headings of a document in reading order, each with
an id and the heading level inferred from font sizes. Correct the levels
so they form a consistent outline (a level 3 heading never follows a
level 1 heading directly, the first heading is level 1, and so on).
Return every heading with its id and corrected level.

Headings:
%s
`

var sectionHeaderSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"section_headers": {
			Type:  "array",
			Items: &port.Schema{Ref: "#/$defs/SectionHeader"},
		},
	},
	Required: []string{"section_headers"},
	Defs: map[string]*port.Schema{
		"SectionHeader": {
			Type: "object",
			Properties: map[string]*port.Schema{
				"id":    {Type: "string"},
				"level": {Type: "integer"},
			},
			Required: []string{"id", "level"},
		},
	},
}

// SectionHeaderProcessor has the model regularize heading levels across the
// whole document in a single call.
type SectionHeaderProcessor struct {
	base
}

func NewSectionHeaderProcessor(svc port.LLMService) *SectionHeaderProcessor {
	return &SectionHeaderProcessor{base{svc: svc}}
}

func (p *SectionHeaderProcessor) Name() string { return "llm-section-header" }

func (p *SectionHeaderProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	headers := doc.ContainedBlocks(domain.BlockTypeSectionHeader)
	if len(headers) < 2 {
		return nil
	}
	byID := make(map[string]*domain.Block, len(headers))
	var sb strings.Builder
	for _, h := range headers {
		id := h.ID.String()
		byID[id] = h
		sb.WriteString(id)
		sb.WriteString(" (level ")
		sb.WriteString(levelString(h.Level))
		sb.WriteString("): ")
		sb.WriteString(h.RawText())
		sb.WriteString("\n")
	}
	result := p.svc.Invoke(ctx, port.LLMRequest{
		Prompt: fmt.Sprintf(sectionHeaderPrompt, sb.String()),
		Block:  headers[0],
		Schema: sectionHeaderSchema,
	})
	for _, entry := range listField(result, "section_headers") {
		id, _ := entry["id"].(string)
		level, ok := entry["level"].(float64)
		if !ok {
			continue
		}
		h, found := byID[id]
		if !found || level < 1 || level > 6 {
			continue
		}
		h.Level = int(level)
	}
	return nil
}

func levelString(level int) string {
	if level < 1 || level > 6 {
		return "1"
	}
	return string(rune('0' + level))
}
