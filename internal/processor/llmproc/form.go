package llmproc

import (
	"context"
	"strings"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const formPrompt = `The image shows a form region from a document. Extract every labelled
field and its filled-in value. Leave the value empty for blank fields.
`

var formSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"form_values": {
			Type:  "array",
			Items: &port.Schema{Ref: "#/$defs/FormValue"},
		},
	},
	Required: []string{"form_values"},
	Defs: map[string]*port.Schema{
		"FormValue": {
			Type: "object",
			Properties: map[string]*port.Schema{
				"label": {Type: "string"},
				"value": {Type: "string"},
			},
			Required: []string{"label", "value"},
		},
	},
}

// FormProcessor extracts label/value pairs from form regions and stores
// them as an HTML table on the block.
type FormProcessor struct {
	base
}

func NewFormProcessor(svc port.LLMService) *FormProcessor {
	return &FormProcessor{base{svc: svc}}
}

func (p *FormProcessor) Name() string { return "llm-form" }

func (p *FormProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypeForm {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: formPrompt,
				Images: blockImage(page, block),
				Block:  block,
				Schema: formSchema,
			})
			values := listField(result, "form_values")
			if len(values) == 0 {
				continue
			}
			block.HTML = formHTML(values)
		}
	}
	return nil
}

func formHTML(values []map[string]any) string {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, v := range values {
		label, _ := v["label"].(string)
		value, _ := v["value"].(string)
		sb.WriteString("<tr><td>")
		sb.WriteString(escapeHTML(label))
		sb.WriteString("</td><td>")
		sb.WriteString(escapeHTML(value))
		sb.WriteString("</td></tr>")
	}
	sb.WriteString("</table>")
	return sb.String()
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
