package llmproc

import (
	"context"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const imageDescriptionPrompt = `Describe the image in one or two sentences suitable for alt text.
Mention the chart type and what it shows if it is a chart or diagram.
`

var imageDescriptionSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"image_description": {Type: "string"},
	},
	Required: []string{"image_description"},
}

// ImageDescriptionProcessor fills in alt-text descriptions for pictures
// and figures that do not yet have one.
type ImageDescriptionProcessor struct {
	base
}

func NewImageDescriptionProcessor(svc port.LLMService) *ImageDescriptionProcessor {
	return &ImageDescriptionProcessor{base{svc: svc}}
}

func (p *ImageDescriptionProcessor) Name() string { return "llm-image-description" }

func (p *ImageDescriptionProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Type != domain.BlockTypePicture && block.Type != domain.BlockTypeFigure {
				continue
			}
			if block.Description != "" {
				continue
			}
			result := p.svc.Invoke(ctx, port.LLMRequest{
				Prompt: imageDescriptionPrompt,
				Images: blockImage(page, block),
				Block:  block,
				Schema: imageDescriptionSchema,
			})
			desc, ok := stringField(result, "image_description")
			if !ok {
				continue
			}
			block.Description = desc
		}
	}
	return nil
}
