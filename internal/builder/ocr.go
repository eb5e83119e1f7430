package builder

import (
	"context"
	"fmt"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// OcrBuilder fills in text for lines the line builder flagged as lacking an
// embedded text layer. Without a recognizer the flagged lines stay empty.
type OcrBuilder struct {
	recognizer port.TextRecognizer
}

func NewOcrBuilder(recognizer port.TextRecognizer) *OcrBuilder {
	return &OcrBuilder{recognizer: recognizer}
}

func (b *OcrBuilder) Build(ctx context.Context, provider port.Provider, doc *domain.Document) error {
	if b.recognizer == nil {
		return nil
	}
	for _, page := range doc.Pages {
		var pending []*domain.Block
		for _, line := range page.ContainedBlocks(domain.BlockTypeLine) {
			if line.NeedsOCR {
				pending = append(pending, line)
			}
		}
		if len(pending) == 0 {
			continue
		}
		regions := make([]domain.Rect, len(pending))
		for i, line := range pending {
			regions[i] = line.BBox
		}
		texts, err := b.recognizer.Recognize(ctx, page.Image, regions)
		if err != nil {
			return fmt.Errorf("ocr on page %d: %w", page.Index, err)
		}
		for i, line := range pending {
			if i >= len(texts) {
				break
			}
			if len(line.Children) > 0 {
				line.Children[0].Text = texts[i]
			} else {
				line.Text = texts[i]
			}
			line.NeedsOCR = false
		}
	}
	return nil
}
