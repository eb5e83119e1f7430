package processor

import (
	"context"
	"strings"

	"treepress/internal/domain"
)

// DocumentTOCProcessor collects section headers into the document-level
// table of contents.
type DocumentTOCProcessor struct{}

func NewDocumentTOCProcessor() *DocumentTOCProcessor { return &DocumentTOCProcessor{} }

func (p *DocumentTOCProcessor) Name() string { return "document-toc" }

func (p *DocumentTOCProcessor) Process(ctx context.Context, doc *domain.Document) error {
	doc.TOC = nil
	for _, page := range doc.Pages {
		for _, block := range page.ContainedBlocks(domain.BlockTypeSectionHeader) {
			title := strings.TrimSpace(strings.ReplaceAll(block.RawText(), "\n", " "))
			if title == "" {
				continue
			}
			level := block.Level
			if level <= 0 {
				level = 1
			}
			doc.TOC = append(doc.TOC, domain.TOCEntry{
				Title: title,
				Level: level,
				Page:  page.Index,
			})
		}
	}
	return nil
}
