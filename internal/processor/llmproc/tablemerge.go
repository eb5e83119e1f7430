package llmproc

import (
	"context"
	"fmt"

	"treepress/internal/domain"
	"treepress/internal/port"
)

const tableMergePrompt = `Two tables appear on consecutive pages. The first image is the table at the
bottom of one page, the second is the table at the top of the next.
Decide whether the second is a continuation of the first (same columns,
data flows across the break). Answer "merge" or "separate".

First table:
%s

Second table:
%s
`

var tableMergeSchema = &port.Schema{
	Type: "object",
	Properties: map[string]*port.Schema{
		"decision": {Type: "string", Enum: []string{"merge", "separate"}},
	},
	Required: []string{"decision"},
}

// TableMergeProcessor joins tables split across a page break when the model
// judges them to be one table.
type TableMergeProcessor struct {
	base
}

func NewTableMergeProcessor(svc port.LLMService) *TableMergeProcessor {
	return &TableMergeProcessor{base{svc: svc}}
}

func (p *TableMergeProcessor) Name() string { return "llm-table-merge" }

func (p *TableMergeProcessor) Process(ctx context.Context, doc *domain.Document) error {
	if p.disabled() {
		return nil
	}
	for i := 0; i+1 < len(doc.Pages); i++ {
		cur, next := doc.Pages[i], doc.Pages[i+1]
		tail := lastTable(cur)
		head := firstTable(next)
		if tail == nil || head == nil {
			continue
		}
		// Only consider the pair when the first table reaches the
		// bottom quarter and the second starts in the top quarter.
		if tail.BBox.Y1 < cur.Height*0.75 || head.BBox.Y0 > next.Height*0.25 {
			continue
		}
		result := p.svc.Invoke(ctx, port.LLMRequest{
			Prompt: fmt.Sprintf(tableMergePrompt, cellDump(tail), cellDump(head)),
			Images: append(blockImage(cur, tail), blockImage(next, head)...),
			Block:  tail,
			Schema: tableMergeSchema,
		})
		decision, ok := stringField(result, "decision")
		if !ok || decision != "merge" {
			continue
		}
		mergeTables(tail, head, next)
	}
	return nil
}

func lastTable(page *domain.Page) *domain.Block {
	for i := len(page.Blocks) - 1; i >= 0; i-- {
		if page.Blocks[i].Type == domain.BlockTypeTable {
			return page.Blocks[i]
		}
	}
	return nil
}

func firstTable(page *domain.Page) *domain.Block {
	for _, b := range page.Blocks {
		if b.Type == domain.BlockTypeTable {
			return b
		}
	}
	return nil
}

// mergeTables moves the second table's cells into the first, renumbering
// rows, and removes the now empty table from its page.
func mergeTables(dst, src *domain.Block, srcPage *domain.Page) {
	maxRow := -1
	for _, c := range dst.Children {
		if c.Type == domain.BlockTypeTableCell && c.Row > maxRow {
			maxRow = c.Row
		}
	}
	for _, c := range src.Children {
		if c.Type == domain.BlockTypeTableCell {
			c.Row += maxRow + 1
		}
		dst.AddChild(c)
	}
	src.Children = nil
	var kept []*domain.Block
	for _, b := range srcPage.Blocks {
		if b != src {
			kept = append(kept, b)
		}
	}
	srcPage.Blocks = kept
	dst.Metadata.LLMRequestCount += src.Metadata.LLMRequestCount
	dst.Metadata.LLMTokensUsed += src.Metadata.LLMTokensUsed
}
