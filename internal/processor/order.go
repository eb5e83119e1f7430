package processor

import (
	"context"
	"sort"

	"treepress/internal/domain"
)

// OrderProcessor restores reading order on pages where detection boxes came
// back out of sequence. Runs first: every later processor assumes stable
// block order.
type OrderProcessor struct{}

func NewOrderProcessor() *OrderProcessor { return &OrderProcessor{} }

func (p *OrderProcessor) Name() string { return "order" }

func (p *OrderProcessor) Process(ctx context.Context, doc *domain.Document) error {
	for _, page := range doc.Pages {
		orderPage(page)
	}
	return nil
}

func orderPage(page *domain.Page) {
	if len(page.Blocks) < 2 {
		return
	}
	mid := page.Width / 2
	if twoColumn(page, mid) {
		sort.SliceStable(page.Blocks, func(a, b int) bool {
			ba, bb := page.Blocks[a], page.Blocks[b]
			ca, cb := column(ba, page.Width, mid), column(bb, page.Width, mid)
			// Full-width blocks act as bands: everything above them sorts
			// first regardless of column.
			if ca == spanning || cb == spanning {
				return ba.BBox.Y0 < bb.BBox.Y0
			}
			if ca != cb {
				return ca < cb
			}
			return ba.BBox.Y0 < bb.BBox.Y0
		})
		return
	}
	sort.SliceStable(page.Blocks, func(a, b int) bool {
		ba, bb := page.Blocks[a], page.Blocks[b]
		if ba.BBox.VerticalOverlap(bb.BBox) > 0 {
			return ba.BBox.X0 < bb.BBox.X0
		}
		return ba.BBox.Y0 < bb.BBox.Y0
	})
}

const (
	left     = 0
	right    = 1
	spanning = 2
)

func column(b *domain.Block, pageWidth, mid float64) int {
	if b.BBox.Width() > pageWidth*0.6 {
		return spanning
	}
	if b.BBox.CenterX() < mid {
		return left
	}
	return right
}

// twoColumn reports whether enough narrow blocks sit fully on each side of
// the page midline to treat the page as a two-column layout.
func twoColumn(page *domain.Page, mid float64) bool {
	var leftCount, rightCount int
	for _, b := range page.Blocks {
		if b.BBox.Width() > page.Width*0.6 {
			continue
		}
		if b.BBox.X1 < mid {
			leftCount++
		} else if b.BBox.X0 > mid {
			rightCount++
		}
	}
	total := len(page.Blocks)
	return total > 0 && leftCount*4 >= total && rightCount*4 >= total
}
