package domain

import (
	"image"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// BlockMetadata carries per-block accounting written by the LLM service.
// Counters are monotonic for the life of the conversion.
type BlockMetadata struct {
	LLMRequestCount int `json:"llm_request_count"`
	LLMTokensUsed   int `json:"llm_tokens_used"`
}

// Block is a typed node in the document tree. Blocks are exclusively owned
// by their parent page or block; the builders establish the tree once and
// processors must preserve it (no sharing, no cycles).
type Block struct {
	ID       uuid.UUID     `json:"id"`
	Type     BlockType     `json:"block_type"`
	BBox     Rect          `json:"bbox"`
	Children []*Block      `json:"children,omitempty"`
	Text     string        `json:"text,omitempty"`
	Metadata BlockMetadata `json:"metadata"`

	// Type-specific attributes. Only the fields relevant to a block's type
	// are populated; the rest stay zero.
	Level       int     `json:"level,omitempty"`       // SectionHeader
	Language    string  `json:"language,omitempty"`    // Code
	Latex       string  `json:"latex,omitempty"`       // Equation
	Description string  `json:"description,omitempty"` // Picture, Figure
	HTML        string  `json:"html,omitempty"`        // LLM-corrected markup
	Ignored     bool    `json:"ignored,omitempty"`     // suppressed from output
	ListMarker  string  `json:"list_marker,omitempty"` // ListItem
	Font        string  `json:"font,omitempty"`        // Span
	FontSize    float64 `json:"font_size,omitempty"`   // Span
	Handwritten bool    `json:"handwritten,omitempty"` // OCR flagged
	NeedsOCR    bool    `json:"-"`                     // line builder flag
	Row         int     `json:"row,omitempty"`         // TableCell
	Col         int     `json:"col,omitempty"`         // TableCell
	RowSpan     int     `json:"row_span,omitempty"`    // TableCell
	ColSpan     int     `json:"col_span,omitempty"`    // TableCell
	IsHeader    bool    `json:"is_header,omitempty"`   // TableCell
}

// NewBlock creates a block of the given type with a fresh ID.
func NewBlock(t BlockType, bbox Rect) *Block {
	return &Block{ID: uuid.New(), Type: t, BBox: bbox}
}

// AddChild appends a child block.
func (b *Block) AddChild(c *Block) {
	b.Children = append(b.Children, c)
}

// RawText returns the concatenated text of the block and its descendants.
// Line children are joined with newlines, spans with nothing.
func (b *Block) RawText() string {
	if len(b.Children) == 0 {
		return b.Text
	}
	var sb strings.Builder
	for _, c := range b.Children {
		t := c.RawText()
		if t == "" {
			continue
		}
		if sb.Len() > 0 && c.Type == BlockTypeLine {
			sb.WriteString("\n")
		}
		sb.WriteString(t)
	}
	if b.Text != "" && sb.Len() == 0 {
		return b.Text
	}
	return sb.String()
}

// Walk visits b and all descendants in depth-first order.
func (b *Block) Walk(fn func(*Block)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// ContainedBlocks returns all descendants (including b itself) matching any
// of the given types. With no types given, every node is returned.
func (b *Block) ContainedBlocks(types ...BlockType) []*Block {
	var out []*Block
	b.Walk(func(n *Block) {
		if len(types) == 0 {
			out = append(out, n)
			return
		}
		for _, t := range types {
			if n.Type == t {
				out = append(out, n)
				return
			}
		}
	})
	return out
}

// UpdateMetadata bumps the LLM accounting counters in place.
func (b *Block) UpdateMetadata(requests, tokens int) {
	b.Metadata.LLMRequestCount += requests
	b.Metadata.LLMTokensUsed += tokens
}

// Page owns an ordered sequence of blocks. Its index is stable and
// zero-based; insertion order is the reading order established by the
// builders. Processors mutate blocks in place but never reorder pages.
type Page struct {
	Index  int      `json:"page"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Blocks []*Block `json:"blocks"`

	// Raster of the page set by the layout builder, retained so LLM
	// processors can crop block regions. ImageScale converts page points to
	// raster pixels.
	Image      image.Image `json:"-"`
	ImageScale float64     `json:"-"`
}

// ContainedBlocks returns every block on the page matching the given types.
func (p *Page) ContainedBlocks(types ...BlockType) []*Block {
	var out []*Block
	for _, b := range p.Blocks {
		out = append(out, b.ContainedBlocks(types...)...)
	}
	return out
}

// Crop extracts the raster region under bbox, expanded by pad points on
// every side. Returns nil when the page has no raster.
func (p *Page) Crop(bbox Rect, pad float64) image.Image {
	if p.Image == nil {
		return nil
	}
	scale := p.ImageScale
	if scale <= 0 {
		scale = 1
	}
	bounds := p.Image.Bounds()
	x0 := int((bbox.X0 - pad) * scale)
	y0 := int((bbox.Y0 - pad) * scale)
	x1 := int((bbox.X1 + pad) * scale)
	y1 := int((bbox.Y1 + pad) * scale)
	x0 = max(x0, bounds.Min.X)
	y0 = max(y0, bounds.Min.Y)
	x1 = min(x1, bounds.Max.X)
	y1 = min(y1, bounds.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	draw.Copy(dst, image.Point{}, p.Image, image.Rect(x0, y0, x1, y1), draw.Src, nil)
	return dst
}

// TOCEntry is one table-of-contents row collected from section headers.
type TOCEntry struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Page  int    `json:"page"`
}

// DocumentMetadata carries document-level counters aggregated at render time.
type DocumentMetadata struct {
	PageCount       int `json:"page_count"`
	LLMRequestCount int `json:"llm_request_count"`
	LLMTokensUsed   int `json:"llm_tokens_used"`
}

// Document is the root container for one conversion. It is created once per
// conversion and never reused across conversions.
type Document struct {
	Filepath string           `json:"filepath"`
	Pages    []*Page          `json:"pages"`
	TOC      []TOCEntry       `json:"table_of_contents,omitempty"`
	Metadata DocumentMetadata `json:"metadata"`
}

// ContainedBlocks returns every block in the document matching the given
// types, in page order.
func (d *Document) ContainedBlocks(types ...BlockType) []*Block {
	var out []*Block
	for _, p := range d.Pages {
		out = append(out, p.ContainedBlocks(types...)...)
	}
	return out
}

// PageFor returns the page owning the given index, or nil.
func (d *Document) PageFor(index int) *Page {
	for _, p := range d.Pages {
		if p.Index == index {
			return p
		}
	}
	return nil
}

// AggregateMetadata refreshes the document-level counters from the tree.
func (d *Document) AggregateMetadata() {
	d.Metadata.PageCount = len(d.Pages)
	d.Metadata.LLMRequestCount = 0
	d.Metadata.LLMTokensUsed = 0
	for _, b := range d.ContainedBlocks() {
		d.Metadata.LLMRequestCount += b.Metadata.LLMRequestCount
		d.Metadata.LLMTokensUsed += b.Metadata.LLMTokensUsed
	}
}
