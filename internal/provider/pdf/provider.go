package pdf

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/net/html"

	"treepress/internal/domain"
	"treepress/internal/port"
)

// renderDPI is the raster resolution handed to detectors and LLM crops.
const renderDPI = 96

// Provider reads a PDF through MuPDF (go-fitz). Page text comes from the
// positioned-HTML text layer, so born-digital PDFs carry line geometry;
// scanned pages report no lines and fall through to OCR.
type Provider struct {
	doc   *fitz.Document
	pages []int // selected source page indices, in order

	parsed map[int]*parsedPage
}

type parsedPage struct {
	width  float64
	height float64
	lines  []port.ProviderLine
}

// Open opens the document at path, restricted to pageRange when non-empty
// ("0-4,7" syntax, zero-based, inclusive ranges).
func Open(path string, pageRange string) (*Provider, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	total := doc.NumPage()
	if total == 0 {
		_ = doc.Close()
		return nil, fmt.Errorf("pdf has no pages")
	}
	pages, err := ParsePageRange(pageRange, total)
	if err != nil {
		_ = doc.Close()
		return nil, err
	}
	return &Provider{
		doc:    doc,
		pages:  pages,
		parsed: make(map[int]*parsedPage),
	}, nil
}

// ParsePageRange expands a "0-4,7" style selection against a page count.
// An empty selection means every page.
func ParsePageRange(spec string, total int) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}
	seen := map[int]bool{}
	var pages []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if i := strings.Index(part, "-"); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q: %w", spec, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q: %w", spec, err)
		}
		if start < 0 || end >= total || start > end {
			return nil, fmt.Errorf("page range %q out of bounds for %d pages", spec, total)
		}
		for p := start; p <= end; p++ {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages, nil
}

func (p *Provider) PageCount() int { return len(p.pages) }

func (p *Provider) source(i int) (int, error) {
	if i < 0 || i >= len(p.pages) {
		return 0, fmt.Errorf("page index %d out of range", i)
	}
	return p.pages[i], nil
}

func (p *Provider) PageSize(i int) (float64, float64, error) {
	pg, err := p.parse(i)
	if err != nil {
		return 0, 0, err
	}
	return pg.width, pg.height, nil
}

func (p *Provider) PageImage(i int) (image.Image, float64, error) {
	src, err := p.source(i)
	if err != nil {
		return nil, 0, err
	}
	img, err := p.doc.ImageDPI(src, renderDPI)
	if err != nil {
		return nil, 0, fmt.Errorf("rendering page %d: %w", i, err)
	}
	return img, renderDPI / 72.0, nil
}

func (p *Provider) PageLines(i int) ([]port.ProviderLine, error) {
	pg, err := p.parse(i)
	if err != nil {
		return nil, err
	}
	return pg.lines, nil
}

func (p *Provider) Close() error {
	return p.doc.Close()
}

func (p *Provider) parse(i int) (*parsedPage, error) {
	if pg, ok := p.parsed[i]; ok {
		return pg, nil
	}
	src, err := p.source(i)
	if err != nil {
		return nil, err
	}
	markup, err := p.doc.HTML(src, true)
	if err != nil {
		return nil, fmt.Errorf("extracting text layer for page %d: %w", i, err)
	}
	pg, err := parseTextLayer(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing text layer for page %d: %w", i, err)
	}
	p.parsed[i] = pg
	return pg, nil
}

// parseTextLayer walks MuPDF's positioned-HTML output: a page div carrying
// width/height, absolute-positioned <p> elements per line, and styled
// <span> runs inside them. Span widths are estimated from glyph count
// because the HTML layer does not carry them.
func parseTextLayer(markup string) (*parsedPage, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	pg := &parsedPage{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			style := attr(n, "style")
			switch n.Data {
			case "div":
				if w, ok := styleValue(style, "width"); ok {
					pg.width = w
				}
				if h, ok := styleValue(style, "height"); ok {
					pg.height = h
				}
			case "p":
				top, hasTop := styleValue(style, "top")
				left, hasLeft := styleValue(style, "left")
				if hasTop && hasLeft {
					if line := parseLine(n, top, left); len(line.Spans) > 0 {
						pg.lines = append(pg.lines, line)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(pg.lines, func(a, b int) bool {
		if pg.lines[a].BBox.Y0 != pg.lines[b].BBox.Y0 {
			return pg.lines[a].BBox.Y0 < pg.lines[b].BBox.Y0
		}
		return pg.lines[a].BBox.X0 < pg.lines[b].BBox.X0
	})
	return pg, nil
}

func parseLine(p *html.Node, top, left float64) port.ProviderLine {
	line := port.ProviderLine{}
	x := left
	var maxSize float64

	var walk func(n *html.Node, font string, size float64)
	walk = func(n *html.Node, font string, size float64) {
		if n.Type == html.ElementNode && n.Data == "span" {
			style := attr(n, "style")
			if f, ok := styleString(style, "font-family"); ok {
				font = f
			}
			if s, ok := styleValue(style, "font-size"); ok {
				size = s
			}
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			if size <= 0 {
				size = 10
			}
			// Rough advance: average glyph width at half the em size.
			width := float64(len([]rune(n.Data))) * size * 0.5
			span := port.ProviderSpan{
				Text: n.Data,
				Font: font,
				Size: size,
				BBox: domain.Rect{X0: x, Y0: top, X1: x + width, Y1: top + size*1.25},
			}
			line.Spans = append(line.Spans, span)
			x += width
			if size > maxSize {
				maxSize = size
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, font, size)
		}
	}
	walk(p, "", 0)

	if len(line.Spans) > 0 {
		if maxSize <= 0 {
			maxSize = 10
		}
		line.BBox = domain.Rect{X0: left, Y0: top, X1: x, Y1: top + maxSize*1.25}
	}
	return line
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// styleValue extracts a numeric pt/px dimension from an inline style.
func styleValue(style, key string) (float64, bool) {
	s, ok := styleString(style, key)
	if !ok {
		return 0, false
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "pt"), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func styleString(style, key string) (string, bool) {
	for _, decl := range strings.Split(style, ";") {
		k, v, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(k) == key {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
