// Package converter wires providers, detectors, builders, the processor
// pipeline and a renderer into one conversion run.
package converter

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"treepress/internal/builder"
	"treepress/internal/config"
	"treepress/internal/detector/heuristic"
	"treepress/internal/domain"
	"treepress/internal/llm"
	_ "treepress/internal/llm/ollama"
	_ "treepress/internal/llm/openai"
	"treepress/internal/port"
	"treepress/internal/processor"
	"treepress/internal/processor/llmproc"
	"treepress/internal/provider/pdf"
	"treepress/internal/renderer"
)

// Artifacts are the external collaborators for one conversion. Nil fields
// fall back to the built-in heuristics (layout, lines) or are skipped
// entirely (OCR). A non-nil LLM wins over the configured service name.
type Artifacts struct {
	Layout port.LayoutDetector
	Lines  port.LineDetector
	OCR    port.TextRecognizer
	LLM    port.LLMService
}

// Options are per-conversion overrides on top of the configuration.
type Options struct {
	// Processors replaces the default pipeline when non-empty. Names must
	// be known; order is taken as given.
	Processors []string
	// Renderer overrides cfg.OutputFormat when non-empty.
	Renderer string
	// LLMService overrides cfg.LLM.Service when non-empty.
	LLMService string
	// Overrides swaps per-block-type markdown rendering.
	Overrides map[domain.BlockType]port.BlockRenderFunc
}

// defaultOrder is the full pipeline in its canonical order. Explicit
// processor lists index into the same name set.
var defaultOrder = []string{
	"order",
	"block-relabel",
	"line-merge",
	"blockquote",
	"code",
	"document-toc",
	"equation",
	"footnote",
	"ignore-text",
	"line-numbers",
	"list",
	"page-header",
	"section-header",
	"table",
	"llm-table",
	"llm-table-merge",
	"llm-form",
	"text",
	"llm-complex-region",
	"llm-image-description",
	"llm-equation",
	"llm-handwriting",
	"llm-math-block",
	"llm-section-header",
	"llm-page-correction",
	"reference",
	"blank-page",
	"debug",
}

// Converter runs PDF conversions with a fixed configuration. It is safe
// to reuse for sequential conversions but not concurrently.
type Converter struct {
	cfg       *config.Config
	opts      Options
	artifacts Artifacts
	pageCount int

	// openProvider is swapped in tests.
	openProvider func(path, pageRange string) (port.Provider, error)
}

// New validates the symbolic names in opts and cfg up front; an
// unresolvable processor, renderer or llm service name fails here with a
// ConfigurationError rather than on the first Convert.
func New(cfg *config.Config, artifacts Artifacts, opts Options) (*Converter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Converter{
		cfg:       cfg,
		opts:      opts,
		artifacts: artifacts,
		openProvider: func(path, pageRange string) (port.Provider, error) {
			return openPDF(path, pageRange)
		},
	}
	if _, err := c.resolveProcessorNames(); err != nil {
		return nil, err
	}
	if name := c.resolveRendererName(); !renderer.Known(name) {
		return nil, &domain.ConfigurationError{Kind: "renderer", Name: name}
	}
	if artifacts.LLM == nil {
		name := opts.LLMService
		if name == "" && cfg.UseLLM {
			name = cfg.LLM.Service
		}
		if name != "" && !llm.Known(name) {
			return nil, &domain.ConfigurationError{Kind: "llm service", Name: name}
		}
	}
	return c, nil
}

// PageCount reports the number of pages in the last conversion.
func (c *Converter) PageCount() int { return c.pageCount }

// Convert runs the full pipeline over a PDF given as a file path (string)
// or raw bytes ([]byte) and returns the rendered result.
func (c *Converter) Convert(ctx context.Context, input any) (*port.RenderResult, error) {
	path, cleanup, err := resolveInput(input)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	names, err := c.resolveProcessorNames()
	if err != nil {
		return nil, err
	}
	svc, err := c.resolveLLMService(names)
	if err != nil {
		return nil, err
	}
	procs, err := c.buildProcessors(names, svc)
	if err != nil {
		return nil, err
	}
	rend, err := renderer.New(c.resolveRendererName(), renderer.Options{
		Paginate:  c.cfg.PaginateOutput,
		Overrides: c.opts.Overrides,
	})
	if err != nil {
		return nil, err
	}

	prov, err := c.openProvider(path, c.cfg.PageRange)
	if err != nil {
		return nil, err
	}
	defer prov.Close()

	doc, err := c.buildDocument(ctx, prov, path)
	if err != nil {
		return nil, err
	}
	c.pageCount = len(doc.Pages)

	for _, p := range procs {
		if err := p.Process(ctx, doc); err != nil {
			return nil, fmt.Errorf("processor %s: %w", p.Name(), err)
		}
	}
	doc.AggregateMetadata()
	return rend.Render(doc)
}

func (c *Converter) buildDocument(ctx context.Context, prov port.Provider, path string) (*domain.Document, error) {
	layout := c.artifacts.Layout
	lines := c.artifacts.Lines
	if layout == nil || lines == nil {
		h := heuristic.New(prov)
		if layout == nil {
			layout = h
		}
		if lines == nil {
			lines = h
		}
	}
	db := builder.NewDocumentBuilder(
		builder.NewLayoutBuilder(layout),
		builder.NewLineBuilder(lines),
		builder.NewOcrBuilder(c.artifacts.OCR),
	)
	doc, err := db.Build(ctx, prov, path)
	if err != nil {
		return nil, err
	}
	builder.NewStructureBuilder().Build(doc)
	return doc, nil
}

// resolveProcessorNames picks the pipeline: an explicit list verbatim, or
// the default order with toggled-off LLM processors removed when use_llm
// is on. With use_llm off the toggles are not consulted; the LLM
// processors stay in the list and no-op against a nil service.
func (c *Converter) resolveProcessorNames() ([]string, error) {
	if len(c.opts.Processors) > 0 {
		for _, name := range c.opts.Processors {
			if !knownProcessor(name) {
				return nil, &domain.ConfigurationError{Kind: "processor", Name: name}
			}
		}
		return c.opts.Processors, nil
	}
	if !c.cfg.UseLLM {
		return defaultOrder, nil
	}
	var names []string
	for _, name := range defaultOrder {
		if enabled, isLLM := toggles[name]; isLLM && !enabled(c.cfg.Processors) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// toggles maps each LLM processor name to its config accessor. Names not
// in this map are deterministic processors and never filtered.
var toggles = map[string]func(t config.ProcessorToggles) bool{
	"llm-table":             func(t config.ProcessorToggles) bool { return t.EnableLLMTable },
	"llm-table-merge":       func(t config.ProcessorToggles) bool { return t.EnableLLMTableMerge },
	"llm-form":              func(t config.ProcessorToggles) bool { return t.EnableLLMForm },
	"llm-complex-region":    func(t config.ProcessorToggles) bool { return t.EnableLLMComplexRegion },
	"llm-image-description": func(t config.ProcessorToggles) bool { return t.EnableLLMImageDescription },
	"llm-equation":          func(t config.ProcessorToggles) bool { return t.EnableLLMEquation },
	"llm-handwriting":       func(t config.ProcessorToggles) bool { return t.EnableLLMHandwriting },
	"llm-math-block":        func(t config.ProcessorToggles) bool { return t.EnableLLMMathBlock },
	"llm-section-header":    func(t config.ProcessorToggles) bool { return t.EnableLLMSectionHeader },
	"llm-page-correction":   func(t config.ProcessorToggles) bool { return t.EnableLLMPageCorrection },
}

func knownProcessor(name string) bool {
	for _, n := range defaultOrder {
		if n == name {
			return true
		}
	}
	return false
}

// resolveLLMService builds the configured service when the pipeline
// contains an LLM processor and use_llm is on. An injected artifact
// service is used as-is.
func (c *Converter) resolveLLMService(names []string) (port.LLMService, error) {
	if c.artifacts.LLM != nil {
		return c.artifacts.LLM, nil
	}
	if !c.cfg.UseLLM || !hasLLMProcessor(names) {
		return nil, nil
	}
	name := c.opts.LLMService
	if name == "" {
		name = c.cfg.LLM.Service
	}
	svc, err := llm.New(name, &c.cfg.LLM)
	if err != nil {
		return nil, err
	}
	log.Info().Str("service", name).Str("model", c.cfg.LLM.Model).Msg("llm service resolved")
	return svc, nil
}

func hasLLMProcessor(names []string) bool {
	for _, name := range names {
		if _, isLLM := toggles[name]; isLLM {
			return true
		}
	}
	return false
}

func (c *Converter) resolveRendererName() string {
	if c.opts.Renderer != "" {
		return c.opts.Renderer
	}
	if c.cfg.OutputFormat != "" {
		return c.cfg.OutputFormat
	}
	return "markdown"
}

func (c *Converter) buildProcessors(names []string, svc port.LLMService) ([]port.Processor, error) {
	procs := make([]port.Processor, 0, len(names))
	for _, name := range names {
		p := c.buildProcessor(name, svc)
		if p == nil {
			return nil, &domain.ConfigurationError{Kind: "processor", Name: name}
		}
		procs = append(procs, p)
	}
	return procs, nil
}

func (c *Converter) buildProcessor(name string, svc port.LLMService) port.Processor {
	switch name {
	case "order":
		return processor.NewOrderProcessor()
	case "block-relabel":
		return processor.NewBlockRelabelProcessor(c.cfg.BlockRelabel)
	case "line-merge":
		return processor.NewLineMergeProcessor()
	case "blockquote":
		return processor.NewBlockquoteProcessor()
	case "code":
		return processor.NewCodeProcessor()
	case "document-toc":
		return processor.NewDocumentTOCProcessor()
	case "equation":
		return processor.NewEquationProcessor()
	case "footnote":
		return processor.NewFootnoteProcessor()
	case "ignore-text":
		return processor.NewIgnoreTextProcessor()
	case "line-numbers":
		return processor.NewLineNumbersProcessor()
	case "list":
		return processor.NewListProcessor()
	case "page-header":
		return processor.NewPageHeaderProcessor()
	case "section-header":
		return processor.NewSectionHeaderProcessor()
	case "table":
		return processor.NewTableProcessor()
	case "llm-table":
		return llmproc.NewTableProcessor(svc)
	case "llm-table-merge":
		return llmproc.NewTableMergeProcessor(svc)
	case "llm-form":
		return llmproc.NewFormProcessor(svc)
	case "text":
		return processor.NewTextProcessor()
	case "llm-complex-region":
		return llmproc.NewComplexRegionProcessor(svc)
	case "llm-image-description":
		return llmproc.NewImageDescriptionProcessor(svc)
	case "llm-equation":
		return llmproc.NewEquationProcessor(svc)
	case "llm-handwriting":
		return llmproc.NewHandwritingProcessor(svc)
	case "llm-math-block":
		return llmproc.NewMathBlockProcessor(svc)
	case "llm-section-header":
		return llmproc.NewSectionHeaderProcessor(svc)
	case "llm-page-correction":
		return llmproc.NewPageCorrectionProcessor(svc)
	case "reference":
		return processor.NewReferenceProcessor()
	case "blank-page":
		return processor.NewBlankPageProcessor()
	case "debug":
		return processor.NewDebugProcessor(c.cfg.DebugDataFolder)
	}
	return nil
}

func openPDF(path, pageRange string) (port.Provider, error) {
	return pdf.Open(path, pageRange)
}

// resolveInput maps the accepted input forms to a file path. Byte input
// lands in a temp file removed after the conversion.
func resolveInput(input any) (path string, cleanup func(), err error) {
	switch v := input.(type) {
	case string:
		return v, func() {}, nil
	case []byte:
		f, err := os.CreateTemp("", "*.pdf")
		if err != nil {
			return "", nil, err
		}
		name := f.Name()
		if _, err := f.Write(v); err != nil {
			f.Close()
			os.Remove(name)
			return "", nil, err
		}
		if err := f.Close(); err != nil {
			os.Remove(name)
			return "", nil, err
		}
		return name, func() { os.Remove(name) }, nil
	default:
		return "", nil, &domain.InputTypeError{Input: input}
	}
}
