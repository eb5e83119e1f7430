package converter

import (
	"context"
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treepress/internal/config"
	"treepress/internal/domain"
	"treepress/internal/port"
)

type fakePage struct {
	width, height float64
	lines         []port.ProviderLine
}

type fakeProvider struct {
	pages  []fakePage
	closed bool
}

func (f *fakeProvider) PageCount() int { return len(f.pages) }

func (f *fakeProvider) PageSize(i int) (float64, float64, error) {
	return f.pages[i].width, f.pages[i].height, nil
}

func (f *fakeProvider) PageImage(i int) (image.Image, float64, error) {
	p := f.pages[i]
	scale := 96.0 / 72.0
	return image.NewRGBA(image.Rect(0, 0, int(p.width*scale), int(p.height*scale))), scale, nil
}

func (f *fakeProvider) PageLines(i int) ([]port.ProviderLine, error) {
	return f.pages[i].lines, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func textLine(text string, x, y, size float64) port.ProviderLine {
	width := float64(len(text)) * size * 0.5
	bbox := domain.Rect{X0: x, Y0: y, X1: x + width, Y1: y + size*1.25}
	return port.ProviderLine{
		BBox:  bbox,
		Spans: []port.ProviderSpan{{Text: text, BBox: bbox, Font: "Times", Size: size}},
	}
}

func proseProvider() *fakeProvider {
	return &fakeProvider{pages: []fakePage{{
		width:  612,
		height: 792,
		lines: []port.ProviderLine{
			textLine("The quick brown fox jumps over", 72, 200, 12),
			textLine("the lazy dog near the river bank.", 72, 215, 12),
		},
	}}}
}

func withFake(c *Converter, f *fakeProvider) {
	c.openProvider = func(path, pageRange string) (port.Provider, error) {
		return f, nil
	}
}

func mustNew(t *testing.T, cfg *config.Config, artifacts Artifacts, opts Options) *Converter {
	t.Helper()
	conv, err := New(cfg, artifacts, opts)
	require.NoError(t, err)
	return conv
}

func TestConvertMarkdown(t *testing.T) {
	cfg := config.Default()
	conv := mustNew(t, cfg, Artifacts{}, Options{})
	prov := proseProvider()
	withFake(conv, prov)

	result, err := conv.Convert(context.Background(), "input.pdf")

	require.NoError(t, err)
	assert.Equal(t, "markdown", result.Format)
	assert.Contains(t, string(result.Data), "quick brown fox")
	assert.True(t, prov.closed)
	assert.Equal(t, 1, conv.PageCount())
	assert.Equal(t, 1, result.Metadata.PageCount)
}

func TestConvertByteInputUsesTempFile(t *testing.T) {
	cfg := config.Default()
	conv := mustNew(t, cfg, Artifacts{}, Options{})
	var opened string
	conv.openProvider = func(path, pageRange string) (port.Provider, error) {
		opened = path
		return proseProvider(), nil
	}

	_, err := conv.Convert(context.Background(), []byte("%PDF-1.4 fake"))

	require.NoError(t, err)
	require.NotEmpty(t, opened)
	_, statErr := os.Stat(opened)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after conversion")
}

func TestConvertRejectsUnsupportedInput(t *testing.T) {
	conv := mustNew(t, config.Default(), Artifacts{}, Options{})

	_, err := conv.Convert(context.Background(), 42)

	var inputErr *domain.InputTypeError
	require.ErrorAs(t, err, &inputErr)
}

func TestNewUnknownProcessor(t *testing.T) {
	_, err := New(config.Default(), Artifacts{}, Options{Processors: []string{"order", "no-such"}})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "processor", cfgErr.Kind)
	assert.Equal(t, "no-such", cfgErr.Name)
}

func TestNewUnknownRenderer(t *testing.T) {
	_, err := New(config.Default(), Artifacts{}, Options{Renderer: "docx"})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "renderer", cfgErr.Kind)
}

func TestResolveProcessorNamesWithoutLLM(t *testing.T) {
	conv := mustNew(t, config.Default(), Artifacts{}, Options{})

	names, err := conv.resolveProcessorNames()

	require.NoError(t, err)
	// With use_llm off the toggles are ignored and the full pipeline runs;
	// LLM processors no-op against their nil service.
	assert.Equal(t, defaultOrder, names)
}

func TestResolveProcessorNamesFiltersToggles(t *testing.T) {
	cfg := config.Default()
	cfg.UseLLM = true
	cfg.Processors.EnableLLMTable = false
	cfg.Processors.EnableLLMPageCorrection = false
	conv := mustNew(t, cfg, Artifacts{}, Options{})

	names, err := conv.resolveProcessorNames()

	require.NoError(t, err)
	assert.NotContains(t, names, "llm-table")
	assert.NotContains(t, names, "llm-page-correction")
	assert.Contains(t, names, "llm-table-merge")
	assert.Contains(t, names, "table")
	assert.Len(t, names, len(defaultOrder)-2)
}

func TestResolveProcessorNamesExplicitListSkipsToggles(t *testing.T) {
	cfg := config.Default()
	cfg.UseLLM = true
	cfg.Processors.EnableLLMTable = false
	conv := mustNew(t, cfg, Artifacts{}, Options{Processors: []string{"llm-table", "text"}})

	names, err := conv.resolveProcessorNames()

	require.NoError(t, err)
	assert.Equal(t, []string{"llm-table", "text"}, names)
}

type countingService struct {
	calls int
}

func (s *countingService) Invoke(ctx context.Context, req port.LLMRequest) map[string]any {
	s.calls++
	return map[string]any{}
}

func TestConvertInjectedLLMServiceWins(t *testing.T) {
	cfg := config.Default()
	cfg.UseLLM = true
	svc := &countingService{}
	conv := mustNew(t, cfg, Artifacts{LLM: svc}, Options{})

	resolved, err := conv.resolveLLMService([]string{"llm-table"})

	require.NoError(t, err)
	assert.Same(t, svc, resolved)
}

func TestResolveLLMServiceSkippedWithoutLLMProcessors(t *testing.T) {
	cfg := config.Default()
	cfg.UseLLM = true
	conv := mustNew(t, cfg, Artifacts{}, Options{})

	resolved, err := conv.resolveLLMService([]string{"order", "text"})

	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestNewUnknownLLMServiceName(t *testing.T) {
	cfg := config.Default()
	cfg.UseLLM = true

	_, err := New(cfg, Artifacts{}, Options{LLMService: "bedrock"})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "llm service", cfgErr.Kind)
	assert.Equal(t, "bedrock", cfgErr.Name)
}
