package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"treepress/internal/config"
	"treepress/internal/converter"
	"treepress/internal/detector/tesseract"
	"treepress/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	output := flag.String("o", "", "output file (default: input name with the format's extension)")
	format := flag.String("format", "", "output format: markdown, json, html, chunked (overrides config)")
	flag.Parse()
	if flag.NArg() != 1 {
		return fmt.Errorf("usage: convert [-o out] [-format fmt] input.pdf")
	}
	input := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log)

	var artifacts converter.Artifacts
	if cfg.OCR.Enabled {
		rec, err := tesseract.New(cfg.OCR.Language, 96.0/72.0)
		if err != nil {
			return fmt.Errorf("failed to initialize ocr: %w", err)
		}
		defer rec.Close()
		artifacts.OCR = rec
	}

	conv, err := converter.New(cfg, artifacts, converter.Options{Renderer: *format})
	if err != nil {
		return err
	}
	result, err := conv.Convert(context.Background(), input)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + extensionFor(result.Format)
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().
		Str("output", out).
		Int("pages", conv.PageCount()).
		Int("llm_requests", result.Metadata.LLMRequestCount).
		Int("llm_tokens", result.Metadata.LLMTokensUsed).
		Msg("conversion complete")
	return nil
}

func extensionFor(format string) string {
	switch format {
	case "json", "chunked":
		return ".json"
	case "html":
		return ".html"
	default:
		return ".md"
	}
}
