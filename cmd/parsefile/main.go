// parsefile runs one local file through the full pipeline and prints the
// result as JSON. Useful for trying chains and thresholds without the HTTP
// surface:
//
//	OPENROUTER_API_KEY=... go run ./cmd/parsefile -ocr force resume.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/ocr"
	"github.com/cvparse/cvparse/internal/pipeline"
	"github.com/cvparse/cvparse/internal/provider"
	"github.com/cvparse/cvparse/internal/provider/openrouter"
)

func main() {
	ocrPolicy := flag.String("ocr", pipeline.OCRAuto, "ocr policy: auto|force|skip")
	ocrModels := flag.String("ocr-models", "", "override OCR chain, or 'none'")
	parseModels := flag.String("parse-models", "", "override parse chain")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: parsefile [flags] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		fatal("read file: %v", err)
	}

	parseRaw := cfg.Pipeline.DefaultParseModels
	if *parseModels != "" {
		parseRaw = *parseModels
	}
	parseChain, err := provider.ParseChain(parseRaw, "parse-models")
	if err != nil {
		fatal("%v", err)
	}
	ocrRaw := cfg.Pipeline.DefaultOCRModels
	if *ocrModels != "" {
		ocrRaw = *ocrModels
	}
	ocrChain, err := provider.ParseChain(ocrRaw, "ocr-models")
	if err != nil {
		fatal("%v", err)
	}

	registry := provider.NewRegistry()
	registry.Register("openrouter", openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.Provider.OpenRouterAPIKey,
		BaseURL: cfg.Provider.OpenRouterBaseURL,
		Timeout: cfg.Provider.RequestTimeout,
	}, logger))

	invoker := llm.NewInvoker(registry, logger)
	dispatcher := extract.NewDispatcher(extract.Config{Pdftotext: cfg.OCR.Pdftotext}, logger)
	renderer := ocr.NewRenderer(ocr.RendererConfig{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, logger)
	coordinator := pipeline.NewCoordinator(pipeline.Config{
		QualityThreshold: cfg.Pipeline.QualityThreshold,
		MergePolicy:      cfg.Pipeline.MergePolicy,
		RunTimeout:       cfg.Server.RequestTimeout,
	}, dispatcher, ocr.NewOrchestrator(renderer, invoker, logger), pipeline.NewParseLoop(invoker, logger), logger)

	doc := extract.Document{
		Content:     content,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Filename:    filepath.Base(path),
	}
	result, runErr := coordinator.Run(context.Background(), doc, pipeline.RunOptions{
		OCRPolicy:  *ocrPolicy,
		OCRChain:   ocrChain,
		ParseChain: parseChain,
	})

	out := map[string]any{
		"success":  result.Success,
		"data":     result.Data,
		"metadata": result.Metadata,
	}
	if runErr != nil {
		out["error"] = runErr.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if runErr != nil {
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
