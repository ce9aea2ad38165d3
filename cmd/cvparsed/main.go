package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/ocr"
	"github.com/cvparse/cvparse/internal/pipeline"
	"github.com/cvparse/cvparse/internal/provider"
	"github.com/cvparse/cvparse/internal/provider/openrouter"
	"github.com/cvparse/cvparse/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider registry: the closed set of backends, built once at startup.
	registry := provider.NewRegistry()
	registry.Register("openrouter", openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.Provider.OpenRouterAPIKey,
		BaseURL: cfg.Provider.OpenRouterBaseURL,
		Timeout: cfg.Provider.RequestTimeout,
	}, logger))

	// Validate the default chains before serving traffic.
	if _, err := provider.ParseChain(cfg.Pipeline.DefaultParseModels, "DEFAULT_PARSE_MODELS"); err != nil {
		logger.Error("invalid default parse chain", "error", err)
		os.Exit(1)
	}
	if _, err := provider.ParseChain(cfg.Pipeline.DefaultOCRModels, "DEFAULT_OCR_MODELS"); err != nil {
		logger.Error("invalid default ocr chain", "error", err)
		os.Exit(1)
	}

	invoker := llm.NewInvoker(registry, logger)
	dispatcher := extract.NewDispatcher(extract.Config{Pdftotext: cfg.OCR.Pdftotext}, logger)
	renderer := ocr.NewRenderer(ocr.RendererConfig{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, logger)
	orchestrator := ocr.NewOrchestrator(renderer, invoker, logger)
	loop := pipeline.NewParseLoop(invoker, logger)
	coordinator := pipeline.NewCoordinator(pipeline.Config{
		QualityThreshold: cfg.Pipeline.QualityThreshold,
		MergePolicy:      cfg.Pipeline.MergePolicy,
		RunTimeout:       cfg.Server.RequestTimeout,
	}, dispatcher, orchestrator, loop, logger)

	srv := server.New(cfg, coordinator, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("cvparsed serving", "addr", cfg.Server.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve failed", "error", err)
		os.Exit(1)
	}
}
