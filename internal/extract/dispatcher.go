package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
)

// Config for the extraction dispatcher.
type Config struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	MaxConcurrent int64  // bound on concurrent local extraction work; default NumCPU
}

// Dispatcher routes a document to the extractor for its format.
// Local parsing is CPU-bound, so a weighted semaphore keeps a burst of
// concurrent requests from starving the coordination layer.
type Dispatcher struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
	sem    *semaphore.Weighted
}

func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = int64(runtime.NumCPU())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:    cfg,
		runner: execRunner{},
		logger: logger,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Extract dispatches by declared content type, falling back to filename
// extension. Image inputs return an empty result with method "none"; the
// caller must route those to recognition.
func (d *Dispatcher) Extract(ctx context.Context, doc Document) (ExtractionResult, error) {
	format, err := DetectFormat(doc)
	if err != nil {
		return ExtractionResult{}, err
	}
	return d.ExtractAs(ctx, doc, format)
}

// ExtractAs forces a specific format, bypassing detection. Used when the
// caller overrides the declared type.
func (d *Dispatcher) ExtractAs(ctx context.Context, doc Document, format constants.Format) (ExtractionResult, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return ExtractionResult{}, err
	}
	defer d.sem.Release(1)

	d.logger.Debug("extract.start", "format", format, "filename", doc.Filename, "bytes", len(doc.Content))

	var res ExtractionResult
	var err error
	switch format {
	case constants.PDF:
		res, err = d.extractPDF(ctx, doc.Content)
	case constants.DOCX:
		res, err = extractDocx(doc.Content)
	case constants.TEXT:
		res, err = extractText(doc.Content)
	case constants.IMAGE:
		// No selectable text; signal that recognition is required.
		res = ExtractionResult{Pages: 1, Method: constants.MethodNone}
	default:
		return ExtractionResult{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("no extractor for format %q", format), common.ErrUnsupportedFormat)
	}
	if err != nil {
		d.logger.Warn("extract.failed", "format", format, "filename", doc.Filename, "error", err)
		return ExtractionResult{}, err
	}

	res.Format = format
	res.Quality = Score(res.Text, res.Pages)
	d.logger.Debug("extract.ok",
		"format", format,
		"pages", res.Pages,
		"chars", res.Quality.CharCount,
		"score", res.Quality.Score,
	)
	return res, nil
}

// DetectFormat resolves the document's format. The declared content type
// wins; the filename extension is the fallback.
func DetectFormat(doc Document) (constants.Format, error) {
	if f := constants.MapContentTypeToFormat(doc.ContentType); f != "" {
		return f, nil
	}
	if doc.Filename != "" {
		if f := constants.MapExtToFormat(filepath.Ext(doc.Filename)); f != "" {
			return f, nil
		}
	}
	return "", common.NewAppError("UNSUPPORTED_FORMAT",
		fmt.Sprintf("unsupported file type: content_type=%q filename=%q", doc.ContentType, doc.Filename),
		common.ErrUnsupportedFormat)
}
