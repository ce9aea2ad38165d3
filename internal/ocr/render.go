package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
)

// PageRenderer converts a document into one image per page.
// A nil entry in the returned slice marks a page that failed to render;
// callers tolerate individual failures and skip those pages.
type PageRenderer interface {
	RenderPages(ctx context.Context, doc extract.Document) (images [][]byte, warnings []string, err error)
}

// RendererConfig for the pdftoppm-backed renderer.
type RendererConfig struct {
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	DPI         int    // rasterization DPI, default 200
	MaxPages    int    // 0 = no limit
	Parallelism int    // concurrent page renders, default 4
}

// Renderer renders PDF pages to PNG via pdftoppm, one page per invocation
// so a single broken page does not sink the whole document. Image uploads
// pass through as a single page.
type Renderer struct {
	cfg    RendererConfig
	runner extract.Runner
	logger *slog.Logger
}

func NewRenderer(cfg RendererConfig, logger *slog.Logger) *Renderer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{cfg: cfg, runner: extract.NewExecRunner(), logger: logger}
}

func (r *Renderer) RenderPages(ctx context.Context, doc extract.Document) ([][]byte, []string, error) {
	format, err := extract.DetectFormat(doc)
	if err != nil {
		return nil, nil, err
	}

	switch format {
	case constants.IMAGE:
		return [][]byte{doc.Content}, nil, nil
	case constants.PDF:
		return r.renderPDF(ctx, doc.Content)
	default:
		return nil, nil, common.NewAppError("RENDER_UNSUPPORTED",
			fmt.Sprintf("format %q cannot be rendered to images", format),
			common.ErrRecognitionUnavailable)
	}
}

func (r *Renderer) renderPDF(ctx context.Context, content []byte) ([][]byte, []string, error) {
	pages, err := extract.PDFPageCount(content)
	if err != nil {
		return nil, nil, err
	}
	if pages == 0 {
		return nil, nil, nil
	}
	if r.cfg.MaxPages > 0 && pages > r.cfg.MaxPages {
		pages = r.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "cvparse-ppm-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			r.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	src := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return nil, nil, err
	}

	images := make([][]byte, pages)
	var mu sync.Mutex
	var warnings []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for pageNr := 1; pageNr <= pages; pageNr++ {
		pageNr := pageNr
		g.Go(func() error {
			img, err := r.renderPage(gctx, src, tmpDir, pageNr)
			if err != nil {
				// Tolerated: the page contributes nothing, the orchestrator
				// records the warning.
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("page %d: %v", pageNr, err))
				mu.Unlock()
				return gctx.Err()
			}
			images[pageNr-1] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, warnings, err
	}

	sort.Strings(warnings)
	return images, warnings, nil
}

// renderPage rasterizes one page: pdftoppm -r DPI -png -f N -l N <src> <prefix>
func (r *Renderer) renderPage(ctx context.Context, src, tmpDir string, pageNr int) ([]byte, error) {
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", pageNr))
	n := fmt.Sprintf("%d", pageNr)
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", "-f", n, "-l", n, src, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, string(errb))
	}

	// pdftoppm appends the page number with zero padding that varies by
	// total page count, so glob instead of guessing the exact name.
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", pageNr)
	}
	return os.ReadFile(matches[0])
}
