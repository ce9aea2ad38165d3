package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
)

// PDFPageCount validates the PDF structure and returns its page count.
// Encrypted or structurally broken files surface as ErrCorruptDocument.
func PDFPageCount(content []byte) (int, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		return 0, common.NewAppError("PDF_CORRUPT",
			fmt.Sprintf("cannot open pdf: %v", err), common.ErrCorruptDocument)
	}
	return pdfCtx.PageCount, nil
}

// extractPDF extracts the selectable text layer of a PDF.
// pdfcpu supplies validity and page count; pdftotext supplies the text.
// A scanned PDF yields little or no text here — the quality scorer routes
// those to recognition.
func (d *Dispatcher) extractPDF(ctx context.Context, content []byte) (ExtractionResult, error) {
	pages, err := PDFPageCount(content)
	if err != nil {
		return ExtractionResult{}, err
	}

	tmpDir, err := os.MkdirTemp("", "cvparse-pdf-*")
	if err != nil {
		return ExtractionResult{}, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			d.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	src := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return ExtractionResult{}, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <src> -
	out, errb, err := d.runner.Run(ctx, d.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", src, "-")
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("pdftotext: %w (stderr: %s)", err, truncate(string(errb), 1<<10))
	}

	return ExtractionResult{
		Text:   string(out),
		Pages:  pages,
		Method: constants.MethodAlgorithmic,
	}, nil
}
