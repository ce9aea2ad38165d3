package ocr

import (
	"context"
	"log/slog"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/provider"
)

// ModelInvoker is the slice of the model invoker the orchestrator needs.
type ModelInvoker interface {
	Invoke(ctx context.Context, ref provider.ModelRef, step string, msgs []provider.Message) (string, llm.UsageRecord, error)
}

// RecognitionResult is the outcome of one recognition pass.
type RecognitionResult struct {
	Text     string
	Pages    int // pages successfully rendered and submitted
	Model    string
	Warnings []string // page-level render warnings
}

// Orchestrator drives the OCR stage: render pages, submit them to the first
// model in the chain, escalate through the chain only on invocation failure.
// It does not self-validate output quality — that is the caller's concern.
type Orchestrator struct {
	renderer PageRenderer
	invoker  ModelInvoker
	logger   *slog.Logger
}

func NewOrchestrator(renderer PageRenderer, invoker ModelInvoker, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{renderer: renderer, invoker: invoker, logger: logger}
}

// Recognize runs recognition over doc with the given chain. A disabled
// chain returns immediately with no work and an empty usage trail. The
// returned usage trail includes a zero-token record for every failed
// attempt — those calls still spent provider time and must be reported.
func (o *Orchestrator) Recognize(ctx context.Context, doc extract.Document, chain provider.Chain) (RecognitionResult, []llm.UsageRecord, error) {
	if chain.Disabled() {
		return RecognitionResult{}, nil, nil
	}

	images, warnings, err := o.renderer.RenderPages(ctx, doc)
	if err != nil {
		return RecognitionResult{}, nil, common.WrapError(err, "render pages")
	}

	submitted := make([][]byte, 0, len(images))
	for _, img := range images {
		if img != nil {
			submitted = append(submitted, img)
		}
	}
	if len(submitted) == 0 {
		return RecognitionResult{}, nil, common.NewAppError("OCR_NO_PAGES",
			"no pages could be rendered", common.ErrRecognitionUnavailable)
	}
	for _, w := range warnings {
		o.logger.Warn("ocr.render.page_failed", "warning", w)
	}

	msgs := llm.BuildOCRMessages(submitted)
	var usage []llm.UsageRecord

	for i, ref := range chain {
		o.logger.Info("ocr.attempt", "model", ref.String(), "attempt", i+1, "pages", len(submitted))

		text, record, err := o.invoker.Invoke(ctx, ref, constants.StepOCR, msgs)
		usage = append(usage, record)
		if err == nil {
			o.logger.Info("ocr.ok", "model", ref.String(), "text_len", len(text))
			return RecognitionResult{
				Text:     text,
				Pages:    len(submitted),
				Model:    ref.Model,
				Warnings: warnings,
			}, usage, nil
		}

		// A cancelled run must not burn further chain entries.
		if ctx.Err() != nil {
			return RecognitionResult{}, usage, ctx.Err()
		}
		o.logger.Warn("ocr.attempt_failed", "model", ref.String(), "error", err)
	}

	o.logger.Warn("ocr.chain_exhausted", "attempts", len(chain))
	return RecognitionResult{}, usage, common.NewAppError("OCR_EXHAUSTED",
		"all recognition models failed", common.ErrRecognitionExhausted)
}
