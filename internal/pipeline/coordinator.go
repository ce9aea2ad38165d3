package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/ocr"
	"github.com/cvparse/cvparse/internal/provider"
)

// Extractor is the slice of the dispatcher the coordinator needs.
type Extractor interface {
	Extract(ctx context.Context, doc extract.Document) (extract.ExtractionResult, error)
	ExtractAs(ctx context.Context, doc extract.Document, format constants.Format) (extract.ExtractionResult, error)
}

// Recognizer is the slice of the OCR orchestrator the coordinator needs.
type Recognizer interface {
	Recognize(ctx context.Context, doc extract.Document, chain provider.Chain) (ocr.RecognitionResult, []llm.UsageRecord, error)
}

// StructuredParser is the slice of the parse loop the coordinator needs.
type StructuredParser interface {
	Run(ctx context.Context, text string, chain provider.Chain) (*llm.ResumeData, []llm.UsageRecord, error)
}

// Config holds the coordinator's fixed knobs, resolved once at startup.
type Config struct {
	QualityThreshold float64       // recognition triggers below this score
	MergePolicy      string        // common.MergeReplace | common.MergeLonger
	RunTimeout       time.Duration // 0 = no run-level deadline
}

// Coordinator ties the stages into one request-scoped run: extraction,
// quality gate, optional recognition, validated parse loop. Stages run
// strictly sequentially; each stage's outcome decides whether the next
// runs at all. Nothing is cached across runs.
type Coordinator struct {
	cfg        Config
	extractor  Extractor
	recognizer Recognizer
	parser     StructuredParser
	logger     *slog.Logger
}

func NewCoordinator(cfg Config, ex Extractor, rec Recognizer, parser StructuredParser, logger *slog.Logger) *Coordinator {
	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = 0.75
	}
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = common.MergeReplace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{cfg: cfg, extractor: ex, recognizer: rec, parser: parser, logger: logger}
}

// Run executes one pipeline run. The returned Result carries the full
// ordered usage ledger even when err is non-nil, so spent tokens are
// always reconcilable.
func (c *Coordinator) Run(ctx context.Context, doc extract.Document, opts RunOptions) (Result, error) {
	start := time.Now()
	if c.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RunTimeout)
		defer cancel()
	}
	if opts.OCRPolicy == "" {
		opts.OCRPolicy = OCRAuto
	}

	st := &runState{doc: doc, opts: opts, method: constants.MethodNone}

	c.logger.Info("pipeline.run.start",
		"filename", doc.Filename,
		"content_type", doc.ContentType,
		"ocr_policy", opts.OCRPolicy,
		"ocr_chain_len", len(opts.OCRChain),
		"parse_chain_len", len(opts.ParseChain),
	)

	cur := stepExtract
	for cur != stepDone && cur != stepFailed {
		var next step
		switch cur {
		case stepExtract:
			next = c.runExtract(ctx, st)
		case stepQualityCheck:
			next = c.runQualityCheck(st)
		case stepRecognize:
			next = c.runRecognize(ctx, st)
		case stepValidateLoop:
			next = c.runValidateLoop(ctx, st)
		}
		c.logger.Debug("pipeline.transition", "from", cur.String(), "to", next.String())
		cur = next
	}

	meta := Metadata{
		ExtractionMethod: st.method,
		OCRUsed:          st.ocrUsed,
		Pages:            st.pages,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Usage:            st.usage,
	}

	if cur == stepFailed {
		err := c.classifyFailure(ctx, st)
		c.logger.Warn("pipeline.run.failed",
			"stage", st.failedStage,
			"error", err,
			"usage_entries", len(st.usage),
			"elapsed_ms", meta.ProcessingTimeMS,
		)
		return Result{Success: false, Metadata: meta}, err
	}

	c.logger.Info("pipeline.run.ok",
		"extraction_method", meta.ExtractionMethod,
		"ocr_used", meta.OCRUsed,
		"pages", meta.Pages,
		"usage_entries", len(st.usage),
		"elapsed_ms", meta.ProcessingTimeMS,
	)
	return Result{Success: true, Data: st.record, Metadata: meta}, nil
}

func (c *Coordinator) runExtract(ctx context.Context, st *runState) step {
	var res extract.ExtractionResult
	var err error
	if st.opts.FormatOverride != "" {
		res, err = c.extractor.ExtractAs(ctx, st.doc, st.opts.FormatOverride)
	} else {
		res, err = c.extractor.Extract(ctx, st.doc)
	}
	if err != nil {
		// No escalation possible here: unsupported or corrupt input aborts.
		return c.fail(st, "extract", err)
	}

	st.text = res.Text
	st.pages = res.Pages
	st.method = res.Method
	st.quality = res.Quality
	return stepQualityCheck
}

// runQualityCheck decides whether recognition runs. Pure decision, no I/O.
func (c *Coordinator) runQualityCheck(st *runState) step {
	switch st.opts.OCRPolicy {
	case OCRSkip:
		// Use algorithmic text as-is, even when empty.
		return stepValidateLoop
	case OCRForce:
		if !renderable(st) {
			c.logger.Warn("pipeline.ocr_forced_unrenderable", "filename", st.doc.Filename)
			return stepValidateLoop
		}
		if st.opts.OCRChain.Disabled() {
			return c.fail(st, "quality_check", common.NewAppError("OCR_DISABLED",
				"ocr policy is 'force' but no recognition chain is configured",
				common.ErrInvalidInput))
		}
		return stepRecognize
	}

	// auto
	if st.pages == 0 {
		// Nothing was extracted and nothing can be: without recognition
		// there is no text to parse.
		if st.opts.OCRChain.Disabled() || !renderable(st) {
			return c.fail(st, "quality_check", common.NewAppError("EMPTY_DOCUMENT",
				"document has no extractable pages and recognition is disabled",
				common.ErrCorruptDocument))
		}
		return stepRecognize
	}
	if st.quality.Score >= c.cfg.QualityThreshold {
		return stepValidateLoop
	}
	if st.opts.OCRChain.Disabled() || !renderable(st) {
		c.logger.Warn("pipeline.low_quality_no_ocr",
			"score", st.quality.Score,
			"threshold", c.cfg.QualityThreshold,
		)
		return stepValidateLoop
	}
	return stepRecognize
}

func (c *Coordinator) runRecognize(ctx context.Context, st *runState) step {
	res, usage, err := c.recognizer.Recognize(ctx, st.doc, st.opts.OCRChain)
	st.appendUsage(usage...)
	if err != nil {
		return c.fail(st, "recognize", err)
	}

	st.ocrUsed = true
	switch c.cfg.MergePolicy {
	case common.MergeLonger:
		// Keep whichever text is longer; flagged in the docs as a potential
		// quality regression of the default replace policy.
		if len(res.Text) > len(st.text) {
			st.text = res.Text
			st.method = constants.MethodOCR
		}
	default: // replace
		st.text = res.Text
		st.method = constants.MethodOCR
	}
	if st.pages == 0 {
		st.pages = res.Pages
	}
	return stepValidateLoop
}

func (c *Coordinator) runValidateLoop(ctx context.Context, st *runState) step {
	record, usage, err := c.parser.Run(ctx, st.text, st.opts.ParseChain)
	st.appendUsage(usage...)
	if err != nil {
		return c.fail(st, "parse", err)
	}
	st.record = record
	return stepDone
}

func (c *Coordinator) fail(st *runState, stage string, err error) step {
	st.failedStage = stage
	st.failure = err
	return stepFailed
}

// classifyFailure maps context expiry to the timeout sentinel so callers
// can distinguish a run deadline from a stage failure.
func (c *Coordinator) classifyFailure(ctx context.Context, st *runState) error {
	err := st.failure
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.NewAppError("RUN_TIMEOUT", "run exceeded configured deadline", common.ErrTimeout)
	}
	return err
}

// renderable reports whether the input can be rasterized for recognition.
// Calling the orchestrator on anything else is a caller-contract violation.
func renderable(st *runState) bool {
	format, err := extract.DetectFormat(st.doc)
	if st.opts.FormatOverride != "" {
		format, err = st.opts.FormatOverride, nil
	}
	if err != nil {
		return false
	}
	return format == constants.PDF || format == constants.IMAGE
}
