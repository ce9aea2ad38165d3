package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/ocr"
	"github.com/cvparse/cvparse/internal/provider"
)

// ParseLoop is the validated-extraction state machine. From Pending(i) it
// invokes chain[i], validates the response against the resume schema, and
// either terminates in Validated or advances to Pending(i+1); running off
// the end of the chain is Exhausted. Escalation is strictly left to right —
// no backtracking, no parallel speculation, and deliberately no
// short-circuit when consecutive attempts return identical invalid output.
type ParseLoop struct {
	invoker ocr.ModelInvoker
	logger  *slog.Logger
}

func NewParseLoop(invoker ocr.ModelInvoker, logger *slog.Logger) *ParseLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseLoop{invoker: invoker, logger: logger}
}

// Run drives the chain over text. The returned usage trail covers every
// attempt, failed ones included — they consumed tokens and must be
// reported. On exhaustion the error carries the last attempt's diagnostics.
func (l *ParseLoop) Run(ctx context.Context, text string, chain provider.Chain) (*llm.ResumeData, []llm.UsageRecord, error) {
	if chain.Disabled() {
		return nil, nil, common.NewAppError("PARSE_NO_CHAIN",
			"parse chain is empty", common.ErrInvalidInput)
	}

	msgs := llm.BuildParseMessages(text)
	var usage []llm.UsageRecord
	var lastErrors []string

	for i, ref := range chain {
		l.logger.Info("parse.attempt", "model", ref.String(), "attempt", i+1, "text_len", len(text))

		content, record, err := l.invoker.Invoke(ctx, ref, constants.StepParse, msgs)
		usage = append(usage, record)
		if err != nil {
			if ctx.Err() != nil {
				return nil, usage, ctx.Err()
			}
			lastErrors = []string{err.Error()}
			l.logger.Warn("parse.attempt_failed", "model", ref.String(), "error", err)
			continue
		}

		res := llm.ValidateResponse(content)
		if res.Valid {
			l.logger.Info("parse.validated", "model", ref.String(), "attempt", i+1)
			return res.Data, usage, nil
		}

		lastErrors = res.Errors
		l.logger.Warn("parse.validation_failed",
			"model", ref.String(),
			"attempt", i+1,
			"errors", len(res.Errors),
		)
	}

	l.logger.Error("parse.chain_exhausted", "attempts", len(chain), "last_errors", lastErrors)
	return nil, usage, common.NewAppError("PARSE_EXHAUSTED",
		fmt.Sprintf("all parse models exhausted; last errors: %s", strings.Join(lastErrors, "; ")),
		common.ErrExtractionFailed)
}
