package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/cvparse/internal/provider"
)

// Invoker sends one request to one named model through the provider
// registry. Every invocation yields exactly one UsageRecord, failed calls
// included — tokens already spent are observable cost and must be reported.
type Invoker struct {
	registry *provider.Registry
	logger   *slog.Logger
}

func NewInvoker(registry *provider.Registry, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{registry: registry, logger: logger}
}

// Invoke performs one inference call against ref. step tags the returned
// UsageRecord (constants.StepOCR or constants.StepParse). The record carries
// zero token counts when the call failed before the provider reported usage.
func (iv *Invoker) Invoke(ctx context.Context, ref provider.ModelRef, step string, msgs []provider.Message) (string, UsageRecord, error) {
	rid := uuid.New().String()
	start := time.Now()
	record := UsageRecord{Step: step, Model: ref.Model}

	client, err := iv.registry.Resolve(ref)
	if err != nil {
		return "", record, err
	}

	iv.logger.Info("invoker.call.start",
		"req_id", rid,
		"step", step,
		"model", ref.String(),
		"messages", len(msgs),
	)

	// Temperature 0: extraction wants the most deterministic output.
	resp, err := client.Chat(ctx, provider.ChatRequest{
		Model:    ref.Model,
		Messages: msgs,
	})
	if err != nil {
		iv.logger.Warn("invoker.call.failed",
			"req_id", rid,
			"step", step,
			"model", ref.String(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", record, err
	}

	record.InputTokens = resp.Usage.InputTokens
	record.OutputTokens = resp.Usage.OutputTokens

	iv.logger.Info("invoker.call.ok",
		"req_id", rid,
		"step", step,
		"model", ref.String(),
		"input_tokens", record.InputTokens,
		"output_tokens", record.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp.Content, record, nil
}
