package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/provider"
)

const validResumeJSON = `{"personal_info":{"name":"Jane Doe","email":"jane@example.com"}}`

// scriptedInvoker returns one scripted response per call, in order.
type scriptedInvoker struct {
	responses []scriptedResponse
	calls     []provider.ModelRef
}

type scriptedResponse struct {
	content string
	usage   llm.UsageRecord
	err     error
}

func (s *scriptedInvoker) Invoke(ctx context.Context, ref provider.ModelRef, step string, msgs []provider.Message) (string, llm.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return "", llm.UsageRecord{Step: step, Model: ref.Model}, err
	}
	i := len(s.calls)
	s.calls = append(s.calls, ref)
	if i >= len(s.responses) {
		panic("invoker called more times than scripted")
	}
	r := s.responses[i]
	rec := r.usage
	if rec.Model == "" {
		rec = llm.UsageRecord{Step: step, Model: ref.Model}
	}
	return r.content, rec, r.err
}

func chainOf(models ...string) provider.Chain {
	var c provider.Chain
	for _, m := range models {
		c = append(c, provider.ModelRef{Provider: "openrouter", Model: m})
	}
	return c
}

func TestParseLoopFirstModelValid(t *testing.T) {
	inv := &scriptedInvoker{responses: []scriptedResponse{
		{content: validResumeJSON, usage: llm.UsageRecord{Step: constants.StepParse, Model: "a", InputTokens: 100, OutputTokens: 40}},
	}}
	loop := NewParseLoop(inv, nil)

	data, usage, err := loop.Run(context.Background(), "some resume text", chainOf("a", "b"))
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "Jane Doe", data.PersonalInfo.Name)
	require.Len(t, usage, 1)
	assert.Equal(t, "a", usage[0].Model)
	assert.Equal(t, constants.StepParse, usage[0].Step)
	assert.Len(t, inv.calls, 1, "no escalation past a validated response")
}

func TestParseLoopEscalatesPastInvalidOutput(t *testing.T) {
	inv := &scriptedInvoker{responses: []scriptedResponse{
		{content: `not json at all`},
		{content: `{"experience":[]}`}, // parses but misses required personal_info
		{content: validResumeJSON},
	}}
	loop := NewParseLoop(inv, nil)

	data, usage, err := loop.Run(context.Background(), "text", chainOf("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", data.PersonalInfo.Name)

	// Every attempt left a usage record, failed ones included.
	require.Len(t, usage, 3)
	assert.Equal(t, "a", usage[0].Model)
	assert.Equal(t, "b", usage[1].Model)
	assert.Equal(t, "c", usage[2].Model)
}

func TestParseLoopExhausted(t *testing.T) {
	inv := &scriptedInvoker{responses: []scriptedResponse{
		{content: `garbage`},
		{content: `{"wrong": true}`},
	}}
	loop := NewParseLoop(inv, nil)

	data, usage, err := loop.Run(context.Background(), "text", chainOf("a", "b"))
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.Is(err, common.ErrExtractionFailed))
	assert.Len(t, usage, 2, "exhaustion still reports every attempt's usage")

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PARSE_EXHAUSTED", appErr.Code)
}

func TestParseLoopInvocationErrorEscalates(t *testing.T) {
	inv := &scriptedInvoker{responses: []scriptedResponse{
		{err: common.NewAppError("PROVIDER_UNAVAILABLE", "boom", common.ErrProviderUnavailable)},
		{content: validResumeJSON},
	}}
	loop := NewParseLoop(inv, nil)

	data, usage, err := loop.Run(context.Background(), "text", chainOf("a", "b"))
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Len(t, usage, 2, "a failed call still yields a zero-token record")
	assert.Zero(t, usage[0].InputTokens)
}

func TestParseLoopEmptyChain(t *testing.T) {
	loop := NewParseLoop(&scriptedInvoker{}, nil)

	_, usage, err := loop.Run(context.Background(), "text", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Empty(t, usage)
}

func TestParseLoopContextCancelStopsEscalation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inv := &scriptedInvoker{responses: []scriptedResponse{{}, {}, {}}}
	loop := NewParseLoop(inv, nil)

	_, usage, err := loop.Run(ctx, "text", chainOf("a", "b", "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, usage, 1, "cancellation aborts after the in-flight attempt")
}
