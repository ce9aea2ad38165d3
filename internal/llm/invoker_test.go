package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/provider"
)

type fakeClient struct {
	resp provider.ChatResponse
	err  error
	got  provider.ChatRequest
}

func (f *fakeClient) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestInvokeSuccessRecordsUsage(t *testing.T) {
	client := &fakeClient{resp: provider.ChatResponse{
		Content: "extracted text",
		Usage:   provider.Usage{InputTokens: 1200, OutputTokens: 450},
	}}
	reg := provider.NewRegistry()
	reg.Register("openrouter", client)
	iv := NewInvoker(reg, nil)

	ref := provider.ModelRef{Provider: "openrouter", Model: "google/gemini-flash-1.5"}
	content, record, err := iv.Invoke(context.Background(), ref, constants.StepOCR, BuildParseMessages("x"))
	require.NoError(t, err)
	assert.Equal(t, "extracted text", content)
	assert.Equal(t, constants.StepOCR, record.Step)
	assert.Equal(t, "google/gemini-flash-1.5", record.Model)
	assert.Equal(t, 1200, record.InputTokens)
	assert.Equal(t, 450, record.OutputTokens)
	assert.Equal(t, "google/gemini-flash-1.5", client.got.Model)
}

func TestInvokeFailureStillRecordsAttempt(t *testing.T) {
	client := &fakeClient{err: common.NewAppError("PROVIDER_UNAVAILABLE", "connect refused", common.ErrProviderUnavailable)}
	reg := provider.NewRegistry()
	reg.Register("openrouter", client)
	iv := NewInvoker(reg, nil)

	ref := provider.ModelRef{Provider: "openrouter", Model: "m"}
	_, record, err := iv.Invoke(context.Background(), ref, constants.StepParse, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProviderUnavailable))
	// The record is still produced so the caller can account for the attempt.
	assert.Equal(t, constants.StepParse, record.Step)
	assert.Equal(t, "m", record.Model)
	assert.Zero(t, record.InputTokens)
	assert.Zero(t, record.OutputTokens)
}

func TestInvokeUnregisteredProvider(t *testing.T) {
	iv := NewInvoker(provider.NewRegistry(), nil)

	ref := provider.ModelRef{Provider: "openrouter", Model: "m"}
	_, record, err := iv.Invoke(context.Background(), ref, constants.StepParse, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Equal(t, "m", record.Model)
}
