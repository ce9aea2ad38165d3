package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/provider"
)

type stubRenderer struct {
	images   [][]byte
	warnings []string
	err      error
	calls    int
}

func (s *stubRenderer) RenderPages(ctx context.Context, doc extract.Document) ([][]byte, []string, error) {
	s.calls++
	return s.images, s.warnings, s.err
}

// flakyInvoker fails the first n invocations, then succeeds.
type flakyInvoker struct {
	failFirst int
	calls     int
	gotMsgs   []provider.Message
}

func (f *flakyInvoker) Invoke(ctx context.Context, ref provider.ModelRef, step string, msgs []provider.Message) (string, llm.UsageRecord, error) {
	f.calls++
	f.gotMsgs = msgs
	record := llm.UsageRecord{Step: step, Model: ref.Model}
	if f.calls <= f.failFirst {
		return "", record, common.NewAppError("PROVIDER_UNAVAILABLE", "down", common.ErrProviderUnavailable)
	}
	record.InputTokens = 800
	record.OutputTokens = 300
	return "recognized page text", record, nil
}

func ocrChain(models ...string) provider.Chain {
	var c provider.Chain
	for _, m := range models {
		c = append(c, provider.ModelRef{Provider: "openrouter", Model: m})
	}
	return c
}

func scanDoc() extract.Document {
	return extract.Document{Content: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png", Filename: "scan.png"}
}

func TestRecognizeFirstModel(t *testing.T) {
	rend := &stubRenderer{images: [][]byte{{1}, {2}}}
	inv := &flakyInvoker{}
	o := NewOrchestrator(rend, inv, nil)

	res, usage, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "recognized page text", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "a", res.Model)
	assert.Equal(t, 1, inv.calls, "no escalation on success")
	require.Len(t, usage, 1)
	assert.Equal(t, constants.StepOCR, usage[0].Step)
}

func TestRecognizeEscalates(t *testing.T) {
	rend := &stubRenderer{images: [][]byte{{1}}}
	inv := &flakyInvoker{failFirst: 2}
	o := NewOrchestrator(rend, inv, nil)

	res, usage, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, "c", res.Model)
	// One record per attempt, failed attempts included with zero tokens.
	require.Len(t, usage, 3)
	assert.Equal(t, "a", usage[0].Model)
	assert.Zero(t, usage[0].InputTokens)
	assert.Equal(t, "c", usage[2].Model)
	assert.Equal(t, 800, usage[2].InputTokens)
}

func TestRecognizeExhausted(t *testing.T) {
	rend := &stubRenderer{images: [][]byte{{1}}}
	inv := &flakyInvoker{failFirst: 99}
	o := NewOrchestrator(rend, inv, nil)

	_, usage, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a", "b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRecognitionExhausted))
	assert.Len(t, usage, 2)
}

func TestRecognizeDisabledChainIsNoop(t *testing.T) {
	rend := &stubRenderer{}
	inv := &flakyInvoker{}
	o := NewOrchestrator(rend, inv, nil)

	res, usage, err := o.Recognize(context.Background(), scanDoc(), nil)
	require.NoError(t, err)
	assert.Zero(t, rend.calls)
	assert.Zero(t, inv.calls)
	assert.Empty(t, usage)
	assert.Empty(t, res.Text)
}

func TestRecognizeSkipsFailedPages(t *testing.T) {
	// Page 2 failed to render; the remaining pages are still submitted.
	rend := &stubRenderer{
		images:   [][]byte{{1}, nil, {3}},
		warnings: []string{"page 2: render failed"},
	}
	inv := &flakyInvoker{}
	o := NewOrchestrator(rend, inv, nil)

	res, _, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"page 2: render failed"}, res.Warnings)

	parts, ok := inv.gotMsgs[0].Content.([]provider.ContentPart)
	require.True(t, ok)
	assert.Len(t, parts, 3) // instruction + 2 surviving pages
}

func TestRecognizeNoRenderablePages(t *testing.T) {
	rend := &stubRenderer{images: [][]byte{nil, nil}, warnings: []string{"page 1: boom", "page 2: boom"}}
	inv := &flakyInvoker{}
	o := NewOrchestrator(rend, inv, nil)

	_, usage, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRecognitionUnavailable))
	assert.Zero(t, inv.calls)
	assert.Empty(t, usage)
}

func TestRecognizeRenderFailure(t *testing.T) {
	rend := &stubRenderer{err: common.NewAppError("PDF_CORRUPT", "bad xref", common.ErrCorruptDocument)}
	o := NewOrchestrator(rend, &flakyInvoker{}, nil)

	_, _, err := o.Recognize(context.Background(), scanDoc(), ocrChain("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCorruptDocument))
}

func TestRecognizeCancelledContextStopsEscalation(t *testing.T) {
	rend := &stubRenderer{images: [][]byte{{1}}}
	ctx, cancel := context.WithCancel(context.Background())
	inv := &cancelInvoker{cancel: cancel}
	o := NewOrchestrator(rend, inv, nil)

	_, usage, err := o.Recognize(ctx, scanDoc(), ocrChain("a", "b", "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, usage, 1, "remaining chain entries are not attempted")
}

// cancelInvoker cancels the run from inside its first invocation.
type cancelInvoker struct {
	cancel context.CancelFunc
}

func (c *cancelInvoker) Invoke(ctx context.Context, ref provider.ModelRef, step string, msgs []provider.Message) (string, llm.UsageRecord, error) {
	c.cancel()
	return "", llm.UsageRecord{Step: step, Model: ref.Model}, ctx.Err()
}
