package provider

import (
	"context"
	"fmt"
	"strings"
)

// ModelRef references one model on one provider, parsed from a chain entry
// like "openrouter/google/gemini-flash-1.5".
type ModelRef struct {
	Provider string // e.g. "openrouter"
	Model    string // e.g. "google/gemini-flash-1.5"
}

func (r ModelRef) String() string {
	return r.Provider + "/" + r.Model
}

// Chain is an ordered model escalation sequence. Index 0 is tried first.
// A nil or empty chain is the disabled sentinel (valid for OCR only).
type Chain []ModelRef

// Disabled reports whether the chain is the disabled sentinel.
func (c Chain) Disabled() bool { return len(c) == 0 }

// KnownProviders is the closed set of provider names accepted in model
// chains. Adding a provider means adding an implementation and registering
// it in the Registry at process start.
var KnownProviders = map[string]struct{}{
	"openrouter": {},
}

// ParseChain parses a comma-separated model chain string into a Chain.
// Each entry must be "provider/model" with a known provider. fieldName is
// used in error messages only. "none" and "" yield the disabled sentinel.
func ParseChain(raw, fieldName string) (Chain, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil, nil
	}
	var refs Chain
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, fmt.Errorf("%s: empty entry in chain (check for trailing commas)", fieldName)
		}
		p, m, ok := strings.Cut(entry, "/")
		if !ok || p == "" || m == "" {
			return nil, fmt.Errorf("%s: entry %q is missing a provider prefix (expected 'provider/model')", fieldName, entry)
		}
		if _, known := KnownProviders[p]; !known {
			return nil, fmt.Errorf("%s: unknown provider %q in entry %q", fieldName, p, entry)
		}
		refs = append(refs, ModelRef{Provider: p, Model: m})
	}
	return refs, nil
}

// Message is one chat message in OpenAI-compatible format. Content is either
// a plain string or []ContentPart for vision requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Usage is the token accounting reported by a provider for one call.
// Zero values mean the provider returned no accounting, not "unknown".
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChatRequest is one inference request against a single model.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse carries the assistant text and token usage of one call.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Client performs one inference request against a provider backend.
// Implementations map transport failures to common.ErrProviderUnavailable
// and non-retryable request errors to common.ErrProviderRejected.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
