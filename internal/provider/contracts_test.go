package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChain(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Chain
		wantErr string
	}{
		{
			name: "single entry",
			raw:  "openrouter/google/gemini-flash-1.5",
			want: Chain{{Provider: "openrouter", Model: "google/gemini-flash-1.5"}},
		},
		{
			name: "multiple entries with spaces",
			raw:  "openrouter/openai/gpt-4o-mini, openrouter/anthropic/claude-3.5-sonnet",
			want: Chain{
				{Provider: "openrouter", Model: "openai/gpt-4o-mini"},
				{Provider: "openrouter", Model: "anthropic/claude-3.5-sonnet"},
			},
		},
		{name: "empty is disabled", raw: "", want: nil},
		{name: "none is disabled", raw: "none", want: nil},
		{name: "none case insensitive", raw: "NONE", want: nil},
		{name: "trailing comma", raw: "openrouter/m,", wantErr: "empty entry"},
		{name: "missing provider prefix", raw: "gpt-4o-mini", wantErr: "missing a provider prefix"},
		{name: "unknown provider", raw: "closedrouter/m", wantErr: "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChain(tt.raw, "parse_models")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Contains(t, err.Error(), "parse_models", "errors name the offending field")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChainDisabled(t *testing.T) {
	assert.True(t, Chain(nil).Disabled())
	assert.True(t, Chain{}.Disabled())
	assert.False(t, Chain{{Provider: "openrouter", Model: "m"}}.Disabled())
}

func TestModelRefString(t *testing.T) {
	ref := ModelRef{Provider: "openrouter", Model: "google/gemini-flash-1.5"}
	assert.Equal(t, "openrouter/google/gemini-flash-1.5", ref.String())
}
