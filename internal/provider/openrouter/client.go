package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/provider"
)

// Config for the OpenRouter client.
type Config struct {
	APIKey  string        // if empty, falls back to env OPENROUTER_API_KEY
	BaseURL string        // default https://openrouter.ai/api/v1
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat implements provider.Client against the OpenRouter chat/completions
// endpoint. Network failures, 5xx and 429 map to ErrProviderUnavailable;
// other non-2xx statuses map to ErrProviderRejected.
func (c *Client) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	start := time.Now()

	body := map[string]any{
		"model":       req.Model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	} else {
		body["max_tokens"] = 4096
	}

	c.logger.Debug("openrouter.chat.start",
		"model", req.Model,
		"message_count", len(req.Messages),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Warn("openrouter.chat.failed",
			"model", req.Model,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return provider.ChatResponse{}, err
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		return provider.ChatResponse{}, common.NewAppError("OPENROUTER_DECODE",
			"decode openrouter response", common.ErrProviderUnavailable)
	}
	if len(cc.Choices) == 0 || cc.Choices[0].Message.Content == "" {
		return provider.ChatResponse{}, common.NewAppError("OPENROUTER_MALFORMED",
			"no choices in openrouter response", common.ErrProviderUnavailable)
	}

	usage := provider.Usage{
		InputTokens:  cc.Usage.PromptTokens,
		OutputTokens: cc.Usage.CompletionTokens,
	}
	c.logger.Debug("openrouter.chat.ok",
		"model", req.Model,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return provider.ChatResponse{
		Content: strings.TrimSpace(cc.Choices[0].Message.Content),
		Usage:   usage,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.NewAppError("OPENROUTER_HTTP",
			fmt.Sprintf("request to openrouter failed: %v", err),
			common.ErrProviderUnavailable)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openrouter response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return buf.Bytes(), nil
	}

	msg := fmt.Sprintf("openrouter status %d: %s", resp.StatusCode, truncate(buf.String(), 2<<10))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, common.NewAppError("OPENROUTER_STATUS", msg, common.ErrProviderUnavailable)
	}
	return nil, common.NewAppError("OPENROUTER_STATUS", msg, common.ErrProviderRejected)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
