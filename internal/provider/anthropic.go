package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/strategyclub/debate/internal/errors"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"

	// defaultMaxTokens bounds responses when the request does not set a limit.
	defaultMaxTokens = 8192
)

// Anthropic is the Claude adapter. It speaks the Messages API directly over
// net/http; the API is a single JSON POST and needs no SDK.
type Anthropic struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// AnthropicOption configures the adapter.
type AnthropicOption func(*Anthropic)

// WithAnthropicBaseURL overrides the API endpoint. Used by tests.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *Anthropic) { a.baseURL = url }
}

// WithAnthropicHTTPClient overrides the HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(a *Anthropic) { a.httpClient = client }
}

// NewAnthropic creates a Claude adapter with the given API key.
func NewAnthropic(apiKey string, opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		// Transport-level ceiling; per-call deadlines come from the context.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "claude".
func (a *Anthropic) Name() string { return NameClaude }

// anthropicRequest is the Messages API request body.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int64              `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the subset of the Messages API response we consume.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Submit sends one Messages API call and returns the first text block.
func (a *Anthropic) Submit(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.User}},
	})
	if err != nil {
		return "", errors.NewProviderError(errors.ProviderMalformedResponse, a.Name(), err).WithModel(req.Model)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewProviderError(errors.ProviderMalformedResponse, a.Name(), err).WithModel(req.Model)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportErr(ctx, a.Name(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", classifyTransportErr(ctx, a.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		var decoded anthropicResponse
		cause := fmt.Errorf("status %d", resp.StatusCode)
		if json.Unmarshal(data, &decoded) == nil && decoded.Error != nil {
			cause = fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", errors.NewProviderError(kind, a.Name(), cause).WithModel(req.Model)
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", errors.NewProviderError(errors.ProviderMalformedResponse, a.Name(), err).WithModel(req.Model)
	}

	for _, block := range decoded.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.NewProviderError(errors.ProviderMalformedResponse, a.Name(),
		fmt.Errorf("response contained no text content")).WithModel(req.Model)
}
