package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/strategyclub/debate/internal/errors"
)

// perplexityBaseURL is the OpenAI-compatible endpoint Perplexity exposes.
const perplexityBaseURL = "https://api.perplexity.ai"

// ChatCompletions is an adapter over any OpenAI-compatible chat-completions
// API. ChatGPT uses it directly; Perplexity uses it with a custom base URL.
type ChatCompletions struct {
	name   string
	client openai.Client
}

// NewOpenAI creates the ChatGPT adapter.
func NewOpenAI(apiKey string) *ChatCompletions {
	return &ChatCompletions{
		name:   NameChatGPT,
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// NewPerplexity creates the Perplexity adapter. Perplexity's API is
// OpenAI-compatible, so only the base URL differs.
func NewPerplexity(apiKey string) *ChatCompletions {
	return &ChatCompletions{
		name: NamePerplexity,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(perplexityBaseURL),
		),
	}
}

// NewChatCompletions creates an adapter for an arbitrary OpenAI-compatible
// endpoint under the given provider name.
func NewChatCompletions(name, apiKey, baseURL string) *ChatCompletions {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &ChatCompletions{
		name:   name,
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider identity.
func (c *ChatCompletions) Name() string { return c.name }

// Submit sends one chat completion and returns the first choice's content.
func (c *ChatCompletions) Submit(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", errors.NewProviderError(classifyStatus(apiErr.StatusCode), c.name, err).WithModel(req.Model)
		}
		return "", classifyTransportErr(ctx, c.name, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.NewProviderError(errors.ProviderMalformedResponse, c.name,
			fmt.Errorf("response contained no choices")).WithModel(req.Model)
	}
	return completion.Choices[0].Message.Content, nil
}
