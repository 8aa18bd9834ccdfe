// Package openai implements the planner completion client for every
// OpenAI-compatible endpoint: OpenAI itself plus Azure OpenAI, OpenRouter,
// watsonx and local Ollama servers, which all speak the Chat Completions
// protocol behind a provider-specific base URL.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/taskmesh/provider"
)

// Options configure the completion client. Kept to the parameters the
// planner actually varies; extend via functional options.
type Options struct {
	Temperature         float64
	MaxCompletionTokens int64
}

// Client wraps the OpenAI Chat Completions API behind the planner's
// completion interface.
type Client struct {
	client openai.Client
	model  string
	opts   Options
}

// New creates a client from a resolved provider descriptor. The credential
// is read from the environment through getenv using the descriptor's
// credential reference; the secret itself never passes through
// configuration.
func New(d provider.Descriptor, getenv func(string) string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var reqOpts []option.RequestOption
	if key := getenv(d.CredentialRef); key != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(key))
	}
	if d.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(d.BaseURL))
	}

	return &Client{
		client: openai.NewClient(reqOpts...),
		model:  d.ModelName,
		opts:   opts,
	}
}

// NewFromClient creates a client from an existing SDK client, mainly for
// tests against a stub transport.
func NewFromClient(client openai.Client, model string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, model: model, opts: opts}
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
