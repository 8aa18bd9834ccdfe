// Package anthropic implements the planner completion client for the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/taskmesh/provider"
)

// Options configure the completion client.
type Options struct {
	Temperature float64
	MaxTokens   int64
}

// Client wraps the Anthropic Messages API behind the planner's completion
// interface.
type Client struct {
	client anthropic.Client
	model  string
	opts   Options
}

// New creates a client from a resolved provider descriptor. The credential
// is read from the environment through getenv using the descriptor's
// credential reference.
func New(d provider.Descriptor, getenv func(string) string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Temperature: 0.2,
		MaxTokens:   4096,
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
		client: anthropic.NewClient(reqOpts...),
		model:  d.ModelName,
		opts:   opts,
	}
}

// NewFromClient creates a client from an existing SDK client, mainly for
// tests against a stub transport.
func NewFromClient(client anthropic.Client, model string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, model: model, opts: opts}
}

// Complete sends one system+user exchange and returns the concatenated
// assistant text blocks.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content returned")
	}
	return b.String(), nil
}
