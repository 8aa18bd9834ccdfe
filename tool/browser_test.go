package tool

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserToolInvokesNavigation(t *testing.T) {
	browser := NewBrowserTool(WithNavigateFunc(func(ctx context.Context, url, action, selector string) (map[string]any, error) {
		assert.Equal(t, "https://example.com", url)
		assert.Equal(t, "title", action)
		return map[string]any{"url": url, "title": "Example Domain"}, nil
	}))

	out, err := browser.Invoke(context.Background(), map[string]any{"url": "https://example.com", "action": "title"})
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", out.(map[string]any)["title"])
}

func TestBrowserToolDefaults(t *testing.T) {
	browser := NewBrowserTool(WithNavigateFunc(func(ctx context.Context, url, action, selector string) (map[string]any, error) {
		// Action defaults to text, selector to body.
		assert.Equal(t, "text", action)
		assert.Equal(t, "body", selector)
		return map[string]any{"text": "hello"}, nil
	}))

	_, err := browser.Invoke(context.Background(), map[string]any{"url": "http://localhost:8080"})
	require.NoError(t, err)
}

func TestBrowserToolRejectsBadInput(t *testing.T) {
	browser := NewBrowserTool(WithNavigateFunc(func(context.Context, string, string, string) (map[string]any, error) {
		t.Fatal("navigation must not run on invalid input")
		return nil, nil
	}))

	var toolErr *Error

	_, err := browser.Invoke(context.Background(), map[string]any{"url": "ftp://example.com"})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)

	_, err = browser.Invoke(context.Background(), map[string]any{"url": "https://example.com", "action": "screenshot"})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)
}

func TestBrowserToolNavigationFailure(t *testing.T) {
	browser := NewBrowserTool(WithNavigateFunc(func(context.Context, string, string, string) (map[string]any, error) {
		return nil, fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")
	}))

	_, err := browser.Invoke(context.Background(), map[string]any{"url": "https://nope.invalid"})
	require.Error(t, err)

	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindConnection, toolErr.Kind)
}

func TestBrowserToolTimeout(t *testing.T) {
	browser := NewBrowserTool(WithNavigateFunc(func(ctx context.Context, _, _, _ string) (map[string]any, error) {
		return nil, context.DeadlineExceeded
	}))

	_, err := browser.Invoke(context.Background(), map[string]any{"url": "https://slow.example.com"})
	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindTimeout, toolErr.Kind)
}

func TestBrowserToolMode(t *testing.T) {
	assert.Equal(t, ModeWeb, NewBrowserTool().Mode())
}
