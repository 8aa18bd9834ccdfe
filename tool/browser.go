package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configure the browser automation adapter.
type BrowserOptions struct {
	// Headless runs Chrome without a window. On by default.
	Headless bool
	// ChromePath overrides the Chrome executable location.
	ChromePath string
	// navigate can be replaced in tests to avoid a real Chrome dependency.
	navigate func(ctx context.Context, req browseRequest) (map[string]any, error)
}

type browseRequest struct {
	url      string
	action   string
	selector string
}

// BrowserTool drives a headless browser for web-mode tasks: navigate to a URL
// and extract the page title or the text of a selector. The adapter keeps
// browser internals thin; it opens a fresh tab per invocation and closes it
// when done.
type BrowserTool struct {
	opts BrowserOptions
}

// NewBrowserTool constructs the web_navigator adapter.
func NewBrowserTool(optFns ...func(o *BrowserOptions)) *BrowserTool {
	opts := BrowserOptions{Headless: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	t := &BrowserTool{opts: opts}
	if t.opts.navigate == nil {
		t.opts.navigate = t.navigateChrome
	}
	return t
}

// WithNavigateFunc replaces the navigation implementation. Used by tests.
func WithNavigateFunc(fn func(ctx context.Context, url, action, selector string) (map[string]any, error)) func(o *BrowserOptions) {
	return func(o *BrowserOptions) {
		o.navigate = func(ctx context.Context, req browseRequest) (map[string]any, error) {
			return fn(ctx, req.url, req.action, req.selector)
		}
	}
}

// Name returns the unique tool name used for registry lookup.
func (t *BrowserTool) Name() string { return BuiltinBrowser }

// Description returns the description exposed to the planner.
func (t *BrowserTool) Description() string {
	return "Navigate to a web page and extract its title or the text of a selector"
}

// Parameters returns the JSON schema describing expected arguments.
func (t *BrowserTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Page URL to navigate to",
			},
			"action": map[string]any{
				"type":        "string",
				"description": "What to extract from the page",
				"enum":        []string{"text", "title"},
			},
			"selector": map[string]any{
				"type":        "string",
				"description": "CSS selector for the text action (default body)",
			},
		},
		"required": []string{"url"},
	}
}

// Mode returns the task mode tag.
func (t *BrowserTool) Mode() TaskMode { return ModeWeb }

// Invoke navigates and extracts per the requested action.
func (t *BrowserTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	url, _ := args["url"].(string)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, NewError(BuiltinBrowser, KindValidation, "url must start with http:// or https://")
	}

	action, _ := args["action"].(string)
	if action == "" {
		action = "text"
	}
	if action != "text" && action != "title" {
		return nil, NewError(BuiltinBrowser, KindValidation, "unknown action %q", action)
	}

	selector, _ := args["selector"].(string)
	if selector == "" {
		selector = "body"
	}

	result, err := t.opts.navigate(ctx, browseRequest{url: url, action: action, selector: selector})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(BuiltinBrowser, KindTimeout, "navigation timed out: %v", err)
		}
		if toolErr, ok := err.(*Error); ok {
			return nil, toolErr
		}
		return nil, NewError(BuiltinBrowser, KindConnection, "navigation failed: %v", err)
	}
	return result, nil
}

// navigateChrome is the chromedp-backed navigation implementation.
func (t *BrowserTool) navigateChrome(ctx context.Context, req browseRequest) (map[string]any, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", t.opts.Headless),
		chromedp.Flag("disable-gpu", t.opts.Headless),
	)
	if t.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(t.opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var title, text string
	actions := []chromedp.Action{
		chromedp.Navigate(req.url),
		chromedp.Title(&title),
	}
	if req.action == "text" {
		actions = append(actions, chromedp.Text(req.selector, &text, chromedp.ByQuery))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, err
	}

	result := map[string]any{"url": req.url, "title": title}
	if req.action == "text" {
		result["text"] = text
	}
	return result, nil
}
