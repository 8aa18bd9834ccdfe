package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteSpec describes one HTTP operation of an API-spec-described tool.
type RemoteSpec struct {
	BaseURL string
	Path    string
	Method  string // empty means GET
	// Parameters is the JSON schema for the tool input. GET requests encode
	// args as query parameters; other methods send a JSON body.
	Parameters map[string]any
	// Headers are attached to every request (e.g. static auth headers whose
	// values are resolved at startup, not stored in configuration).
	Headers map[string]string
}

// RemoteSpecOptions configure the remote adapter.
type RemoteSpecOptions struct {
	HTTPClient *http.Client
}

// RemoteSpecTool is the remote-call adapter: it turns one API-spec operation
// into a tool. Status codes map onto the shared failure taxonomy so the
// classifier can make retry decisions without per-endpoint branching.
type RemoteSpecTool struct {
	name        string
	description string
	mode        TaskMode
	spec        RemoteSpec
	client      *http.Client
}

// NewRemoteSpecTool constructs a remote adapter from a spec operation.
func NewRemoteSpecTool(name, description string, mode TaskMode, spec RemoteSpec, optFns ...func(o *RemoteSpecOptions)) *RemoteSpecTool {
	opts := RemoteSpecOptions{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if spec.Method == "" {
		spec.Method = http.MethodGet
	}
	if spec.Parameters == nil {
		spec.Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	return &RemoteSpecTool{
		name:        name,
		description: description,
		mode:        mode,
		spec:        spec,
		client:      opts.HTTPClient,
	}
}

// Name returns the unique tool name used for registry lookup.
func (t *RemoteSpecTool) Name() string { return t.name }

// Description returns the description exposed to the planner.
func (t *RemoteSpecTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *RemoteSpecTool) Parameters() map[string]any { return t.spec.Parameters }

// Mode returns the task mode tag.
func (t *RemoteSpecTool) Mode() TaskMode { return t.mode }

// Invoke performs the described HTTP call and decodes the JSON response.
func (t *RemoteSpecTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	req, err := t.buildRequest(ctx, args)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, NewError(t.name, KindConnection, "read response: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, t.classifyStatus(resp, body)
	}

	if len(body) == 0 {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Not JSON; hand the raw text to the planner.
		return strings.TrimSpace(string(body)), nil
	}
	return decoded, nil
}

func (t *RemoteSpecTool) buildRequest(ctx context.Context, args map[string]any) (*http.Request, error) {
	endpoint := strings.TrimSuffix(t.spec.BaseURL, "/") + "/" + strings.TrimPrefix(t.spec.Path, "/")

	var body io.Reader
	if t.spec.Method == http.MethodGet {
		if len(args) > 0 {
			q := url.Values{}
			for k, v := range args {
				q.Set(k, fmt.Sprintf("%v", v))
			}
			endpoint += "?" + q.Encode()
		}
	} else {
		payload, err := json.Marshal(args)
		if err != nil {
			return nil, NewError(t.name, KindValidation, "encode arguments: %v", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, t.spec.Method, endpoint, body)
	if err != nil {
		return nil, NewError(t.name, KindValidation, "build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range t.spec.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// classifyTransportError maps network-level failures: deadline and ctx errors
// become timeouts, everything else a retryable connection error.
func (t *RemoteSpecTool) classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(t.name, KindTimeout, "request timed out: %v", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(t.name, KindTimeout, "request cancelled: %v", err)
	}
	return NewError(t.name, KindConnection, "request failed: %v", err)
}

// classifyStatus maps HTTP status codes onto the failure taxonomy.
func (t *RemoteSpecTool) classifyStatus(resp *http.Response, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewError(t.name, KindAuthentication, "HTTP %d: %s", resp.StatusCode, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		e := NewError(t.name, KindRateLimit, "HTTP 429: %s", msg)
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			e.Details = map[string]any{"retry_after": ra}
		}
		return e
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return NewError(t.name, KindTimeout, "HTTP %d: %s", resp.StatusCode, msg)
	case resp.StatusCode >= 500:
		return NewError(t.name, KindConnection, "HTTP %d: %s", resp.StatusCode, msg)
	case resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusNotFound ||
		resp.StatusCode == http.StatusUnprocessableEntity:
		return NewError(t.name, KindValidation, "HTTP %d: %s", resp.StatusCode, msg)
	default:
		return NewError(t.name, KindUnknown, "HTTP %d: %s", resp.StatusCode, msg)
	}
}
