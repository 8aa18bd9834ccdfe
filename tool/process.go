package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
)

// processRequest is the JSON document written to the subprocess on stdin.
type processRequest struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// processResponse is the JSON document the subprocess must print on stdout.
type processResponse struct {
	OK    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Error *processFailure `json:"error,omitempty"`
}

type processFailure struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable *bool  `json:"retryable,omitempty"`
}

// ProcessTool is the external-process adapter: one invocation runs the
// configured command, writes a JSON request to its stdin and reads a JSON
// response from its stdout. The subprocess decides success/failure and may
// classify its own failures; anything it cannot express falls back to the
// unknown kind (fail closed).
type ProcessTool struct {
	name        string
	description string
	mode        TaskMode
	command     string
	args        []string
	parameters  map[string]any
}

// NewProcessTool constructs a process adapter. commandLine is split on
// whitespace; the first field is the executable.
func NewProcessTool(name, description string, mode TaskMode, commandLine string, parameters map[string]any) *ProcessTool {
	fields := strings.Fields(commandLine)
	var command string
	var args []string
	if len(fields) > 0 {
		command = fields[0]
		args = fields[1:]
	}
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &ProcessTool{
		name:        name,
		description: description,
		mode:        mode,
		command:     command,
		args:        args,
		parameters:  parameters,
	}
}

// Name returns the unique tool name used for registry lookup.
func (t *ProcessTool) Name() string { return t.name }

// Description returns the description exposed to the planner.
func (t *ProcessTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *ProcessTool) Parameters() map[string]any { return t.parameters }

// Mode returns the task mode tag.
func (t *ProcessTool) Mode() TaskMode { return t.mode }

// Invoke runs the subprocess once and decodes its response.
func (t *ProcessTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if t.command == "" {
		return nil, NewError(t.name, KindValidation, "no command configured")
	}

	payload, err := json.Marshal(processRequest{Tool: t.name, Input: args})
	if err != nil {
		return nil, NewError(t.name, KindValidation, "encode request: %v", err)
	}

	cmd := exec.CommandContext(ctx, t.command, t.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(t.name, KindTimeout, "subprocess timed out")
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewError(t.name, KindTimeout, "subprocess cancelled")
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, NewError(t.name, KindUnknown, "subprocess failed: %s", msg)
	}

	var resp processResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, NewError(t.name, KindUnknown, "malformed subprocess response: %v", err)
	}

	if !resp.OK {
		kind := KindUnknown
		message := "subprocess reported failure"
		var retryable *bool
		if resp.Error != nil {
			if k, ok := parseFailureKind(resp.Error.Kind); ok {
				kind = k
			}
			if resp.Error.Message != "" {
				message = resp.Error.Message
			}
			retryable = resp.Error.Retryable
		}
		e := NewError(t.name, kind, "%s", message)
		e.Retryable = retryable
		return nil, e
	}

	return resp.Data, nil
}

func parseFailureKind(s string) (FailureKind, bool) {
	switch k := FailureKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindConnection, KindAuthentication, KindValidation, KindTimeout, KindRateLimit, KindUnknown:
		return k, true
	default:
		return "", false
	}
}
