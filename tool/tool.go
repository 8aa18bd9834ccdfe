// Package tool implements the tool adapter subsystem: heterogeneous external
// capabilities (in-process functions, API-spec-described remote calls,
// subprocess protocols, browser automation) exposed through one uniform
// invocation contract with schema validated arguments and a shared failure
// taxonomy.
package tool

import (
	"context"
	"fmt"
	"strings"
)

// TaskMode selects which subset of registered tools is eligible for a run.
type TaskMode string

// Task modes.
const (
	ModeAPI    TaskMode = "api"
	ModeWeb    TaskMode = "web"
	ModeHybrid TaskMode = "hybrid"
)

// ParseTaskMode converts a configured string into a TaskMode.
func ParseTaskMode(s string) (TaskMode, error) {
	switch m := TaskMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAPI, ModeWeb, ModeHybrid:
		return m, nil
	case "":
		return ModeAPI, nil
	default:
		return "", fmt.Errorf("unknown task mode %q", s)
	}
}

// Admits reports whether a run in mode m may use a tool tagged with tag.
// Hybrid runs admit every tool; hybrid-tagged tools are available in every
// run; otherwise the tags must match.
func (m TaskMode) Admits(tag TaskMode) bool {
	return m == ModeHybrid || tag == ModeHybrid || m == tag
}

// FailureKind classifies a tool or provider failure for retry decisions.
type FailureKind string

// Failure kinds.
const (
	KindConnection     FailureKind = "connection_error"
	KindAuthentication FailureKind = "authentication_error"
	KindValidation     FailureKind = "validation_error"
	KindTimeout        FailureKind = "timeout_error"
	KindRateLimit      FailureKind = "rate_limit_error"
	KindUnknown        FailureKind = "unknown_error"
)

// DefaultRetryable returns the default retry decision for a kind. Unknown
// fails closed.
func (k FailureKind) DefaultRetryable() bool {
	switch k {
	case KindConnection, KindTimeout, KindRateLimit:
		return true
	default:
		return false
	}
}

// Failure is the typed failure half of a tool result.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
}

// Result is the tagged success/failure outcome of one tool invocation or
// provider call.
type Result struct {
	Data    any      `json:"data,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Failure == nil }

// Success wraps data as a successful Result.
func Success(data any) Result { return Result{Data: data} }

// Fail builds a failure Result with the kind's default retryability.
func Fail(kind FailureKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message, Retryable: kind.DefaultRetryable()}}
}

// Tool is the uniform capability contract every adapter exposes. Invoke is
// synchronous from the dispatcher's point of view regardless of whether the
// adapter internally performs network or subprocess I/O.
//
// Implementations must be safe for concurrent use: adapters are registered
// once at startup and shared across concurrent task runs without locking.
type Tool interface {
	// Name returns the unique identifier used for registry lookup and
	// planner tool requests.
	Name() string

	// Description returns a human-readable description provided to the
	// planner to decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input.
	Parameters() map[string]any

	// Mode returns the task mode this adapter is tagged compatible with.
	Mode() TaskMode

	// Invoke executes the tool with structured input. Failures should be
	// returned as *Error so the classifier can map them without guessing.
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Error is the typed failure returned by tool adapters. Retryable, when set,
// overrides the kind's default retry decision; when nil the classifier infers
// it from Kind.
type Error struct {
	Tool      string      `json:"tool"`
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	Retryable *bool       `json:"retryable,omitempty"`
	Details   any         `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Kind, e.Tool, e.Message)
}

// NewError creates an Error for the given tool and kind.
func NewError(tool string, kind FailureKind, format string, args ...any) *Error {
	return &Error{Tool: tool, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithRetryable pins the retry decision, overriding the kind default.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = &retryable
	return e
}

// AsFailure converts the error into the Failure half of a Result.
func (e *Error) AsFailure() *Failure {
	retryable := e.Kind.DefaultRetryable()
	if e.Retryable != nil {
		retryable = *e.Retryable
	}
	return &Failure{Kind: e.Kind, Message: e.Message, Retryable: retryable}
}
