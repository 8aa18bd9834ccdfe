// Package dispatch runs the execution loop for one task: plan, invoke,
// optionally reflect, until the planner answers or a terminal condition ends
// the run. Every attempt and decision is recorded in the execution trace;
// the returned Result is the single authoritative outcome of a run.
package dispatch

import (
	"fmt"
	"time"
)

// State names a phase of the execution loop. States appear in logs; the loop
// itself drives transitions.
type State string

// Loop states.
const (
	StatePlanning   State = "planning"
	StateInvoking   State = "invoking"
	StateReflecting State = "reflecting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorKind classifies why a run failed.
type ErrorKind string

// Error kinds.
const (
	ErrPlanning       ErrorKind = "planning_error"
	ErrRegistry       ErrorKind = "registry_error"
	ErrToolFailure    ErrorKind = "tool_failure"
	ErrIterationLimit ErrorKind = "iteration_limit_exceeded"
	ErrTimeout        ErrorKind = "timeout"
	ErrCancelled      ErrorKind = "cancelled"
	ErrConfig         ErrorKind = "config_error"
)

// ResultError describes a failed run.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the outcome of one task run. Steps counts the trace entries the
// run produced; TracePath points at the persisted trace document when a file
// sink is configured.
type Result struct {
	RunID     string        `json:"run_id"`
	Task      string        `json:"task"`
	Status    string        `json:"status"`
	Data      any           `json:"data,omitempty"`
	Err       *ResultError  `json:"error,omitempty"`
	Steps     int           `json:"steps"`
	Elapsed   time.Duration `json:"elapsed"`
	TracePath string        `json:"trace_path,omitempty"`
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }
