// Package planner decides, for each iteration of a task run, whether to call
// a tool or to finish with a final answer. The orchestration loop is agnostic
// to how that decision is made: a model-backed planner drives real runs and a
// scripted planner drives tests and demos through identical code paths.
package planner

import (
	"context"

	"github.com/hupe1980/taskmesh/mode"
	"github.com/hupe1980/taskmesh/tool"
	"github.com/hupe1980/taskmesh/trace"
)

// Request carries everything a planner may consult for one decision: the
// task, the steps recorded so far, the tools admitted for the run's task
// mode, and the active profile.
type Request struct {
	Task      string
	Steps     []trace.Step
	Tools     []tool.Tool
	Profile   mode.Profile
	Iteration int
}

// ToolRequest asks the loop to invoke a named tool with arguments.
type ToolRequest struct {
	Name string
	Args map[string]any
}

// FinalAnswer ends the run successfully with the given data.
type FinalAnswer struct {
	Data any
}

// Outcome is the planner's decision. Exactly one field is set.
type Outcome struct {
	ToolRequest *ToolRequest
	FinalAnswer *FinalAnswer
}

// Planner produces one decision per loop iteration. Returning an error fails
// the run as a planning error; planners are not retried.
type Planner interface {
	Plan(ctx context.Context, req Request) (Outcome, error)
}

// Reflector critiques the most recent step. Planners that support reflection
// implement it; the loop only reflects when the profile enables it and the
// planner provides it.
type Reflector interface {
	Reflect(ctx context.Context, task string, last trace.Step) (string, error)
}
