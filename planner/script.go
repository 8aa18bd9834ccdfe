package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/taskmesh/trace"
)

// ScriptStep produces one scripted decision from the task and the trace so
// far.
type ScriptStep func(task string, steps []trace.Step) (Outcome, error)

// StepTool scripts a tool call with fixed arguments.
func StepTool(name string, args map[string]any) ScriptStep {
	return func(string, []trace.Step) (Outcome, error) {
		return Outcome{ToolRequest: &ToolRequest{Name: name, Args: args}}, nil
	}
}

// StepAnswer scripts a final answer with fixed data.
func StepAnswer(data any) ScriptStep {
	return func(string, []trace.Step) (Outcome, error) {
		return Outcome{FinalAnswer: &FinalAnswer{Data: data}}, nil
	}
}

// StepAnswerFromLast scripts a final answer taken from the data of the most
// recent successful tool step. It errors when no such step exists.
func StepAnswerFromLast() ScriptStep {
	return func(_ string, steps []trace.Step) (Outcome, error) {
		for i := len(steps) - 1; i >= 0; i-- {
			s := steps[i]
			if s.Kind == trace.StepToolCall && s.Outcome.OK() {
				return Outcome{FinalAnswer: &FinalAnswer{Data: s.Outcome.Data}}, nil
			}
		}
		return Outcome{}, fmt.Errorf("no successful tool step to answer from")
	}
}

// StepError scripts a planning failure.
func StepError(err error) ScriptStep {
	return func(string, []trace.Step) (Outcome, error) {
		return Outcome{}, err
	}
}

// Script is a deterministic planner that replays a fixed decision sequence,
// one step per Plan call. When the sequence is exhausted the last step
// repeats, so a trailing StepAnswer naturally terminates a run regardless of
// the iteration budget.
type Script struct {
	mu    sync.Mutex
	steps []ScriptStep
	pos   int
}

// NewScript creates a scripted planner from the given steps.
func NewScript(steps ...ScriptStep) *Script {
	return &Script{steps: steps}
}

// Plan implements Planner.
func (s *Script) Plan(_ context.Context, req Request) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.steps) == 0 {
		return Outcome{}, fmt.Errorf("empty script")
	}

	step := s.steps[s.pos]
	if s.pos < len(s.steps)-1 {
		s.pos++
	}

	return step(req.Task, req.Steps)
}
