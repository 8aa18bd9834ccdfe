package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/trace"
)

// Client is the minimal completion surface the model planner needs. Provider
// adapters (OpenAI-compatible, Anthropic) implement it.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ModelOptions configure the model-backed planner.
type ModelOptions struct {
	Logger logging.Logger
	// MaxHistorySteps bounds how many trailing trace steps are rendered into
	// the prompt. Zero means all.
	MaxHistorySteps int
}

// Model is a planner backed by a chat completion client. Each Plan call asks
// the model for a single JSON decision: call a tool or give the final
// answer. A malformed response fails the run; the planner itself is never
// retried.
type Model struct {
	client Client
	opts   ModelOptions
}

// NewModel creates a model-backed planner.
func NewModel(client Client, optFns ...func(o *ModelOptions)) *Model {
	opts := ModelOptions{
		Logger:          logging.NoOpLogger{},
		MaxHistorySteps: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Plan implements Planner.
func (m *Model) Plan(ctx context.Context, req Request) (Outcome, error) {
	system := m.buildSystemPrompt(req)
	user := m.buildUserPrompt(req)

	raw, err := m.client.Complete(ctx, system, user)
	if err != nil {
		return Outcome{}, fmt.Errorf("planner completion: %w", err)
	}

	m.opts.Logger.Debug("planner.response", "iteration", req.Iteration, "bytes", len(raw))

	return parseDecision(raw)
}

// Reflect implements Reflector. The note is recorded in the trace and fed
// back to the next Plan call through the step history.
func (m *Model) Reflect(ctx context.Context, task string, last trace.Step) (string, error) {
	system := "You review the latest step of a task run. Point out, in at most " +
		"three sentences, whether the result moves the task forward and what to " +
		"correct if it does not. Respond with plain text only."

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", task)
	b.WriteString("Latest step:\n")
	writeStep(&b, last)

	note, err := m.client.Complete(ctx, system, b.String())
	if err != nil {
		return "", fmt.Errorf("reflection completion: %w", err)
	}
	return strings.TrimSpace(note), nil
}

func (m *Model) buildSystemPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are a task planner. On each turn, decide the single next action.\n\n")
	b.WriteString("Respond with exactly one JSON object and nothing else. Either\n")
	b.WriteString(`  {"action": "tool_call", "tool": "<name>", "args": {...}}` + "\n")
	b.WriteString("or\n")
	b.WriteString(`  {"action": "final_answer", "answer": <result>}` + "\n\n")

	if req.Profile.DeepPlanningEnabled {
		b.WriteString("Before deciding, think the remaining work through step by step and ")
		b.WriteString("include your reasoning as a \"plan\" string field in the JSON object.\n\n")
	}

	b.WriteString("Available tools:\n")
	for _, t := range req.Tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		if params := t.Parameters(); len(params) > 0 {
			if data, err := json.Marshal(params); err == nil {
				fmt.Fprintf(&b, "  parameters: %s\n", data)
			}
		}
	}

	b.WriteString("\nOnly name tools from the list above. ")
	b.WriteString("Give the final answer as soon as the task is solved.")

	return b.String()
}

func (m *Model) buildUserPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n", req.Task)

	steps := req.Steps
	if m.opts.MaxHistorySteps > 0 && len(steps) > m.opts.MaxHistorySteps {
		steps = steps[len(steps)-m.opts.MaxHistorySteps:]
	}

	if len(steps) > 0 {
		b.WriteString("\nSteps so far:\n")
		for _, s := range steps {
			writeStep(&b, s)
		}
	}

	b.WriteString("\nWhat is the next action?")
	return b.String()
}

func writeStep(b *strings.Builder, s trace.Step) {
	switch s.Kind {
	case trace.StepToolCall:
		if s.Outcome.OK() {
			fmt.Fprintf(b, "%d. called %s(%s) -> %s\n", s.Index+1, s.ToolName, compactJSON(s.Input), compactJSON(s.Outcome.Data))
		} else if s.Outcome.Failure != nil {
			fmt.Fprintf(b, "%d. called %s(%s) -> failed: %s (%s)\n", s.Index+1, s.ToolName, compactJSON(s.Input), s.Outcome.Failure.Message, s.Outcome.Failure.Kind)
		}
	case trace.StepReflection:
		fmt.Fprintf(b, "%d. reflection: %v\n", s.Index+1, s.Outcome.Data)
	case trace.StepPlanning:
		fmt.Fprintf(b, "%d. planning: %s\n", s.Index+1, compactJSON(s.Outcome.Data))
	}
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// parseDecision extracts the planner decision from a model response,
// tolerating markdown code fences around the JSON object.
func parseDecision(raw string) (Outcome, error) {
	text := stripFences(raw)

	if !gjson.Valid(text) {
		return Outcome{}, fmt.Errorf("planner response is not valid JSON: %.120s", text)
	}

	switch action := gjson.Get(text, "action").String(); action {
	case "tool_call":
		name := gjson.Get(text, "tool").String()
		if name == "" {
			return Outcome{}, fmt.Errorf("tool_call decision without a tool name")
		}
		args := map[string]any{}
		if v := gjson.Get(text, "args"); v.IsObject() {
			args, _ = v.Value().(map[string]any)
		}
		return Outcome{ToolRequest: &ToolRequest{Name: name, Args: args}}, nil
	case "final_answer":
		answer := gjson.Get(text, "answer")
		if !answer.Exists() {
			return Outcome{}, fmt.Errorf("final_answer decision without an answer")
		}
		return Outcome{FinalAnswer: &FinalAnswer{Data: answer.Value()}}, nil
	default:
		return Outcome{}, fmt.Errorf("unknown planner action %q", action)
	}
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
