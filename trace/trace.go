// Package trace records the ordered, append-only sequence of execution steps
// for one task run and renders it into a persisted markdown document. A step
// once appended is never edited or removed; insertion order is causal order.
// The recorder is independent of the orchestration outcome: failed runs
// produce a trace exactly like successful ones.
package trace

import (
	"sync"
	"time"

	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/tool"
)

// StepKind labels what a step records.
type StepKind string

// Step kinds.
const (
	// StepToolCall records one tool invocation attempt.
	StepToolCall StepKind = "tool_call"
	// StepPlanning records a planning outcome (final answer or planner failure).
	StepPlanning StepKind = "planning"
	// StepReflection records a reflection pass over the latest result.
	StepReflection StepKind = "reflection"
)

// Step is one record in the trace. Outcome reuses the tool result shape for
// all step kinds: planning steps carry the planner's data or failure,
// reflection steps carry the reflection note.
type Step struct {
	Index     int            `json:"index"`
	Kind      StepKind       `json:"kind"`
	ToolName  string         `json:"tool_name,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	Outcome   tool.Result    `json:"outcome"`
	Elapsed   time.Duration  `json:"elapsed"`
	Timestamp time.Time      `json:"timestamp"`
}

// Summary is the terminal state handed to Finalize.
type Summary struct {
	Status       string        `json:"status"` // success or error
	Data         any           `json:"data,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Sink persists one rendered trace document per task. Implementations must
// serialize concurrent writes; each task produces a distinct target.
type Sink interface {
	Persist(name string, startedAt time.Time, rendered []byte) (string, error)
}

// NopSink discards rendered traces. Useful for tests.
type NopSink struct{}

// Persist implements Sink.
func (NopSink) Persist(string, time.Time, []byte) (string, error) { return "", nil }

// RecorderOptions configure a Recorder.
type RecorderOptions struct {
	Sink   Sink
	Logger logging.Logger
}

// Recorder owns the step sequence of one task run. Append and Finalize are
// safe for concurrent use, though a run appends sequentially by design.
type Recorder struct {
	name      string
	startedAt time.Time

	mu        sync.Mutex
	steps     []Step
	finalized bool
	rendered  string
	persisted string
	persistEr error

	sink   Sink
	logger logging.Logger
}

// NewRecorder creates a Recorder for one task run. name identifies the
// persisted document together with the start timestamp.
func NewRecorder(name string, optFns ...func(o *RecorderOptions)) *Recorder {
	opts := RecorderOptions{Sink: NopSink{}, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Recorder{
		name:      name,
		startedAt: time.Now(),
		sink:      opts.Sink,
		logger:    opts.Logger,
	}
}

// Name returns the trace document name.
func (r *Recorder) Name() string { return r.name }

// StartedAt returns the run start time used in the document identity.
func (r *Recorder) StartedAt() time.Time { return r.startedAt }

// Append adds a step to the trace, assigning its index and timestamp, and
// returns the stored step. Appending after Finalize is a programming error;
// the step is dropped and logged rather than corrupting the rendering.
func (r *Recorder) Append(step Step) Step {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		r.logger.Error("trace.append.after_finalize", "name", r.name, "kind", string(step.Kind))
		return step
	}

	step.Index = len(r.steps)
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now()
	}
	r.steps = append(r.steps, step)

	r.logger.Debug("trace.step.append",
		"name", r.name,
		"index", step.Index,
		"kind", string(step.Kind),
		"tool", step.ToolName,
	)
	return step
}

// Steps returns a copy of the recorded steps in insertion order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Finalize renders the trace and persists it through the sink. It is
// idempotent: the second call returns the first rendering (and its persist
// error, if any) without re-deriving state. A persist failure is reported but
// never alters the rendering or the caller's in-memory result.
func (r *Recorder) Finalize(summary Summary) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return r.rendered, r.persistEr
	}
	r.finalized = true
	r.rendered = renderMarkdown(r.name, r.startedAt, r.steps, summary)

	path, err := r.sink.Persist(r.name, r.startedAt, []byte(r.rendered))
	if err != nil {
		r.persistEr = err
		r.logger.Error("trace.persist.failed", "name", r.name, "error", err.Error())
	} else {
		r.persisted = path
		if path != "" {
			r.logger.Info("trace.persisted", "name", r.name, "path", path)
		}
	}

	return r.rendered, r.persistEr
}

// PersistedPath returns where the trace document was written, if anywhere.
func (r *Recorder) PersistedPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persisted
}
