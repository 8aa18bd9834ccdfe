package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/taskmesh/internal/util"
	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/mode"
	"github.com/hupe1980/taskmesh/planner"
	"github.com/hupe1980/taskmesh/registry"
	"github.com/hupe1980/taskmesh/retry"
	"github.com/hupe1980/taskmesh/tool"
	"github.com/hupe1980/taskmesh/trace"
)

// Options configure a Dispatcher.
type Options struct {
	Logger      logging.Logger
	RetryPolicy retry.Policy
	Sink        trace.Sink
}

// Dispatcher executes tasks against a fixed planner, registry and profile.
// It is safe for concurrent use; each Run owns its own recorder and context.
type Dispatcher struct {
	planner  planner.Planner
	registry *registry.Registry
	profile  mode.Profile
	taskMode tool.TaskMode

	logger   logging.Logger
	executor *retry.Executor
	sink     trace.Sink
}

// New creates a Dispatcher.
func New(p planner.Planner, reg *registry.Registry, profile mode.Profile, taskMode tool.TaskMode, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		RetryPolicy: retry.DefaultPolicy(),
		Sink:        trace.NopSink{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Dispatcher{
		planner:  p,
		registry: reg,
		profile:  profile,
		taskMode: taskMode,
		logger:   opts.Logger,
		executor: retry.NewExecutor(opts.RetryPolicy, func(o *retry.ExecutorOptions) { o.Logger = opts.Logger }),
		sink:     opts.Sink,
	}
}

// Run executes one task to completion. The profile timeout bounds the whole
// run as a wall-clock budget; the parent context may end it earlier. Run
// never panics across a tool boundary and always finalizes the trace,
// whatever the outcome.
func (d *Dispatcher) Run(ctx context.Context, task string) Result {
	runID := util.NewID()
	start := time.Now()

	rec := trace.NewRecorder(task, func(o *trace.RecorderOptions) {
		o.Sink = d.sink
		o.Logger = d.logger
	})

	d.logger.Info("run.start",
		"run_id", runID,
		"task", task,
		"mode", d.profile.Name,
		"task_mode", string(d.taskMode),
		"max_iterations", d.profile.MaxIterations,
		"timeout", d.profile.Timeout.String(),
	)

	ctx, cancel := context.WithTimeout(ctx, d.profile.Timeout)
	defer cancel()

	result := d.loop(ctx, task, rec)
	result.RunID = runID
	result.Task = task
	result.Steps = rec.Len()
	result.Elapsed = time.Since(start)

	summary := trace.Summary{Status: result.Status, Data: result.Data, Elapsed: result.Elapsed}
	if result.Err != nil {
		summary.ErrorKind = string(result.Err.Kind)
		summary.ErrorMessage = result.Err.Message
	}
	if _, err := rec.Finalize(summary); err != nil {
		d.logger.Warn("run.trace.persist_failed", "run_id", runID, "error", err.Error())
	}
	result.TracePath = rec.PersistedPath()

	if result.OK() {
		d.logger.Info("run.complete", "run_id", runID, "state", string(StateDone), "steps", result.Steps, "elapsed_ms", result.Elapsed.Milliseconds())
	} else {
		d.logger.Error("run.failed", "run_id", runID, "state", string(StateFailed), "kind", string(result.Err.Kind), "steps", result.Steps, "elapsed_ms", result.Elapsed.Milliseconds())
	}

	return result
}

// loop drives the state machine. Terminal conditions (budget exhaustion,
// cancellation, iteration limit) end the run at a step boundary without
// appending extra steps; only planner decisions and tool attempts appear in
// the trace.
func (d *Dispatcher) loop(ctx context.Context, task string, rec *trace.Recorder) Result {
	admitted := d.registry.List(d.taskMode)

	for iteration := 1; iteration <= d.profile.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return budgetResult(err)
		}

		d.logger.Debug("run.state", "state", string(StatePlanning), "iteration", iteration)

		planStart := time.Now()
		outcome, err := d.planner.Plan(ctx, planner.Request{
			Task:      task,
			Steps:     rec.Steps(),
			Tools:     admitted,
			Profile:   d.profile,
			Iteration: iteration,
		})
		logging.LogPlannerCall(d.logger, time.Since(planStart), outcomeLabel(outcome), err)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return budgetResult(ctxErr)
			}
			return failed(ErrPlanning, "planning failed: %s", err)
		}

		if outcome.FinalAnswer != nil {
			rec.Append(trace.Step{
				Kind:    trace.StepPlanning,
				Outcome: tool.Success(outcome.FinalAnswer.Data),
				Elapsed: time.Since(planStart),
			})
			return Result{Status: StatusSuccess, Data: outcome.FinalAnswer.Data}
		}

		if outcome.ToolRequest == nil {
			return failed(ErrPlanning, "planner returned neither a tool request nor a final answer")
		}

		req := outcome.ToolRequest

		t, err := d.registry.Get(req.Name)
		if err != nil {
			return failed(ErrRegistry, "tool %q is not registered", req.Name)
		}
		if !d.taskMode.Admits(t.Mode()) {
			return failed(ErrPlanning, "tool %q (mode %s) is not admitted in task mode %s", req.Name, t.Mode(), d.taskMode)
		}

		d.logger.Debug("run.state", "state", string(StateInvoking), "iteration", iteration, "tool", req.Name)

		res := d.executor.Execute(ctx, req.Name, func(ctx context.Context) (any, error) {
			return t.Invoke(ctx, req.Args)
		}, func(a retry.Attempt) {
			rec.Append(trace.Step{
				Kind:     trace.StepToolCall,
				ToolName: req.Name,
				Attempt:  a.Number,
				Input:    req.Args,
				Outcome:  a.Result,
				Elapsed:  a.Elapsed,
			})
		})

		if !res.OK() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return budgetResult(ctxErr)
			}
			return failed(ErrToolFailure, "tool %q failed (%s): %s", req.Name, res.Failure.Kind, res.Failure.Message)
		}

		d.reflect(ctx, task, rec)
	}

	return failed(ErrIterationLimit, "iteration limit of %d reached without a final answer", d.profile.MaxIterations)
}

// reflect runs one reflection pass over the latest step when the profile
// enables it and the planner supports it. Reflection is advisory: a failed
// pass is logged and skipped, never failing the run.
func (d *Dispatcher) reflect(ctx context.Context, task string, rec *trace.Recorder) {
	if !d.profile.ReflectionEnabled {
		return
	}
	r, ok := d.planner.(planner.Reflector)
	if !ok {
		return
	}

	steps := rec.Steps()
	if len(steps) == 0 {
		return
	}
	last := steps[len(steps)-1]

	d.logger.Debug("run.state", "state", string(StateReflecting))

	start := time.Now()
	note, err := r.Reflect(ctx, task, last)
	if err != nil {
		d.logger.Warn("run.reflection.failed", "error", err.Error())
		return
	}

	rec.Append(trace.Step{
		Kind:    trace.StepReflection,
		Outcome: tool.Success(note),
		Elapsed: time.Since(start),
	})
}

func failed(kind ErrorKind, format string, args ...any) Result {
	return Result{
		Status: StatusError,
		Err:    &ResultError{Kind: kind, Message: fmt.Sprintf(format, args...)},
	}
}

// budgetResult maps a context error at a step boundary to its terminal run
// error. Deadline exhaustion is a timeout; an external cancel is a clean
// cancellation.
func budgetResult(err error) Result {
	if errors.Is(err, context.Canceled) {
		return failed(ErrCancelled, "run cancelled before completion")
	}
	return failed(ErrTimeout, "run exceeded its wall-clock budget")
}

func outcomeLabel(o planner.Outcome) string {
	switch {
	case o.FinalAnswer != nil:
		return "final_answer"
	case o.ToolRequest != nil:
		return "tool_call:" + o.ToolRequest.Name
	default:
		return "empty"
	}
}
