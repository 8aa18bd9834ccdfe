// Package retry wraps fallible external calls (tool invocations, provider
// calls) with failure classification, retry-with-backoff and terminal failure
// reporting. Non-retryable failures propagate immediately; retryable ones are
// retried with exponential backoff while the remaining dispatcher timeout
// budget allows it. Every attempt is observable so the execution trace can
// show the full retry history, not just the final outcome.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/tool"
)

// Policy bounds the retry behavior for one wrapped operation.
type Policy struct {
	// MaxAttempts is the total attempt budget including the first call.
	MaxAttempts int
	// BaseDelay is the initial backoff interval.
	BaseDelay time.Duration
	// MaxDelay caps the backoff interval.
	MaxDelay time.Duration
	// Multiplier grows the interval between attempts.
	Multiplier float64
}

// DefaultPolicy returns the standard tool invocation policy.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second, Multiplier: 2.0}
}

// SingleAttempt returns a policy that never retries. Used for planner calls:
// the classifier still classifies them, but the dispatcher alone decides
// whether to re-plan.
func SingleAttempt() Policy {
	return Policy{MaxAttempts: 1}
}

// Attempt is one observed execution attempt.
type Attempt struct {
	Number  int
	Result  tool.Result
	Elapsed time.Duration
}

// Observer receives every attempt, successful or not, in order.
type Observer func(Attempt)

// ExecutorOptions configure an Executor.
type ExecutorOptions struct {
	Logger logging.Logger
}

// Executor executes operations under a retry policy.
type Executor struct {
	policy Policy
	logger logging.Logger
}

// NewExecutor constructs an Executor with the given policy.
func NewExecutor(policy Policy, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{policy: policy, logger: opts.Logger}
}

// Execute runs op until it succeeds, fails non-retryably, or exhausts the
// attempt or time budget. The context deadline is the dispatcher-level
// timeout budget: before sleeping for the next backoff interval the executor
// checks whether that attempt could still start within budget and, if not,
// aborts early surfacing a timeout failure.
func (e *Executor) Execute(ctx context.Context, name string, op func(ctx context.Context) (any, error), observe Observer) tool.Result {
	b := backoff.NewExponentialBackOff()
	if e.policy.BaseDelay > 0 {
		b.InitialInterval = e.policy.BaseDelay
	}
	if e.policy.MaxDelay > 0 {
		b.MaxInterval = e.policy.MaxDelay
	}
	if e.policy.Multiplier > 0 {
		b.Multiplier = e.policy.Multiplier
	}
	b.MaxElapsedTime = 0 // attempt count and ctx deadline bound us, not backoff
	b.Reset()

	for attempt := 1; ; attempt++ {
		start := time.Now()
		data, err := op(ctx)
		elapsed := time.Since(start)

		if err == nil {
			result := tool.Success(data)
			if observe != nil {
				observe(Attempt{Number: attempt, Result: result, Elapsed: elapsed})
			}
			logging.LogToolCall(e.logger, name, attempt, elapsed, true, nil)
			return result
		}

		failure := Classify(err)
		result := tool.Result{Failure: failure}
		if observe != nil {
			observe(Attempt{Number: attempt, Result: result, Elapsed: elapsed})
		}
		logging.LogToolCall(e.logger, name, attempt, elapsed, false, err)

		if !failure.Retryable || attempt >= e.policy.MaxAttempts {
			return result
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return result
		}
		// Rate limits always back off at least the base interval.
		if failure.Kind == tool.KindRateLimit && delay < e.policy.BaseDelay {
			delay = e.policy.BaseDelay
		}

		if deadline, ok := ctx.Deadline(); ok && time.Now().Add(delay).After(deadline) {
			e.logger.Warn("retry.budget.exhausted", "name", name, "attempt", attempt, "next_delay_ms", delay.Milliseconds())
			return tool.Result{Failure: &tool.Failure{
				Kind:      tool.KindTimeout,
				Message:   "retry aborted: timeout budget exhausted before next attempt",
				Retryable: false,
			}}
		}

		select {
		case <-ctx.Done():
			return tool.Result{Failure: &tool.Failure{
				Kind:      tool.KindTimeout,
				Message:   ctx.Err().Error(),
				Retryable: false,
			}}
		case <-time.After(delay):
		}
	}
}
