package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/hupe1980/taskmesh/tool"
)

// Classify maps an error from a tool invocation or provider call onto the
// shared failure taxonomy. Typed tool errors carry their own classification;
// raw transport and SDK errors are classified from error shape and message.
// Anything unrecognized is unknown_error and fails closed (not retryable).
func Classify(err error) *tool.Failure {
	if err == nil {
		return nil
	}

	var toolErr *tool.Error
	if errors.As(err, &toolErr) {
		return toolErr.AsFailure()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return failure(tool.KindTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		f := failure(tool.KindTimeout, err)
		f.Retryable = false
		return f
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failure(tool.KindTimeout, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return failure(tool.KindConnection, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return failure(tool.KindConnection, err)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE,
			syscall.ETIMEDOUT, syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return failure(tool.KindConnection, err)
		}
	}

	return failure(classifyMessage(err.Error()), err)
}

func failure(kind tool.FailureKind, err error) *tool.Failure {
	return &tool.Failure{Kind: kind, Message: err.Error(), Retryable: kind.DefaultRetryable()}
}

// classifyMessage covers SDK errors that only expose status text.
func classifyMessage(msg string) tool.FailureKind {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "429"):
		return tool.KindRateLimit
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "401") ||
		strings.Contains(lower, "403") || strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "api key"):
		return tool.KindAuthentication
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return tool.KindTimeout
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "broken pipe") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "504"):
		return tool.KindConnection
	case strings.Contains(lower, "validation") || strings.Contains(lower, "invalid") ||
		strings.Contains(lower, "bad request") || strings.Contains(lower, "400"):
		return tool.KindValidation
	default:
		return tool.KindUnknown
	}
}
