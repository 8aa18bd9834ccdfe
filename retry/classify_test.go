package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskmesh/tool"
)

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyTypedToolError(t *testing.T) {
	f := Classify(tool.NewError("lookup", tool.KindAuthentication, "bad key"))
	require.NotNil(t, f)
	assert.Equal(t, tool.KindAuthentication, f.Kind)
	assert.False(t, f.Retryable)

	// Wrapped typed errors still classify from the inner error.
	wrapped := fmt.Errorf("invoke: %w", tool.NewError("lookup", tool.KindRateLimit, "slow down"))
	f = Classify(wrapped)
	assert.Equal(t, tool.KindRateLimit, f.Kind)
	assert.True(t, f.Retryable)
}

func TestClassifyContextErrors(t *testing.T) {
	f := Classify(context.DeadlineExceeded)
	assert.Equal(t, tool.KindTimeout, f.Kind)
	assert.True(t, f.Retryable)

	// A cancelled run must not be retried.
	f = Classify(context.Canceled)
	assert.Equal(t, tool.KindTimeout, f.Kind)
	assert.False(t, f.Retryable)
}

func TestClassifyNetworkErrors(t *testing.T) {
	f := Classify(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED})
	assert.Equal(t, tool.KindConnection, f.Kind)
	assert.True(t, f.Retryable)

	f = Classify(&net.DNSError{Err: "no such host", Name: "nope.invalid"})
	assert.Equal(t, tool.KindConnection, f.Kind)

	f = Classify(syscall.ECONNRESET)
	assert.Equal(t, tool.KindConnection, f.Kind)
}

func TestClassifyFromMessage(t *testing.T) {
	cases := []struct {
		msg  string
		kind tool.FailureKind
	}{
		{"openai api error: 429 Too Many Requests", tool.KindRateLimit},
		{"anthropic api error: 401 Unauthorized", tool.KindAuthentication},
		{"incorrect api key provided", tool.KindAuthentication},
		{"request timeout while waiting for response", tool.KindTimeout},
		{"dial tcp: connection refused", tool.KindConnection},
		{"upstream returned 503", tool.KindConnection},
		{"invalid request payload", tool.KindValidation},
	}

	for _, tc := range cases {
		f := Classify(errors.New(tc.msg))
		assert.Equal(t, tc.kind, f.Kind, tc.msg)
	}
}

func TestClassifyUnknownFailsClosed(t *testing.T) {
	f := Classify(errors.New("weird unexpected state"))
	assert.Equal(t, tool.KindUnknown, f.Kind)
	assert.False(t, f.Retryable)
}
