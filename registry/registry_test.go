package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskmesh/tool"
)

func newStubTool(name string, mode tool.TaskMode) tool.Tool {
	return tool.NewFunctionTool(name, "stub "+name, mode, nil, func(ctx context.Context, args map[string]any) (any, error) {
		return name, nil
	})
}

func TestRegisterAndGet(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(newStubTool("alpha", tool.ModeAPI)))

	got, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name())
	assert.True(t, reg.Has("alpha"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegisterDuplicateFails(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(newStubTool("alpha", tool.ModeAPI)))

	err := reg.Register(newStubTool("alpha", tool.ModeWeb))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTool)

	// First registration is untouched.
	got, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, tool.ModeAPI, got.Mode())
}

func TestGetUnknown(t *testing.T) {
	reg := New()

	_, err := reg.Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByTaskMode(t *testing.T) {
	reg := New()
	require.NoError(t, reg.RegisterAll(
		newStubTool("api-only", tool.ModeAPI),
		newStubTool("web-only", tool.ModeWeb),
		newStubTool("everywhere", tool.ModeHybrid),
	))

	names := func(tools []tool.Tool) []string {
		out := make([]string, len(tools))
		for i, tl := range tools {
			out[i] = tl.Name()
		}
		return out
	}

	assert.Equal(t, []string{"api-only", "everywhere"}, names(reg.List(tool.ModeAPI)))
	assert.Equal(t, []string{"web-only", "everywhere"}, names(reg.List(tool.ModeWeb)))
	// Hybrid runs admit everything, in registration order.
	assert.Equal(t, []string{"api-only", "web-only", "everywhere"}, names(reg.List(tool.ModeHybrid)))
}
