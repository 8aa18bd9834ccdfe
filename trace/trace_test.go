package trace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskmesh/tool"
)

func TestAppendAssignsOrderedIndexes(t *testing.T) {
	rec := NewRecorder("demo")

	first := rec.Append(Step{Kind: StepToolCall, ToolName: "calculator", Attempt: 1, Outcome: tool.Success(4.0)})
	second := rec.Append(Step{Kind: StepPlanning, Outcome: tool.Success("done")})

	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, second.Index)
	assert.False(t, first.Timestamp.IsZero())

	steps := rec.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, StepToolCall, steps[0].Kind)
	assert.Equal(t, StepPlanning, steps[1].Kind)
	assert.Equal(t, 2, rec.Len())
}

func TestStepsReturnsCopy(t *testing.T) {
	rec := NewRecorder("demo")
	rec.Append(Step{Kind: StepToolCall, ToolName: "calculator"})

	steps := rec.Steps()
	steps[0].ToolName = "mutated"

	assert.Equal(t, "calculator", rec.Steps()[0].ToolName)
}

func TestFinalizeIdempotent(t *testing.T) {
	rec := NewRecorder("demo")
	rec.Append(Step{Kind: StepToolCall, ToolName: "calculator", Attempt: 1, Outcome: tool.Success(4.0)})

	first, err := rec.Finalize(Summary{Status: "success", Data: 4.0, Elapsed: time.Second})
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// Second call returns the identical rendering, even with a different summary.
	second, err := rec.Finalize(Summary{Status: "error", ErrorKind: "timeout"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Appends after finalize are dropped.
	rec.Append(Step{Kind: StepToolCall, ToolName: "late"})
	assert.Equal(t, 1, rec.Len())
}

func TestRenderMarkdownContent(t *testing.T) {
	rec := NewRecorder("quarterly report")
	rec.Append(Step{
		Kind:     StepToolCall,
		ToolName: "accounts",
		Attempt:  1,
		Input:    map[string]any{"limit": 3},
		Outcome:  tool.Success([]string{"Global Solutions"}),
		Elapsed:  25 * time.Millisecond,
	})
	rec.Append(Step{
		Kind:     StepToolCall,
		ToolName: "accounts",
		Attempt:  2,
		Outcome:  tool.Fail(tool.KindConnection, "connection refused"),
	})

	doc, err := rec.Finalize(Summary{Status: "success", Data: "three accounts", Elapsed: time.Second})
	require.NoError(t, err)

	assert.Contains(t, doc, "# Execution Trace: quarterly report")
	assert.Contains(t, doc, "## Step 1: Tool Call (accounts)")
	assert.Contains(t, doc, "## Step 2: Tool Call (accounts)")
	assert.Contains(t, doc, "**Failure:** `connection_error`")
	assert.Contains(t, doc, "## Outcome")
	assert.Contains(t, doc, "three accounts")
}

func TestRenderMarkdownFailedRun(t *testing.T) {
	rec := NewRecorder("doomed")

	doc, err := rec.Finalize(Summary{Status: "error", ErrorKind: "iteration_limit_exceeded", ErrorMessage: "no answer"})
	require.NoError(t, err)

	assert.Contains(t, doc, "**Error:** `iteration_limit_exceeded`")
	assert.Contains(t, doc, "no answer")
}

func TestFileSinkWritesDocument(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder("My Demo Task!", func(o *RecorderOptions) {
		o.Sink = NewFileSink(filepath.Join(dir, "traces"))
	})
	rec.Append(Step{Kind: StepPlanning, Outcome: tool.Success("answer")})

	_, err := rec.Finalize(Summary{Status: "success", Data: "answer"})
	require.NoError(t, err)

	path := rec.PersistedPath()
	require.NotEmpty(t, path)
	// Name is sanitized and timestamped: my_demo_task_YYYYMMDD_HHMMSS.md
	base := filepath.Base(path)
	assert.Regexp(t, `^my_demo_task_\d{8}_\d{6}\.md$`, base)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Execution Trace: My Demo Task!")
}

type failingSink struct{}

func (failingSink) Persist(string, time.Time, []byte) (string, error) {
	return "", errors.New("disk full")
}

func TestFinalizeSurvivesPersistFailure(t *testing.T) {
	rec := NewRecorder("demo", func(o *RecorderOptions) { o.Sink = failingSink{} })

	doc, err := rec.Finalize(Summary{Status: "success"})
	require.Error(t, err)
	// The rendering is still produced and repeated calls return the same error.
	assert.NotEmpty(t, doc)

	again, err2 := rec.Finalize(Summary{Status: "success"})
	assert.Equal(t, doc, again)
	assert.Equal(t, err, err2)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my_demo_task", sanitizeName("My Demo Task!"))
	assert.Equal(t, "task", sanitizeName("???"))
	assert.Equal(t, "a_b", sanitizeName("a/b"))
}
