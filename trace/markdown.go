package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSink writes rendered traces as markdown files into a directory,
// creating it on first use. Writes are serialized so concurrent runs sharing
// one sink never interleave.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Persist implements Sink. The file name combines the sanitized trace name
// with the start timestamp, e.g. "quarterly_report_20250104_153012.md".
func (s *FileSink) Persist(name string, startedAt time.Time, rendered []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create trace directory: %w", err)
	}

	fname := fmt.Sprintf("%s_%s.md", sanitizeName(name), startedAt.Format("20060102_150405"))
	path := filepath.Join(s.dir, fname)

	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return "", fmt.Errorf("write trace file: %w", err)
	}

	return path, nil
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == '/':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "task"
	}
	if len(out) > 60 {
		out = out[:60]
	}
	return out
}

func renderMarkdown(name string, startedAt time.Time, steps []Step, summary Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Execution Trace: %s\n\n", name)
	fmt.Fprintf(&b, "- **Started:** %s\n", startedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Status:** %s\n", summary.Status)
	fmt.Fprintf(&b, "- **Steps:** %d\n", len(steps))
	fmt.Fprintf(&b, "- **Elapsed:** %s\n\n", summary.Elapsed.Round(time.Millisecond))

	for _, step := range steps {
		fmt.Fprintf(&b, "## Step %d: %s\n\n", step.Index+1, stepTitle(step))
		fmt.Fprintf(&b, "- **Time:** %s\n", step.Timestamp.Format(time.RFC3339))
		if step.Kind == StepToolCall {
			fmt.Fprintf(&b, "- **Tool:** %s\n", step.ToolName)
			fmt.Fprintf(&b, "- **Attempt:** %d\n", step.Attempt)
		}
		fmt.Fprintf(&b, "- **Elapsed:** %s\n\n", step.Elapsed.Round(time.Millisecond))

		if len(step.Input) > 0 {
			b.WriteString("**Input:**\n\n")
			writeJSONBlock(&b, step.Input)
		}

		if step.Outcome.OK() {
			b.WriteString("**Result:**\n\n")
			writeJSONBlock(&b, step.Outcome.Data)
		} else if step.Outcome.Failure != nil {
			fmt.Fprintf(&b, "**Failure:** `%s` (retryable: %t)\n\n", step.Outcome.Failure.Kind, step.Outcome.Failure.Retryable)
			fmt.Fprintf(&b, "> %s\n\n", step.Outcome.Failure.Message)
		}
	}

	b.WriteString("## Outcome\n\n")
	if summary.Status == "success" {
		b.WriteString("**Final answer:**\n\n")
		writeJSONBlock(&b, summary.Data)
	} else {
		fmt.Fprintf(&b, "**Error:** `%s`\n\n", summary.ErrorKind)
		fmt.Fprintf(&b, "> %s\n", summary.ErrorMessage)
	}

	return b.String()
}

func stepTitle(step Step) string {
	switch step.Kind {
	case StepToolCall:
		return fmt.Sprintf("Tool Call (%s)", step.ToolName)
	case StepPlanning:
		return "Planning"
	case StepReflection:
		return "Reflection"
	default:
		return string(step.Kind)
	}
}

func writeJSONBlock(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(b, "```\n%v\n```\n\n", v)
		return
	}
	fmt.Fprintf(b, "```json\n%s\n```\n\n", data)
}
