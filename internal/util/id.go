package util

import "github.com/google/uuid"

// NewID returns a new unique identifier for runs, steps and tool calls.
func NewID() string {
	return uuid.NewString()
}
