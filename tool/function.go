package tool

import (
	"context"

	"github.com/hupe1980/taskmesh/internal/util"
)

// FunctionTool is the direct-call adapter: it exposes a plain Go function as
// a tool. Arguments are validated against the declared schema before the
// function runs; validation failures surface as non-retryable
// validation_error failures without invoking the function.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	mode        TaskMode
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  ModeAPI,
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	mode TaskMode,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		mode:        mode,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection, equivalent to util.CreateSchema(structType).
func NewFunctionToolFromStruct(
	name, description string,
	mode TaskMode,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, mode, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used for registry lookup.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to the planner.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Mode returns the task mode tag.
func (t *FunctionTool) Mode() TaskMode { return t.mode }

// Invoke validates the provided args against the declared schema then calls
// the underlying function.
//
// Error semantics:
//
//	*Error (returned directly) -> forwarded unchanged
//	validation failure         -> *Error{Kind: KindValidation}
//	other error                -> *Error{Kind: KindUnknown}
func (t *FunctionTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &Error{
			Tool:    t.name,
			Kind:    KindValidation,
			Message: err.Error(),
			Details: err,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*Error); ok {
			return nil, toolErr
		}
		return nil, &Error{Tool: t.name, Kind: KindUnknown, Message: err.Error()}
	}

	return result, nil
}
