// Package taskmesh provides a high-level façade over the dispatch loop and
// its supporting services (provider resolution, mode profiles, tool registry,
// execution tracing). Most applications interact with this package by:
//  1. Loading Settings (config.Load) or building them in code
//  2. Creating an Orchestrator via New()
//  3. Executing tasks synchronously with Execute()
//
// The façade delegates orchestration to dispatch.Dispatcher while keeping
// setup ergonomics concise. All defaults are safe for local development: a
// missing configuration resolves the provider from the environment, the
// balanced profile bounds the run, and traces land in ./traces.
package taskmesh

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hupe1980/taskmesh/config"
	"github.com/hupe1980/taskmesh/dispatch"
	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/mode"
	"github.com/hupe1980/taskmesh/planner"
	"github.com/hupe1980/taskmesh/provider"
	"github.com/hupe1980/taskmesh/provider/anthropic"
	"github.com/hupe1980/taskmesh/provider/openai"
	"github.com/hupe1980/taskmesh/registry"
	"github.com/hupe1980/taskmesh/retry"
	"github.com/hupe1980/taskmesh/tool"
	"github.com/hupe1980/taskmesh/trace"
)

// DefaultOutputDir receives trace documents when Settings.OutputDir is empty.
const DefaultOutputDir = "traces"

// Options configures the Orchestrator beyond what Settings carry.
type Options struct {
	// Logger (defaults to a text slog logger on stderr).
	Logger logging.Logger

	// Getenv supplies environment lookups for provider resolution and
	// credential loading. Defaults to os.Getenv; tests inject a map.
	Getenv func(string) string

	// Planner overrides the model-backed planner. With an override set no
	// provider is resolved, so no credentials are required. Scripted demos
	// and tests run this way.
	Planner planner.Planner

	// Tools are registered after the configured adapters.
	Tools []tool.Tool

	// Sink overrides trace persistence. Defaults to a file sink in the
	// configured output directory.
	Sink trace.Sink

	// RetryPolicy bounds tool retries. Defaults to retry.DefaultPolicy.
	RetryPolicy retry.Policy
}

// Orchestrator is the high-level façade aggregating the dispatcher and its
// services. It is safe for concurrent Execute calls.
type Orchestrator struct {
	settings   config.Settings
	profile    mode.Profile
	taskMode   tool.TaskMode
	descriptor provider.Descriptor
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	logger     logging.Logger

	mu      sync.Mutex
	history []dispatch.Result
}

// New creates an Orchestrator from settings. It resolves the provider (unless
// a planner override is supplied), builds the mode profile, registers the
// configured tool adapters and wires the dispatcher. Configuration problems
// surface here as *config.ConfigError, before any task runs.
func New(settings config.Settings, optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := Options{
		Logger:      logging.NewDefaultSlogLogger(),
		Getenv:      os.Getenv,
		RetryPolicy: retry.DefaultPolicy(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	taskMode, err := tool.ParseTaskMode(settings.TaskMode)
	if err != nil {
		return nil, config.NewConfigError(config.CodeUnknownMode, "%s", err)
	}

	table, err := mode.NewTableWithCustom(settings.CustomMode)
	if err != nil {
		return nil, err
	}
	modeName := settings.ModeName
	if modeName == "" {
		modeName = mode.Balanced
	}
	profile, err := table.Lookup(modeName)
	if err != nil {
		return nil, err
	}

	reg, err := buildRegistry(settings, taskMode, opts.Tools)
	if err != nil {
		return nil, err
	}

	var descriptor provider.Descriptor
	p := opts.Planner
	if p == nil {
		descriptor, err = provider.Resolve(opts.Getenv, settings)
		if err != nil {
			return nil, err
		}
		p = planner.NewModel(newClient(descriptor, opts.Getenv), func(o *planner.ModelOptions) {
			o.Logger = opts.Logger
		})
	}

	sink := opts.Sink
	if sink == nil {
		dir := settings.OutputDir
		if dir == "" {
			dir = DefaultOutputDir
		}
		sink = trace.NewFileSink(dir)
	}

	d := dispatch.New(p, reg, profile, taskMode, func(o *dispatch.Options) {
		o.Logger = opts.Logger
		o.RetryPolicy = opts.RetryPolicy
		o.Sink = sink
	})

	return &Orchestrator{
		settings:   settings,
		profile:    profile,
		taskMode:   taskMode,
		descriptor: descriptor,
		registry:   reg,
		dispatcher: d,
		logger:     opts.Logger,
	}, nil
}

// Execute runs one task to completion and appends the outcome to the
// execution history. The context may cancel or further bound the run.
func (o *Orchestrator) Execute(ctx context.Context, task string) dispatch.Result {
	result := o.dispatcher.Run(ctx, task)

	o.mu.Lock()
	o.history = append(o.history, result)
	o.mu.Unlock()

	return result
}

// History returns a copy of all run results in execution order.
func (o *Orchestrator) History() []dispatch.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]dispatch.Result, len(o.history))
	copy(out, o.history)
	return out
}

// Registry exposes the tool registry, mainly for introspection commands.
func (o *Orchestrator) Registry() *registry.Registry { return o.registry }

// Profile returns the active mode profile.
func (o *Orchestrator) Profile() mode.Profile { return o.profile }

// TaskMode returns the active task mode.
func (o *Orchestrator) TaskMode() tool.TaskMode { return o.taskMode }

// Provider returns the resolved provider descriptor. The zero Descriptor
// indicates a planner override, where no provider is involved.
func (o *Orchestrator) Provider() provider.Descriptor { return o.descriptor }

// newClient builds the completion client for a resolved provider. Anthropic
// has its own protocol; every other supported provider speaks the OpenAI
// Chat Completions protocol behind a base URL.
func newClient(d provider.Descriptor, getenv func(string) string) planner.Client {
	if d.Kind == provider.KindAnthropic {
		return anthropic.New(d, getenv)
	}
	return openai.New(d, getenv)
}

// buildRegistry registers the configured adapters (or, with none configured,
// every built-in the task mode admits) followed by any extra tools.
func buildRegistry(settings config.Settings, taskMode tool.TaskMode, extra []tool.Tool) (*registry.Registry, error) {
	reg := registry.New()

	if len(settings.Tools) == 0 {
		for _, name := range []string{
			tool.BuiltinCalculator,
			tool.BuiltinSentiment,
			tool.BuiltinDataProcessor,
			tool.BuiltinAccounts,
			tool.BuiltinBrowser,
		} {
			t, _ := tool.NewBuiltin(name)
			if !taskMode.Admits(t.Mode()) {
				continue
			}
			if err := reg.Register(t); err != nil {
				return nil, err
			}
		}
	}

	for _, def := range settings.Tools {
		t, err := buildTool(def)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}

	if err := reg.RegisterAll(extra...); err != nil {
		return nil, err
	}

	return reg, nil
}

// buildTool constructs one adapter from its definition.
func buildTool(def config.ToolDefinition) (tool.Tool, error) {
	defMode, err := tool.ParseTaskMode(def.Mode)
	if err != nil {
		return nil, config.NewConfigError(config.CodeInvalidProfile, "tool %q: %s", def.Name, err)
	}

	switch def.Kind {
	case config.ToolKindDirect, "":
		location := def.Location
		if location == "" {
			location = def.Name
		}
		t, ok := tool.NewBuiltin(location)
		if !ok {
			return nil, config.NewConfigError(config.CodeInvalidProfile, "tool %q: unknown built-in %q", def.Name, location)
		}
		return t, nil
	case config.ToolKindRemote:
		description := def.Description
		if description == "" {
			description = fmt.Sprintf("Remote endpoint %s", def.Location)
		}
		return tool.NewRemoteSpecTool(def.Name, description, defMode, tool.RemoteSpec{
			BaseURL: def.Location,
			Path:    def.Path,
			Method:  def.Method,
		}), nil
	case config.ToolKindProcess:
		description := def.Description
		if description == "" {
			description = fmt.Sprintf("External process %s", def.Location)
		}
		return tool.NewProcessTool(def.Name, description, defMode, def.Location, nil), nil
	default:
		return nil, config.NewConfigError(config.CodeInvalidProfile, "tool %q: unknown kind %q", def.Name, def.Kind)
	}
}
