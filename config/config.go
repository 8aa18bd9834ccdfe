// Package config defines the resolved settings object consumed by the
// orchestration core plus the startup-time ConfigError taxonomy. The core
// treats a Settings value as already validated; turning files and flags into
// one is a boundary concern handled by Load / LoadToolDefinitions.
package config

import "fmt"

// ConfigError codes. A ConfigError is fatal: it aborts before any task runs.
const (
	CodeMissingCredential = "MISSING_CREDENTIAL"
	CodeAmbiguousProvider = "AMBIGUOUS_PROVIDER"
	CodeUnknownMode       = "UNKNOWN_MODE"
	CodeInvalidProfile    = "INVALID_PROFILE"
)

// ConfigError represents a startup-time configuration failure.
type ConfigError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Code, e.Message)
}

// NewConfigError creates a ConfigError with the given code and formatted message.
func NewConfigError(code, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Settings is the resolved configuration object handed to the orchestrator.
// Empty fields fall back to provider heuristics / built-in defaults during
// resolution; an unusable combination surfaces as a ConfigError at startup.
type Settings struct {
	// ProviderKind explicitly selects the LLM provider ("openai", "azure",
	// "watsonx", "openrouter", "ollama", "anthropic"). Empty means detect
	// from environment.
	ProviderKind string `mapstructure:"provider_kind"`
	// CredentialRef names the environment variable holding the provider
	// credential. Never the literal secret.
	CredentialRef string `mapstructure:"credential_ref"`
	// ModelName selects the model. Empty means provider default.
	ModelName string `mapstructure:"model_name"`
	// BaseURL overrides the provider endpoint (local gateways, proxies).
	BaseURL string `mapstructure:"base_url"`

	// ModeName selects the reasoning mode ("fast", "balanced", "accurate",
	// "custom"). Empty means "balanced".
	ModeName string `mapstructure:"mode_name"`
	// TaskMode selects the eligible tool subset ("api", "web", "hybrid").
	// Empty means "api".
	TaskMode string `mapstructure:"task_mode"`

	// CustomMode supplies field overrides when ModeName is "custom". Absent
	// fields inherit from the balanced profile.
	CustomMode *CustomModeSettings `mapstructure:"custom_mode"`

	// Tools lists the adapters to register at startup, in order.
	Tools []ToolDefinition `mapstructure:"tools"`

	// OutputDir is where finalized trace documents are written.
	// Empty means "./output".
	OutputDir string `mapstructure:"output_dir"`
}

// CustomModeSettings holds the override fields for the custom reasoning mode.
// Pointer fields distinguish "absent" (inherit) from explicit zero values,
// which fail validation eagerly at load time.
type CustomModeSettings struct {
	MaxIterations  *int  `mapstructure:"max_iterations"`
	TimeoutSeconds *int  `mapstructure:"timeout_seconds"`
	Reflection     *bool `mapstructure:"reflection"`
	DeepPlanning   *bool `mapstructure:"deep_planning"`
}

// Tool adapter kinds accepted in ToolDefinition.Kind.
const (
	ToolKindDirect  = "direct"  // built-in in-process function
	ToolKindRemote  = "remote"  // API-spec-described HTTP call
	ToolKindProcess = "process" // external subprocess protocol
)

// ToolDefinition describes one tool adapter to register.
type ToolDefinition struct {
	Name string `yaml:"name" mapstructure:"name"`
	// Kind is one of direct, remote, process.
	Kind string `yaml:"kind" mapstructure:"kind"`
	// Location depends on Kind: the built-in identifier for direct tools,
	// the endpoint base URL for remote tools, the command line for process
	// tools.
	Location string `yaml:"location" mapstructure:"location"`
	// Mode tags the adapter as compatible with a task mode ("api", "web",
	// "hybrid"). Empty means "api".
	Mode string `yaml:"mode" mapstructure:"mode"`
	// Description overrides the adapter's default description (remote and
	// process tools).
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	// Method is the HTTP method for remote tools. Empty means GET.
	Method string `yaml:"method,omitempty" mapstructure:"method"`
	// Path is appended to Location for remote tools.
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}
