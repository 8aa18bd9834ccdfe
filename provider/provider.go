// Package provider resolves configuration and environment into one concrete
// LLM-provider endpoint descriptor. Resolution is pure: no network I/O, no
// side effects. The descriptor carries a credential reference (the name of an
// environment variable), never the secret itself.
package provider

import (
	"strings"

	"github.com/hupe1980/taskmesh/config"
)

// Kind identifies a supported LLM provider.
type Kind string

// Supported provider kinds.
const (
	KindOpenAI     Kind = "openai"
	KindAzure      Kind = "azure"
	KindWatsonx    Kind = "watsonx"
	KindOpenRouter Kind = "openrouter"
	KindOllama     Kind = "ollama"
	KindAnthropic  Kind = "anthropic"
)

// Credential environment variables checked during heuristic detection, and
// the ollama dummy credential value accepted in place of a real key.
const (
	envOpenAIKey     = "OPENAI_API_KEY"
	envOpenAIBaseURL = "OPENAI_BASE_URL"
	envWatsonxKey    = "WATSONX_API_KEY"
	envAzureKey      = "AZURE_OPENAI_API_KEY"
	envAzureEndpoint = "AZURE_OPENAI_ENDPOINT"
	envOpenRouterKey = "OPENROUTER_API_KEY"
	envAnthropicKey  = "ANTHROPIC_API_KEY"
	envModelName     = "MODEL_NAME"

	ollamaDummyKey = "ollama"
)

// Descriptor is a fully resolved provider endpoint. All fields are non-empty
// for a usable descriptor; Resolve never returns an incomplete one.
type Descriptor struct {
	Kind          Kind   `json:"kind"`
	BaseURL       string `json:"base_url"`
	CredentialRef string `json:"credential_ref"` // env var name, not the secret
	ModelName     string `json:"model_name"`
}

// kindDefaults carries per-kind fallbacks applied when neither settings nor
// environment override them.
type kindDefaults struct {
	baseURL       string
	credentialRef string
	modelName     string
}

var defaults = map[Kind]kindDefaults{
	KindOpenAI:     {baseURL: "https://api.openai.com/v1", credentialRef: envOpenAIKey, modelName: "gpt-4o-mini"},
	KindAzure:      {baseURL: "", credentialRef: envAzureKey, modelName: "gpt-4o-mini"},
	KindWatsonx:    {baseURL: "https://us-south.ml.cloud.ibm.com", credentialRef: envWatsonxKey, modelName: "granite-13b-chat"},
	KindOpenRouter: {baseURL: "https://openrouter.ai/api/v1", credentialRef: envOpenRouterKey, modelName: "openai/gpt-4o-mini"},
	KindOllama:     {baseURL: "http://localhost:11434/v1", credentialRef: envOpenAIKey, modelName: "llama3.2"},
	KindAnthropic:  {baseURL: "https://api.anthropic.com", credentialRef: envAnthropicKey, modelName: "claude-3-5-sonnet-20241022"},
}

// ParseKind converts a configured string into a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := defaults[k]
	return k, ok
}

// Resolve maps environment plus settings into one usable Descriptor.
//
// Precedence: an explicit provider kind in settings wins over heuristic
// environment detection. Heuristics mirror the credential variables each
// provider uses; a localhost:11434 base URL or the ollama dummy key selects
// ollama. Two fully configured providers without an explicit selection is an
// AmbiguousProvider error; no usable credential for the selected kind is a
// MissingCredential error.
//
// getenv is injected for testability; callers pass os.Getenv.
func Resolve(getenv func(string) string, s config.Settings) (Descriptor, error) {
	kind, err := selectKind(getenv, s)
	if err != nil {
		return Descriptor{}, err
	}

	def := defaults[kind]

	d := Descriptor{
		Kind:          kind,
		BaseURL:       def.baseURL,
		CredentialRef: def.credentialRef,
		ModelName:     def.modelName,
	}

	if kind == KindAzure && d.BaseURL == "" {
		d.BaseURL = getenv(envAzureEndpoint)
	}
	if kind == KindOllama || kind == KindOpenAI {
		if base := getenv(envOpenAIBaseURL); base != "" {
			d.BaseURL = base
		}
	}
	if env := getenv(envModelName); env != "" {
		d.ModelName = env
	}

	// Explicit settings override both defaults and environment.
	if s.BaseURL != "" {
		d.BaseURL = s.BaseURL
	}
	if s.CredentialRef != "" {
		d.CredentialRef = s.CredentialRef
	}
	if s.ModelName != "" {
		d.ModelName = s.ModelName
	}

	if d.BaseURL == "" {
		return Descriptor{}, config.NewConfigError(config.CodeMissingCredential,
			"provider %s: no endpoint configured", kind)
	}
	if getenv(d.CredentialRef) == "" {
		return Descriptor{}, config.NewConfigError(config.CodeMissingCredential,
			"provider %s: credential %s is not set", kind, d.CredentialRef)
	}

	return d, nil
}

// selectKind applies the explicit-selection-wins precedence rule, falling back
// to environment heuristics.
func selectKind(getenv func(string) string, s config.Settings) (Kind, error) {
	if s.ProviderKind != "" {
		kind, ok := ParseKind(s.ProviderKind)
		if !ok {
			return "", config.NewConfigError(config.CodeMissingCredential,
				"unknown provider kind %q", s.ProviderKind)
		}
		return kind, nil
	}

	if isOllama(getenv) {
		return KindOllama, nil
	}

	// Candidates in the original detection order. The ollama dummy key does
	// not count as an OpenAI credential.
	var candidates []Kind
	if getenv(envWatsonxKey) != "" {
		candidates = append(candidates, KindWatsonx)
	}
	if getenv(envAzureKey) != "" {
		candidates = append(candidates, KindAzure)
	}
	if getenv(envOpenRouterKey) != "" {
		candidates = append(candidates, KindOpenRouter)
	}
	if getenv(envAnthropicKey) != "" {
		candidates = append(candidates, KindAnthropic)
	}
	if key := getenv(envOpenAIKey); key != "" && key != ollamaDummyKey {
		candidates = append(candidates, KindOpenAI)
	}

	switch len(candidates) {
	case 0:
		return "", config.NewConfigError(config.CodeMissingCredential,
			"no provider credential found in environment")
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = string(c)
		}
		return "", config.NewConfigError(config.CodeAmbiguousProvider,
			"multiple providers configured (%s); set provider_kind explicitly", strings.Join(names, ", "))
	}
}

// isOllama reports whether the environment points at a local ollama endpoint.
func isOllama(getenv func(string) string) bool {
	if strings.Contains(getenv(envOpenAIBaseURL), "localhost:11434") {
		return true
	}
	return getenv(envOpenAIKey) == ollamaDummyKey
}
