package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "settings.toml", `
provider_kind = "openai"
credential_ref = "MY_OPENAI_KEY"
model_name = "gpt-4o"
mode_name = "custom"
task_mode = "hybrid"
output_dir = "out"

[custom_mode]
max_iterations = 5
timeout_seconds = 120
reflection = true

[[tools]]
name = "calculator"
kind = "direct"

[[tools]]
name = "crm"
kind = "remote"
location = "https://crm.internal"
path = "/accounts"
method = "GET"
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", s.ProviderKind)
	assert.Equal(t, "MY_OPENAI_KEY", s.CredentialRef)
	assert.Equal(t, "gpt-4o", s.ModelName)
	assert.Equal(t, "custom", s.ModeName)
	assert.Equal(t, "hybrid", s.TaskMode)
	assert.Equal(t, "out", s.OutputDir)

	require.NotNil(t, s.CustomMode)
	require.NotNil(t, s.CustomMode.MaxIterations)
	assert.Equal(t, 5, *s.CustomMode.MaxIterations)
	require.NotNil(t, s.CustomMode.Reflection)
	assert.True(t, *s.CustomMode.Reflection)
	assert.Nil(t, s.CustomMode.DeepPlanning)

	require.Len(t, s.Tools, 2)
	assert.Equal(t, "calculator", s.Tools[0].Name)
	assert.Equal(t, ToolKindRemote, s.Tools[1].Kind)
	assert.Equal(t, "https://crm.internal", s.Tools[1].Location)
}

func TestLoadMissingFileIsZeroSettings(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)

	s, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestLoadMalformedSettingsFails(t *testing.T) {
	path := writeFile(t, "settings.toml", `provider_kind = [broken`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadToolDefinitions(t *testing.T) {
	path := writeFile(t, "tools.yaml", `
tools:
  - name: calculator
    kind: direct
  - name: crm
    kind: remote
    location: https://crm.internal
    path: /accounts
    method: POST
    mode: api
  - name: scanner
    kind: process
    location: /usr/local/bin/scan --json
    mode: hybrid
`)

	defs, err := LoadToolDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	// File order is registration order.
	assert.Equal(t, []string{"calculator", "crm", "scanner"}, []string{defs[0].Name, defs[1].Name, defs[2].Name})
	assert.Equal(t, "POST", defs[1].Method)
	assert.Equal(t, "hybrid", defs[2].Mode)
}

func TestLoadToolDefinitionsValidation(t *testing.T) {
	// Missing name.
	path := writeFile(t, "tools.yaml", "tools:\n  - kind: direct\n")
	_, err := LoadToolDefinitions(path)
	assert.Error(t, err)

	// Missing kind.
	path = writeFile(t, "tools2.yaml", "tools:\n  - name: calculator\n")
	_, err = LoadToolDefinitions(path)
	assert.Error(t, err)

	// Unknown kind.
	path = writeFile(t, "tools3.yaml", "tools:\n  - name: x\n    kind: quantum\n")
	_, err = LoadToolDefinitions(path)
	assert.Error(t, err)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError(CodeAmbiguousProvider, "both %s and %s configured", "openai", "anthropic")
	assert.Equal(t, CodeAmbiguousProvider, err.Code)
	assert.Contains(t, err.Error(), "AMBIGUOUS_PROVIDER")
	assert.Contains(t, err.Error(), "openai")
}
