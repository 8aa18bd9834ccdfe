package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads a settings file (TOML) into a Settings value. A missing path is
// not an error: the zero Settings relies entirely on environment detection
// and defaults. Malformed content is a hard startup failure.
func Load(path string) (Settings, error) {
	var s Settings

	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode settings %s: %w", path, err)
	}

	return s, nil
}

// toolDefinitionsFile is the YAML document shape for tool definition files.
type toolDefinitionsFile struct {
	Tools []ToolDefinition `yaml:"tools"`
}

// LoadToolDefinitions reads a YAML tool definitions file. Order in the file
// defines registration order, which in turn defines planner tie-breaking.
func LoadToolDefinitions(path string) ([]ToolDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool definitions %s: %w", path, err)
	}

	var doc toolDefinitionsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tool definitions %s: %w", path, err)
	}

	for i, def := range doc.Tools {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition %d in %s: name is required", i, path)
		}
		switch def.Kind {
		case ToolKindDirect, ToolKindRemote, ToolKindProcess:
		case "":
			return nil, fmt.Errorf("tool definition %q in %s: kind is required", def.Name, path)
		default:
			return nil, fmt.Errorf("tool definition %q in %s: unknown kind %q", def.Name, path, def.Kind)
		}
	}

	return doc.Tools, nil
}
