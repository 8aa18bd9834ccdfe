// Package mode defines the reasoning-mode profile table. A profile bundles
// the behavioral parameters of one dispatcher run: iteration limit, wall-clock
// timeout, reflection and deep-planning switches. The built-in profiles are
// ordered fast < balanced < accurate in both iteration budget and timeout;
// "custom" is balanced with configured field overrides merged on top.
package mode

import (
	"time"

	"github.com/hupe1980/taskmesh/config"
)

// Mode names accepted by Table.Lookup.
const (
	Fast     = "fast"
	Balanced = "balanced"
	Accurate = "accurate"
	Custom   = "custom"
)

// Profile holds the behavioral parameters of a reasoning mode. Profiles are
// immutable after table construction and safe to share across concurrent runs.
type Profile struct {
	Name                string        `json:"name"`
	MaxIterations       int           `json:"max_iterations"`
	Timeout             time.Duration `json:"timeout"`
	ReflectionEnabled   bool          `json:"reflection_enabled"`
	DeepPlanningEnabled bool          `json:"deep_planning_enabled"`
}

// validate enforces the profile invariants: at least one iteration and a
// positive timeout.
func (p Profile) validate() error {
	if p.MaxIterations < 1 {
		return config.NewConfigError(config.CodeInvalidProfile,
			"profile %q: max_iterations must be >= 1, got %d", p.Name, p.MaxIterations)
	}
	if p.Timeout <= 0 {
		return config.NewConfigError(config.CodeInvalidProfile,
			"profile %q: timeout must be > 0, got %s", p.Name, p.Timeout)
	}
	return nil
}

// Table maps mode names to profiles. Construct once at startup; read-only
// afterwards.
type Table struct {
	profiles map[string]Profile
}

// NewTable returns the table of built-in profiles.
func NewTable() *Table {
	return &Table{profiles: map[string]Profile{
		Fast: {
			Name:          Fast,
			MaxIterations: 10,
			Timeout:       60 * time.Second,
		},
		Balanced: {
			Name:                Balanced,
			MaxIterations:       20,
			Timeout:             300 * time.Second,
			DeepPlanningEnabled: true,
		},
		Accurate: {
			Name:                Accurate,
			MaxIterations:       40,
			Timeout:             600 * time.Second,
			ReflectionEnabled:   true,
			DeepPlanningEnabled: true,
		},
	}}
}

// NewTableWithCustom builds the built-in table plus a "custom" profile merged
// from the given overrides on top of balanced. Absent fields inherit; invalid
// explicit values fail here, at load time, never at first use. A nil custom
// yields the plain built-in table.
func NewTableWithCustom(custom *config.CustomModeSettings) (*Table, error) {
	t := NewTable()
	if custom == nil {
		return t, nil
	}

	p := t.profiles[Balanced]
	p.Name = Custom

	if custom.MaxIterations != nil {
		p.MaxIterations = *custom.MaxIterations
	}
	if custom.TimeoutSeconds != nil {
		p.Timeout = time.Duration(*custom.TimeoutSeconds) * time.Second
	}
	if custom.Reflection != nil {
		p.ReflectionEnabled = *custom.Reflection
	}
	if custom.DeepPlanning != nil {
		p.DeepPlanningEnabled = *custom.DeepPlanning
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	t.profiles[Custom] = p
	return t, nil
}

// Lookup returns the profile for a mode name. Unknown names (including
// "custom" on a table built without overrides) fail with UnknownMode.
func (t *Table) Lookup(name string) (Profile, error) {
	p, ok := t.profiles[name]
	if !ok {
		return Profile{}, config.NewConfigError(config.CodeUnknownMode, "unknown reasoning mode %q", name)
	}
	return p, nil
}

// Names returns the mode names in the table in fixed fast/balanced/accurate/
// custom order, skipping absent entries.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.profiles))
	for _, name := range []string{Fast, Balanced, Accurate, Custom} {
		if _, ok := t.profiles[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
