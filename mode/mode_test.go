package mode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taskmesh/config"
)

func TestLookupStandardProfiles(t *testing.T) {
	table := NewTable()

	fast, err := table.Lookup(Fast)
	require.NoError(t, err)
	assert.Equal(t, 10, fast.MaxIterations)
	assert.Equal(t, 60*time.Second, fast.Timeout)
	assert.False(t, fast.ReflectionEnabled)
	assert.False(t, fast.DeepPlanningEnabled)

	balanced, err := table.Lookup(Balanced)
	require.NoError(t, err)
	assert.Equal(t, 20, balanced.MaxIterations)
	assert.Equal(t, 300*time.Second, balanced.Timeout)
	assert.False(t, balanced.ReflectionEnabled)
	assert.True(t, balanced.DeepPlanningEnabled)

	accurate, err := table.Lookup(Accurate)
	require.NoError(t, err)
	assert.Equal(t, 40, accurate.MaxIterations)
	assert.Equal(t, 600*time.Second, accurate.Timeout)
	assert.True(t, accurate.ReflectionEnabled)
	assert.True(t, accurate.DeepPlanningEnabled)
}

func TestLookupUnknownMode(t *testing.T) {
	table := NewTable()

	_, err := table.Lookup("turbo")
	require.Error(t, err)

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.CodeUnknownMode, cfgErr.Code)
}

func TestCustomInheritsFromBalanced(t *testing.T) {
	iterations := 7
	table, err := NewTableWithCustom(&config.CustomModeSettings{MaxIterations: &iterations})
	require.NoError(t, err)

	custom, err := table.Lookup(Custom)
	require.NoError(t, err)
	assert.Equal(t, 7, custom.MaxIterations)
	// Unset fields inherit the balanced profile.
	assert.Equal(t, 300*time.Second, custom.Timeout)
	assert.True(t, custom.DeepPlanningEnabled)
	assert.False(t, custom.ReflectionEnabled)
}

func TestCustomOverridesEveryField(t *testing.T) {
	iterations := 3
	timeout := 30
	reflection := true
	deep := false

	table, err := NewTableWithCustom(&config.CustomModeSettings{
		MaxIterations:  &iterations,
		TimeoutSeconds: &timeout,
		Reflection:     &reflection,
		DeepPlanning:   &deep,
	})
	require.NoError(t, err)

	custom, err := table.Lookup(Custom)
	require.NoError(t, err)
	assert.Equal(t, 3, custom.MaxIterations)
	assert.Equal(t, 30*time.Second, custom.Timeout)
	assert.True(t, custom.ReflectionEnabled)
	assert.False(t, custom.DeepPlanningEnabled)
}

func TestCustomValidatedEagerly(t *testing.T) {
	zero := 0
	_, err := NewTableWithCustom(&config.CustomModeSettings{MaxIterations: &zero})
	require.Error(t, err)

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.CodeInvalidProfile, cfgErr.Code)

	negative := -5
	_, err = NewTableWithCustom(&config.CustomModeSettings{TimeoutSeconds: &negative})
	require.Error(t, err)
}

func TestCustomUnavailableWithoutSettings(t *testing.T) {
	table := NewTable()

	_, err := table.Lookup(Custom)
	assert.Error(t, err)
}
