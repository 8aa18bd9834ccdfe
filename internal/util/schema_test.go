package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")

	// Required only includes non-pointer, non-omitempty exported fields.
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// []any mirrors the JSON-decoded schema shape.
		"required": []any{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	// Type mismatch.
	err = ValidateParameters(map[string]any{"x": "five"}, schema)
	assert.Error(t, err)

	// JSON numbers decode as float64 and still satisfy integer fields.
	assert.NoError(t, ValidateParameters(map[string]any{"x": 5.0}, schema))
}

func TestValidateParametersEnum(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"op": map[string]any{"type": "string", "enum": []string{"filter", "sort"}},
		},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"op": "sort"}, schema))

	err := ValidateParameters(map[string]any{"op": "explode"}, schema)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "op", vErr.Field)
}

func TestValidateParametersNilSchema(t *testing.T) {
	// Adapters without a declared schema accept anything.
	assert.NoError(t, ValidateParameters(map[string]any{"anything": 1}, nil))
	assert.NoError(t, ValidateParameters(nil, nil))
}
