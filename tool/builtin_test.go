package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuiltin(t *testing.T) {
	for _, name := range []string{BuiltinCalculator, BuiltinSentiment, BuiltinDataProcessor, BuiltinAccounts, BuiltinBrowser} {
		tl, ok := NewBuiltin(name)
		require.True(t, ok, name)
		assert.Equal(t, name, tl.Name())
	}

	_, ok := NewBuiltin("nope")
	assert.False(t, ok)
}

// -------------------- Calculator --------------------

func TestCalculator(t *testing.T) {
	calc := NewCalculatorTool()

	out, err := calc.Invoke(context.Background(), map[string]any{"expression": "2 + 3 * 4"})
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.Equal(t, 14.0, result["result"])

	out, err = calc.Invoke(context.Background(), map[string]any{"expression": "(1.5 + 2.5) / 2"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.(map[string]any)["result"])
}

func TestCalculatorRejectsNonArithmeticInput(t *testing.T) {
	calc := NewCalculatorTool()

	_, err := calc.Invoke(context.Background(), map[string]any{"expression": "10 + abc"})
	require.Error(t, err)

	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)
	// Validation failures are never retried.
	assert.False(t, toolErr.AsFailure().Retryable)
}

func TestCalculatorDivisionByZero(t *testing.T) {
	calc := NewCalculatorTool()

	_, err := calc.Invoke(context.Background(), map[string]any{"expression": "5 / 0"})
	require.Error(t, err)

	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)
}

func TestCalculatorMissingExpression(t *testing.T) {
	calc := NewCalculatorTool()

	_, err := calc.Invoke(context.Background(), map[string]any{})
	require.Error(t, err)

	var toolErr *Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)
}

// -------------------- Sentiment --------------------

func TestSentiment(t *testing.T) {
	sentiment := NewSentimentTool()

	out, err := sentiment.Invoke(context.Background(), map[string]any{"text": "This is a great and excellent product"})
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.Equal(t, "positive", result["sentiment"])
	assert.InDelta(t, 0.7, result["confidence"], 0.001)

	out, err = sentiment.Invoke(context.Background(), map[string]any{"text": "terrible awful service"})
	require.NoError(t, err)
	assert.Equal(t, "negative", out.(map[string]any)["sentiment"])

	out, err = sentiment.Invoke(context.Background(), map[string]any{"text": "the sky is blue"})
	require.NoError(t, err)
	result = out.(map[string]any)
	assert.Equal(t, "neutral", result["sentiment"])
	assert.Equal(t, 0.5, result["confidence"])
}

// -------------------- Data processor --------------------

func TestDataProcessorFilter(t *testing.T) {
	dp := NewDataProcessorTool()

	out, err := dp.Invoke(context.Background(), map[string]any{
		"data":      `[{"value": 40}, {"value": 140}, {"value": 260}]`,
		"operation": "filter",
	})
	require.NoError(t, err)

	var rows []map[string]float64
	require.NoError(t, json.Unmarshal(out.(json.RawMessage), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 140.0, rows[0]["value"])
	assert.Equal(t, 260.0, rows[1]["value"])
}

func TestDataProcessorFilterCustomThreshold(t *testing.T) {
	dp := NewDataProcessorTool()

	out, err := dp.Invoke(context.Background(), map[string]any{
		"data":      `[{"value": 40}, {"value": 140}]`,
		"operation": "filter",
		"threshold": 30.0,
	})
	require.NoError(t, err)

	var rows []map[string]float64
	require.NoError(t, json.Unmarshal(out.(json.RawMessage), &rows))
	assert.Len(t, rows, 2)
}

func TestDataProcessorSort(t *testing.T) {
	dp := NewDataProcessorTool()

	out, err := dp.Invoke(context.Background(), map[string]any{
		"data":      `[{"value": 10}, {"value": 30}, {"value": 20}]`,
		"operation": "sort",
	})
	require.NoError(t, err)

	var rows []map[string]float64
	require.NoError(t, json.Unmarshal(out.(json.RawMessage), &rows))
	assert.Equal(t, []map[string]float64{{"value": 30}, {"value": 20}, {"value": 10}}, rows)
}

func TestDataProcessorAggregate(t *testing.T) {
	dp := NewDataProcessorTool()

	out, err := dp.Invoke(context.Background(), map[string]any{
		"data":      `[{"value": 1}, {"value": 2}, {"value": 3}]`,
		"operation": "aggregate",
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, 6.0, result["total"])
	assert.Equal(t, 3, result["count"])
}

func TestDataProcessorRejectsBadInput(t *testing.T) {
	dp := NewDataProcessorTool()

	var toolErr *Error

	_, err := dp.Invoke(context.Background(), map[string]any{"data": `{"not": "an array"}`, "operation": "filter"})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)

	_, err = dp.Invoke(context.Background(), map[string]any{"data": `[]`, "operation": "explode"})
	require.Error(t, err)
	// Enum violation is caught by schema validation before the function runs.
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, KindValidation, toolErr.Kind)
}

// -------------------- Accounts --------------------

func TestAccountsSortedByRevenueDescending(t *testing.T) {
	accounts := NewAccountsTool()

	out, err := accounts.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)

	records := out.([]Account)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].Revenue, records[i].Revenue)
	}
	assert.Equal(t, "Global Solutions", records[0].Name)
}

func TestAccountsLimit(t *testing.T) {
	accounts := NewAccountsTool()

	out, err := accounts.Invoke(context.Background(), map[string]any{"limit": float64(3)})
	require.NoError(t, err)

	records := out.([]Account)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Global Solutions", "Acme Corp", "Initech"}, []string{records[0].Name, records[1].Name, records[2].Name})
}

func TestAccountsNegativeLimit(t *testing.T) {
	accounts := NewAccountsTool()

	_, err := accounts.Invoke(context.Background(), map[string]any{"limit": float64(-1)})
	require.Error(t, err)

	var toolErr *Error
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, KindValidation, toolErr.Kind)
}
