package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Built-in direct tool names resolvable from tool definitions.
const (
	BuiltinCalculator    = "calculator"
	BuiltinSentiment     = "sentiment_analyzer"
	BuiltinDataProcessor = "data_processor"
	BuiltinAccounts      = "accounts"
	BuiltinBrowser       = "web_navigator"
)

// NewBuiltin constructs a built-in tool by name with its default task mode
// tag. Unknown names return false.
func NewBuiltin(name string) (Tool, bool) {
	switch name {
	case BuiltinCalculator:
		return NewCalculatorTool(), true
	case BuiltinSentiment:
		return NewSentimentTool(), true
	case BuiltinDataProcessor:
		return NewDataProcessorTool(), true
	case BuiltinAccounts:
		return NewAccountsTool(), true
	case BuiltinBrowser:
		return NewBrowserTool(), true
	default:
		return nil, false
	}
}

// NewCalculatorTool evaluates arithmetic expressions. Input is restricted to
// digits, the four basic operators, parentheses, decimal points and spaces;
// anything else is a validation failure before evaluation starts.
func NewCalculatorTool() *FunctionTool {
	return NewFunctionTool(
		BuiltinCalculator,
		"Evaluate mathematical expressions safely",
		ModeAPI,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Mathematical expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			expression, _ := args["expression"].(string)
			result, err := evalExpression(expression)
			if err != nil {
				return nil, &Error{Tool: BuiltinCalculator, Kind: KindValidation, Message: err.Error()}
			}
			return map[string]any{"expression": expression, "result": result}, nil
		},
	)
}

var (
	positiveWords = []string{"good", "great", "excellent", "happy", "love", "best"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "worst", "poor"}
)

// NewSentimentTool scores text as positive, negative or neutral with a
// confidence value derived from matched word counts.
func NewSentimentTool() *FunctionTool {
	return NewFunctionTool(
		BuiltinSentiment,
		"Analyze sentiment of text (positive, negative, neutral)",
		ModeAPI,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to analyze for sentiment",
				},
			},
			"required": []string{"text"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			text := strings.ToLower(args["text"].(string))

			var positive, negative int
			for _, w := range positiveWords {
				if strings.Contains(text, w) {
					positive++
				}
			}
			for _, w := range negativeWords {
				if strings.Contains(text, w) {
					negative++
				}
			}

			sentiment := "neutral"
			confidence := 0.5
			switch {
			case positive > negative:
				sentiment = "positive"
				confidence = min(0.9, 0.5+float64(positive)*0.1)
			case negative > positive:
				sentiment = "negative"
				confidence = min(0.9, 0.5+float64(negative)*0.1)
			}

			return map[string]any{"sentiment": sentiment, "confidence": confidence}, nil
		},
	)
}

// NewDataProcessorTool transforms a JSON array of records with filter, sort
// and aggregate operations keyed on each record's "value" field.
func NewDataProcessorTool() *FunctionTool {
	return NewFunctionTool(
		BuiltinDataProcessor,
		"Process and transform JSON data with filter, sort and aggregate operations",
		ModeAPI,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{
					"type":        "string",
					"description": "JSON array of records to process",
				},
				"operation": map[string]any{
					"type":        "string",
					"description": "Operation to perform",
					"enum":        []string{"filter", "sort", "aggregate"},
				},
				"threshold": map[string]any{
					"type":        "number",
					"description": "Minimum value kept by the filter operation (default 100)",
				},
			},
			"required": []string{"data", "operation"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			data, _ := args["data"].(string)
			operation, _ := args["operation"].(string)

			parsed := gjson.Parse(data)
			if !parsed.IsArray() {
				return nil, &Error{Tool: BuiltinDataProcessor, Kind: KindValidation, Message: "data must be a JSON array"}
			}

			threshold := 100.0
			if v, ok := args["threshold"].(float64); ok {
				threshold = v
			}

			items := parsed.Array()
			switch operation {
			case "filter":
				out := "[]"
				for _, item := range items {
					if item.Get("value").Float() > threshold {
						out, _ = sjson.SetRaw(out, "-1", item.Raw)
					}
				}
				return json.RawMessage(out), nil
			case "sort":
				sorted := make([]gjson.Result, len(items))
				copy(sorted, items)
				sort.SliceStable(sorted, func(i, j int) bool {
					return sorted[i].Get("value").Float() > sorted[j].Get("value").Float()
				})
				out := "[]"
				for _, item := range sorted {
					out, _ = sjson.SetRaw(out, "-1", item.Raw)
				}
				return json.RawMessage(out), nil
			case "aggregate":
				var total float64
				for _, item := range items {
					total += item.Get("value").Float()
				}
				return map[string]any{"total": total, "count": len(items)}, nil
			default:
				return nil, &Error{
					Tool:    BuiltinDataProcessor,
					Kind:    KindValidation,
					Message: fmt.Sprintf("unknown operation %q", operation),
				}
			}
		},
	)
}

// Account is one CRM demo record served by the accounts tool.
type Account struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Revenue  int    `json:"revenue"`
	Industry string `json:"industry"`
}

// demoAccounts is the fixed CRM dataset, unordered on purpose so sorting is
// observable.
var demoAccounts = []Account{
	{ID: 1, Name: "Acme Corp", Revenue: 1500000, Industry: "Manufacturing"},
	{ID: 2, Name: "TechStart Inc", Revenue: 750000, Industry: "Software"},
	{ID: 3, Name: "Global Solutions", Revenue: 2000000, Industry: "Technology"},
	{ID: 4, Name: "Initech", Revenue: 1200000, Industry: "Financial Services"},
	{ID: 5, Name: "Umbrella Health", Revenue: 900000, Industry: "Healthcare"},
}

// NewAccountsTool serves the fixed CRM account dataset sorted by revenue
// descending, optionally limited to the top N records.
func NewAccountsTool() *FunctionTool {
	return NewFunctionTool(
		BuiltinAccounts,
		"List CRM accounts sorted by revenue descending",
		ModeAPI,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Return at most this many accounts (default all)",
				},
			},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			records := make([]Account, len(demoAccounts))
			copy(records, demoAccounts)
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Revenue > records[j].Revenue
			})

			if v, ok := args["limit"].(float64); ok {
				limit := int(v)
				if limit < 0 {
					return nil, &Error{Tool: BuiltinAccounts, Kind: KindValidation, Message: "limit must be >= 0"}
				}
				if limit < len(records) {
					records = records[:limit]
				}
			}

			return records, nil
		},
	)
}
