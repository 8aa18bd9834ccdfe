package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/hupe1980/taskmesh/dispatch"
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	dim     = color.New(color.Faint)
)

// printResult renders one run result for the terminal.
func printResult(result dispatch.Result) {
	fmt.Println()
	if result.OK() {
		success.Println("✓ success")
		if result.Data != nil {
			fmt.Println(renderData(result.Data))
		}
	} else {
		failure.Printf("✗ %s\n", result.Err.Kind)
		fmt.Println(result.Err.Message)
	}

	dim.Printf("steps=%d elapsed=%s", result.Steps, result.Elapsed.Round(time.Millisecond))
	if result.TracePath != "" {
		dim.Printf(" trace=%s", result.TracePath)
	}
	fmt.Println()
}

func renderData(data any) string {
	if s, ok := data.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(out)
}
