package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taskmesh"
)

// exampleTask is one entry in the built-in catalog. The catalog exercises
// every built-in tool; web examples require the browser tool and therefore a
// web or hybrid task mode.
type exampleTask struct {
	Name     string
	Task     string
	TaskMode string
}

var exampleCatalog = []exampleTask{
	{
		Name: "top-accounts",
		Task: "Get the top 3 accounts by revenue and summarize them",
	},
	{
		Name: "tip-calculation",
		Task: "Calculate a 15% tip on an $85 restaurant bill",
	},
	{
		Name: "sentiment",
		Task: "Analyze the sentiment of: 'The onboarding was excellent but support is terrible'",
	},
	{
		Name: "filter-values",
		Task: "From the records [{\"value\": 40}, {\"value\": 140}, {\"value\": 260}], keep those above 100",
	},
	{
		Name:     "page-title",
		Task:     "Open https://example.com and report the page title",
		TaskMode: "web",
	},
}

func newExamplesCmd(flags *rootFlags) *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List or execute the built-in example tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !execute {
				for _, ex := range exampleCatalog {
					header.Printf("%s\n", ex.Name)
					fmt.Printf("  %s\n", ex.Task)
					if ex.TaskMode != "" {
						dim.Printf("  task mode: %s\n", ex.TaskMode)
					}
				}
				dim.Println("\nrun them with: taskmesh examples --run")
				return nil
			}

			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			logger := newLogger(flags)

			failures := 0
			for _, ex := range exampleCatalog {
				header.Printf("\n=== %s ===\n", ex.Name)
				fmt.Println(ex.Task)

				exSettings := settings
				if ex.TaskMode != "" {
					exSettings.TaskMode = ex.TaskMode
				}

				orch, err := taskmesh.New(exSettings, func(o *taskmesh.Options) {
					o.Logger = logger
				})
				if err != nil {
					failure.Printf("setup failed: %s\n", err)
					failures++
					continue
				}

				result := orch.Execute(cmd.Context(), ex.Task)
				printResult(result)
				if !result.OK() {
					failures++
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d examples failed", failures, len(exampleCatalog))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "run", false, "execute the examples instead of listing them")

	return cmd
}
