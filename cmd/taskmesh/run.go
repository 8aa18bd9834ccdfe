package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taskmesh"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task>",
		Short: "Execute one task and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}

			orch, err := taskmesh.New(settings, func(o *taskmesh.Options) {
				o.Logger = newLogger(flags)
			})
			if err != nil {
				return err
			}

			result := orch.Execute(cmd.Context(), strings.Join(args, " "))
			printResult(result)

			if !result.OK() {
				return fmt.Errorf("run failed: %s", result.Err.Message)
			}
			return nil
		},
	}
}
