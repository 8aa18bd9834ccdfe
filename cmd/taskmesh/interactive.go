package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taskmesh"
)

func newInteractiveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Run tasks from a prompt loop",
		Args:  cobra.NoArgs,
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

			header.Printf("taskmesh interactive — mode=%s task_mode=%s\n", orch.Profile().Name, orch.TaskMode())
			dim.Println("enter a task, 'history' for past runs, 'exit' to quit")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("task> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				case "history":
					printHistory(orch)
					continue
				}

				printResult(orch.Execute(cmd.Context(), line))
			}
		},
	}
}

func printHistory(orch *taskmesh.Orchestrator) {
	history := orch.History()
	if len(history) == 0 {
		dim.Println("no runs yet")
		return
	}
	for i, result := range history {
		status := success.Sprint("ok")
		if !result.OK() {
			status = failure.Sprint(string(result.Err.Kind))
		}
		fmt.Printf("%2d. [%s] %s (%d steps, %s)\n", i+1, status, result.Task, result.Steps, result.Elapsed.Round(time.Millisecond))
	}
}
