// Command taskmesh runs configuration-driven tasks from the terminal. It
// loads settings (TOML) and tool definitions (YAML), resolves the model
// provider from the environment and executes tasks through the orchestrator,
// either one-shot (run), as a REPL (interactive) or from the built-in example
// catalog (examples). check-setup verifies the environment without running
// anything.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taskmesh/config"
	"github.com/hupe1980/taskmesh/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags are shared across subcommands and applied on top of the settings
// file, flags winning.
type rootFlags struct {
	configPath string
	toolsPath  string
	modeName   string
	taskMode   string
	outputDir  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "taskmesh",
		Short:         "Configuration-driven task orchestrator",
		Long:          "taskmesh plans and executes tasks with a model-backed planner,\na tool registry and bounded reasoning modes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "settings file (TOML)")
	cmd.PersistentFlags().StringVar(&flags.toolsPath, "tools", "", "tool definitions file (YAML)")
	cmd.PersistentFlags().StringVarP(&flags.modeName, "mode", "m", "", "reasoning mode: fast, balanced, accurate, custom")
	cmd.PersistentFlags().StringVar(&flags.taskMode, "task-mode", "", "tool subset: api, web, hybrid")
	cmd.PersistentFlags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for trace documents")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newRunCmd(flags),
		newInteractiveCmd(flags),
		newExamplesCmd(flags),
		newCheckSetupCmd(flags),
	)

	return cmd
}

// loadSettings merges the settings file with flag overrides.
func loadSettings(flags *rootFlags) (config.Settings, error) {
	settings, err := config.Load(flags.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	if flags.toolsPath != "" {
		defs, err := config.LoadToolDefinitions(flags.toolsPath)
		if err != nil {
			return config.Settings{}, err
		}
		settings.Tools = defs
	}
	if flags.modeName != "" {
		settings.ModeName = flags.modeName
	}
	if flags.taskMode != "" {
		settings.TaskMode = flags.taskMode
	}
	if flags.outputDir != "" {
		settings.OutputDir = flags.outputDir
	}

	return settings, nil
}

func newLogger(flags *rootFlags) logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Format = "text"
	cfg.Output = os.Stderr
	if flags.verbose {
		cfg.Level = logging.LogLevelDebug
	}
	return logging.New(cfg)
}
