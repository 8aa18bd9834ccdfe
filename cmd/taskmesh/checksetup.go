package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taskmesh/mode"
	"github.com/hupe1980/taskmesh/provider"
	"github.com/hupe1980/taskmesh/tool"
)

func newCheckSetupCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check-setup",
		Short: "Verify provider, mode and tool configuration without running a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}

			ok := true

			header.Println("provider")
			descriptor, err := provider.Resolve(os.Getenv, settings)
			if err != nil {
				failure.Printf("  ✗ %s\n", err)
				ok = false
			} else {
				success.Printf("  ✓ %s\n", descriptor.Kind)
				fmt.Printf("    model:      %s\n", descriptor.ModelName)
				if descriptor.BaseURL != "" {
					fmt.Printf("    base url:   %s\n", descriptor.BaseURL)
				}
				// Only the variable name is shown, never its value.
				fmt.Printf("    credential: $%s\n", descriptor.CredentialRef)
			}

			header.Println("mode")
			table, err := mode.NewTableWithCustom(settings.CustomMode)
			if err != nil {
				failure.Printf("  ✗ %s\n", err)
				ok = false
			} else {
				name := settings.ModeName
				if name == "" {
					name = mode.Balanced
				}
				profile, err := table.Lookup(name)
				if err != nil {
					failure.Printf("  ✗ %s\n", err)
					ok = false
				} else {
					success.Printf("  ✓ %s\n", profile.Name)
					fmt.Printf("    max iterations: %d\n", profile.MaxIterations)
					fmt.Printf("    timeout:        %s\n", profile.Timeout)
					fmt.Printf("    reflection:     %t\n", profile.ReflectionEnabled)
					fmt.Printf("    deep planning:  %t\n", profile.DeepPlanningEnabled)
				}
			}

			header.Println("task mode")
			taskMode, err := tool.ParseTaskMode(settings.TaskMode)
			if err != nil {
				failure.Printf("  ✗ %s\n", err)
				ok = false
			} else {
				success.Printf("  ✓ %s\n", taskMode)
			}

			header.Println("tools")
			if len(settings.Tools) == 0 {
				fmt.Println("  (none configured, built-ins will be registered)")
			}
			for _, def := range settings.Tools {
				kind := def.Kind
				if kind == "" {
					kind = "direct"
				}
				fmt.Printf("  - %s (%s)\n", def.Name, kind)
			}

			if !ok {
				return fmt.Errorf("setup incomplete")
			}
			success.Println("\nsetup ok")
			return nil
		},
	}
}
