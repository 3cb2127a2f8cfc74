package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/ui"
)

var commandsReset bool

var commandsCmd = &cobra.Command{
	Use:   "commands [git-command...]",
	Short: "Choose which git commands are intercepted",
	Long: `Choose the git commands that resolve a profile before running.

Other commands are passed to git untouched. With no arguments the current
selection is shown as a checklist.`,
	Example: `  gix commands                       # Pick from a checklist
  gix commands push pull fetch clone commit
  gix commands --reset               # Back to the defaults`,
	RunE: runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().BoolVar(&commandsReset, "reset", false, "Restore the default commands")
}

func runCommands(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	var chosen []string
	switch {
	case commandsReset:
		chosen = slices.Clone(config.DefaultInterceptedCommands)
	case len(args) > 0:
		chosen = normalizeCommands(args)
	default:
		if !ui.Interactive() {
			return errNoTTY
		}
		chosen, err = ui.PromptCommands(cfg.InterceptedCommands)
		if err != nil {
			return err
		}
	}

	if len(chosen) == 0 {
		return fmt.Errorf("at least one command must be intercepted; use --reset for the defaults")
	}

	cfg.InterceptedCommands = chosen
	if err := store.SaveGlobal(cfg); err != nil {
		return err
	}

	out.Success("Intercepted commands: " + strings.Join(chosen, ", "))
	return nil
}

// normalizeCommands trims, drops empties and removes duplicates keeping order
func normalizeCommands(args []string) []string {
	var out []string
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
