package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/ui"
)

var setClear bool

var setCmd = &cobra.Command{
	Use:   "set [profile]",
	Short: "Set or clear the global default profile",
	Long: `Set the profile used wherever no repository binding applies.

Without arguments an interactive list is shown, including an option to
clear the default.`,
	Args: cobra.MaximumNArgs(1),
	Example: `  gix set work      # Use 'work' by default
  gix set --clear   # Remove the default`,
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setClear, "clear", false, "Clear the default profile")
}

func runSet(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	name, err := chooseDefault(cfg, args, setClear)
	if err != nil {
		return err
	}
	if name == "" && len(cfg.Profiles) == 0 && !setClear {
		out.Warning("No profiles configured. Add one with: gix profile add")
		return nil
	}

	cfg.SetDefaultProfile(name)
	if err := store.SaveGlobal(cfg); err != nil {
		return err
	}

	if name == "" {
		out.Success("Default profile cleared")
		return nil
	}
	out.Success(fmt.Sprintf("Default profile set to '%s'", name))
	return nil
}

// chooseDefault returns the new default name; "" means clear
func chooseDefault(cfg *config.GlobalConfig, args []string, clear bool) (string, error) {
	if clear {
		return "", nil
	}
	if len(args) > 0 {
		p, err := findProfile(cfg, args[0])
		if err != nil {
			return "", err
		}
		return p.ProfileName, nil
	}
	if len(cfg.Profiles) == 0 {
		return "", nil
	}
	if !ui.Interactive() {
		return "", errNoTTY
	}
	return ui.SelectDefault(cfg.Profiles, cfg.DefaultProfileName())
}
