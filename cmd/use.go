package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/identity"
	"github.com/byterings/gix/internal/intercept"
	"github.com/byterings/gix/internal/ui"
)

var useCmd = &cobra.Command{
	Use:   "use [profile]",
	Short: "Bind a profile to the current repository",
	Long: `Bind a profile to the repository containing the current directory.

The choice is stored in .gix/config.json at the repository root and the
profile's name, email and SSH command are written to the repository's
git config, so plain git uses them too.`,
	Args: cobra.MaximumNArgs(1),
	Example: `  gix use work    # Bind 'work' to this repository
  gix use         # Pick from a list`,
	RunE: runUse,
}

func init() {
	rootCmd.AddCommand(useCmd)
}

func runUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	g := gitClient()
	root, inside := identity.RepoRoot(ctx, g, workDir)
	if !inside {
		return gixerr.New(gixerr.NotInRepository, "not inside a git repository")
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	p, err := pickProfile(cfg, name, "Select profile for this repository:")
	if err != nil {
		return err
	}

	if err := intercept.Bind(ctx, g, root, p); err != nil {
		return fmt.Errorf("failed to configure repository: %w", err)
	}

	out.Success(fmt.Sprintf("Repository '%s' now uses profile '%s'", shortenPath(root), p.ProfileName))
	out.Printf("  %s <%s>\n", p.Name, p.Email)
	return nil
}
