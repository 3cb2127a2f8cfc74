package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/git"
	"github.com/byterings/gix/internal/identity"
	"github.com/byterings/gix/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which profile applies here",
	Long: `Display the profile gix would use in the current directory and why:
- Current location and repository
- Effective profile and its source (local binding, default, or email match)
- The repository's own git identity settings
- Intercepted commands`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	g := gitClient()
	root, inside := identity.RepoRoot(ctx, g, workDir)
	res := identity.Resolve(ctx, cfg, g, workDir)

	printLocation(out, root, inside)
	printEffective(out, cfg, res)
	if inside {
		printRepoIdentity(ctx, out, g, root)
	}

	section(out, "Intercepted Commands")
	for _, c := range cfg.InterceptedCommands {
		out.Printf("  %s\n", c)
	}
	return nil
}

func printLocation(out *ui.Printer, root string, inside bool) {
	section(out, "Current Location")
	out.Printf("  Path: %s\n", shortenPath(root))
	if !inside {
		out.Println("  Not inside a git repository")
	}
}

func printEffective(out *ui.Printer, cfg *config.GlobalConfig, res *identity.Resolution) {
	section(out, "Effective Profile")

	if res == nil {
		out.Println("  None resolved; intercepted commands will ask")
		if len(cfg.Profiles) == 0 {
			out.Println("  Run 'gix profile add' to create a profile")
		} else {
			out.Println("  Run 'gix use <profile>' or 'gix set <profile>' to choose one")
		}
		return
	}

	p := res.Profile
	out.Printf("  Using:  %s %s\n", ui.Bold(p.ProfileName), sourceLabel(res))
	out.Printf("  Name:   %s\n", p.Name)
	out.Printf("  Email:  %s\n", p.Email)
	auth := p.Auth.String()
	if p.Auth.Kind() == config.AuthSSH {
		auth += " " + ui.KeyStatus(p.Auth.KeyPath())
	}
	out.Printf("  Auth:   %s\n", auth)

	if def := cfg.DefaultProfileName(); def != "" && def != p.ProfileName {
		out.Println()
		out.Info(fmt.Sprintf("The global default '%s' is overridden here.", def))
	}
}

func sourceLabel(res *identity.Resolution) string {
	switch res.Source {
	case identity.SourceLocal:
		return "(bound repo)"
	case identity.SourceDefault:
		return "(global default)"
	case identity.SourceEmail:
		return "(matched user.email)"
	}
	return ""
}

func printRepoIdentity(ctx context.Context, out *ui.Printer, g *git.Client, root string) {
	section(out, "Repository Git Config")
	for _, key := range []string{git.KeyUserName, git.KeyUserEmail, git.KeySSHCommand} {
		value, err := g.LocalConfig(ctx, root, key)
		if err != nil || value == "" {
			value = "(not set)"
		}
		out.Printf("  %-16s %s\n", key+":", value)
	}
}
