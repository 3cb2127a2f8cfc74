package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/ui"
	"github.com/byterings/gix/internal/version"
)

var updateForce bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer gix release",
	Long: `Check GitHub for the latest gix release and print how to upgrade.

gix never replaces its own binary; the printed commands do that.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Show upgrade instructions even when up to date")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriterFile(os.Stderr),
		spinner.WithSuffix(" Checking for updates..."))
	// Verbose output would interleave with the spinner
	if !log.FromContext(cmd.Context()).Verbose() {
		s.Start()
	}
	res, err := version.NewChecker().Check(cmd.Context(), version.Version)
	s.Stop()

	if err != nil {
		out.Warning(fmt.Sprintf("Could not check for updates: %v", err))
		out.Printf("\nYou can check manually at: %s/releases\n", version.RepoURL)
		return nil
	}

	out.Printf("  Current version: %s\n", ui.Bold(res.Current))
	out.Printf("  Latest version:  %s\n", ui.Bold(res.Latest))
	out.Println()

	switch {
	case res.UpdateAvailable:
		out.Info("New version available!")
	case updateForce:
		out.Success("Already on the latest version (showing instructions anyway)")
	default:
		out.Success("You are running the latest version!")
		return nil
	}

	out.Println("\nTo update, run one of the following:")
	out.Println()
	out.Println("  # Using go install:")
	out.Printf("  go install %s@latest\n", "github.com/byterings/gix")
	out.Println()
	out.Println("  # Or download a binary from:")
	url := res.URL
	if url == "" {
		url = version.RepoURL + "/releases/latest"
	}
	out.Printf("  %s\n", url)
	return nil
}
