package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/ui"
	"github.com/byterings/gix/internal/version"
)

var (
	// Shared state injected into commands
	store    *config.Store
	settings *config.Settings
	workDir  string
)

var rootCmd = &cobra.Command{
	Use:   "gix [git args...]",
	Short: "Run git with the right identity for every repository",
	Long: `gix wraps git and picks the user identity for each command.

Any arguments that are not a gix command are passed to git. For the
intercepted commands (pull, push, fetch and clone by default) gix resolves
a profile, injects its name, email and credentials, and runs git with them.

Resolution order:
  1. The profile bound to the repository (.gix/config.json)
  2. The global default profile
  3. A profile whose email matches the repository's user.email
  4. Ask interactively`,
	Example: `  gix profile add           # Create your first profile
  gix set work              # Make 'work' the default
  gix push origin main      # Push as the resolved profile
  gix -- status             # Force pass-through for a name gix also uses`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE:               runGit,
}

// Execute routes the command line and exits with the mapped status
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	var err error
	store, err = config.DefaultStore()
	if err != nil {
		return fail(err)
	}
	settings, err = store.LoadSettings()
	if err != nil {
		return fail(err)
	}
	ui.SetNoColor(settings.NoColor || os.Getenv("NO_COLOR") != "")

	workDir, err = os.Getwd()
	if err != nil {
		return fail(fmt.Errorf("failed to get working directory: %w", err))
	}

	ctx = log.WithLogger(ctx, log.New(os.Stderr, settings.Verbose))

	rootCmd.SetArgs(routeArgs(args))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fail(err)
	}
	return 0
}

// fail prints err unless git already reported it, and returns the exit code
func fail(err error) int {
	if !gixerr.Is(err, gixerr.DelegateFailed) {
		ui.Error(err.Error())
	}
	return gixerr.ExitCode(err)
}

// routeArgs sends anything that is not a gix command to the root, where it
// is treated as a git command line. Cobra would otherwise look past git
// flags such as "-C dir" and pick up a gix command name.
func routeArgs(args []string) []string {
	if len(args) == 0 || isOwnArg(args[0]) {
		return args
	}
	return append([]string{"--"}, args...)
}

func isOwnArg(arg string) bool {
	switch arg {
	case "--", "-h", "--help", "--version", "help":
		return true
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == arg || slices.Contains(c.Aliases, arg) {
			return true
		}
	}
	return false
}

func runGit(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	} else if len(args) > 0 {
		switch args[0] {
		case "-h", "--help":
			return cmd.Help()
		case "--version":
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		}
	}

	if len(args) == 0 {
		return cmd.Help()
	}
	return runIntercepted(cmd.Context(), args)
}

// catchInterrupts keeps gix alive while the delegated git handles Ctrl-C,
// so git's own exit status is what gets reported.
func catchInterrupts() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return func() { signal.Stop(ch) }
}

func versionString() string {
	return "gix " + version.Version
}

// errNoTTY is returned by flows that need a terminal to ask questions
var errNoTTY = errors.New("this command is interactive; run it from a terminal")
