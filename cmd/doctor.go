package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/git"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/identity"
	"github.com/byterings/gix/internal/platform"
	"github.com/byterings/gix/internal/profile"
	"github.com/byterings/gix/internal/ssh"
	"github.com/byterings/gix/internal/ui"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Check gix configuration health and diagnose common issues.

Runs checks on:
- git and ssh availability
- Config file validity and permissions
- Every profile, including SSH key existence and permissions
- The profile resolved for the current directory

Examples:
  gix doctor         # Run diagnostics
  gix doctor --fix   # Auto-fix permission issues`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVarP(&doctorFix, "fix", "f", false, "Auto-fix permission issues")
}

type checkResult struct {
	passed  bool
	message string
	fix     string // Suggested fix command
}

// tally counts failures; a failure with a fix is a warning
type tally struct {
	errors   int
	warnings int
	fixed    int
}

func (t *tally) add(results []checkResult) {
	for _, r := range results {
		switch {
		case r.passed:
		case r.fix == "":
			t.errors++
		default:
			t.warnings++
		}
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := ui.NewPrinter(cmd.OutOrStdout())
	g := gitClient()

	out.Println()
	out.Println("Checking gix setup...")

	var t tally
	report := func(title string, results []checkResult) {
		section(out, title)
		for _, r := range results {
			printCheckResult(out, r)
		}
		t.add(results)
	}

	report("System", checkSystem(ctx, g))

	configResults, cfg, fixed := checkConfig(store, doctorFix)
	t.fixed += fixed
	report("Config", configResults)

	if cfg == nil {
		out.Println()
		out.Error("Cannot continue without a readable config")
		out.Info(repairHint(store.GlobalPath()))
		return nil
	}

	if len(cfg.Profiles) > 0 {
		var results []checkResult
		for _, p := range cfg.Profiles {
			r, fixed := checkProfile(p, doctorFix)
			results = append(results, r...)
			t.fixed += fixed
		}
		report("Profiles", results)
	}

	report("Current Location", checkLocation(ctx, cfg, g, workDir))

	out.Println()
	out.Println("─────────")

	if t.fixed > 0 {
		out.Success(fmt.Sprintf("Auto-fixed %d issue(s)", t.fixed))
	}

	switch {
	case t.errors == 0 && t.warnings == 0:
		out.Success("All checks passed!")
	case t.errors == 0:
		out.Warning(fmt.Sprintf("%d warning(s)", t.warnings))
	default:
		out.Error(fmt.Sprintf("%d error(s), %d warning(s)", t.errors, t.warnings))
	}

	return nil
}

func printCheckResult(out *ui.Printer, r checkResult) {
	if r.passed {
		out.Printf("  ✓ %s\n", r.message)
	} else if r.fix != "" {
		out.Printf("  ⚠ %s\n", r.message)
		out.Printf("    → %s\n", r.fix)
	} else {
		out.Printf("  ✗ %s\n", r.message)
	}
}

func checkSystem(ctx context.Context, g *git.Client) []checkResult {
	var results []checkResult

	if v, err := g.Version(ctx); err != nil {
		results = append(results, checkResult{
			message: fmt.Sprintf("git not found (%s)", g.Bin),
		})
	} else {
		results = append(results, checkResult{passed: true, message: v})
	}

	if platform.HasCommand("ssh") {
		results = append(results, checkResult{passed: true, message: "ssh available"})
	} else {
		results = append(results, checkResult{
			message: "ssh not found",
			fix:     "Install OpenSSH to use SSH profiles",
		})
	}

	return results
}

// checkConfig checks the global config and returns it when readable
func checkConfig(s *config.Store, autoFix bool) ([]checkResult, *config.GlobalConfig, int) {
	var results []checkResult
	fixed := 0

	if !s.Exists() {
		results = append(results, checkResult{
			message: fmt.Sprintf("Config file not created yet: %s", shortenPath(s.GlobalPath())),
			fix:     "Run: gix profile add",
		})
		return results, config.NewGlobalConfig(), fixed
	}

	cfg, err := s.LoadGlobal()
	if err != nil {
		results = append(results, checkResult{message: err.Error()})
		return results, nil, fixed
	}
	results = append(results, checkResult{
		passed:  true,
		message: fmt.Sprintf("Config file valid: %s", shortenPath(s.GlobalPath())),
	})

	r, f := checkPermissions("Config file", s.GlobalPath(), autoFix)
	results = append(results, r)
	fixed += f

	if len(cfg.Profiles) == 0 {
		results = append(results, checkResult{
			message: "No profiles configured",
			fix:     "Run: gix profile add",
		})
	} else {
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("%d profile(s) configured", len(cfg.Profiles)),
		})
	}

	if def := cfg.DefaultProfileName(); def != "" {
		if cfg.FindProfile(def) == nil {
			results = append(results, checkResult{
				message: fmt.Sprintf("Default profile '%s' does not exist", def),
				fix:     "Run: gix set",
			})
		} else {
			results = append(results, checkResult{
				passed:  true,
				message: fmt.Sprintf("Default profile: %s", def),
			})
		}
	}

	results = append(results, checkResult{
		passed:  true,
		message: "Intercepted commands: " + strings.Join(cfg.InterceptedCommands, ", "),
	})

	return results, cfg, fixed
}

// repairHint suggests fixing a corrupt config by hand; gix never resets it
func repairHint(path string) string {
	return fmt.Sprintf("Fix it by hand: %s %s", platform.GetEditorSuggestion(), path)
}

// checkPermissions reports whether path is owner-only, fixing it when asked
func checkPermissions(label, path string, autoFix bool) (checkResult, int) {
	ok, err := platform.CheckFilePermissions(path)
	if err != nil || ok {
		return checkResult{passed: true, message: label + " permissions OK"}, 0
	}

	if autoFix {
		if err := platform.FixFilePermissions(path); err == nil {
			return checkResult{passed: true, message: label + " permissions fixed"}, 1
		}
	}
	return checkResult{
		message: label + " is readable by other users",
		fix:     platform.GetPermissionFixCommand(path),
	}, 0
}

func checkProfile(p config.Profile, autoFix bool) ([]checkResult, int) {
	var results []checkResult
	name := p.ProfileName

	if _, err := profile.Validate(p); err != nil {
		r := checkResult{message: fmt.Sprintf("%s: %v", name, err)}
		if gixerr.Is(err, gixerr.AuthKeyMissing) {
			r.fix = fmt.Sprintf("Run: gix profile edit %s", name)
		}
		return append(results, r), 0
	}

	if p.Auth.Kind() != config.AuthSSH {
		return append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("%s: %s <%s> (token)", name, p.Name, p.Email),
		}), 0
	}

	keyPath := p.Auth.KeyPath()
	info, err := ssh.Inspect(keyPath)
	if err != nil {
		return append(results, checkResult{
			message: fmt.Sprintf("%s: %s is not a usable key: %v", name, keyPath, err),
		}), 0
	}

	desc := info.Type
	if info.Encrypted {
		desc += ", passphrase protected"
	}
	if info.Fingerprint != "" {
		desc += ", " + info.Fingerprint
	}
	results = append(results, checkResult{
		passed:  true,
		message: fmt.Sprintf("%s: %s (%s)", name, keyPath, strings.TrimPrefix(desc, ", ")),
	})

	path, err := platform.ExpandTilde(keyPath)
	if err != nil {
		return results, 0
	}
	r, fixed := checkPermissions(name+": SSH key", path, autoFix)
	return append(results, r), fixed
}

func checkLocation(ctx context.Context, cfg *config.GlobalConfig, g *git.Client, cwd string) []checkResult {
	var results []checkResult

	root, inside := identity.RepoRoot(ctx, g, cwd)
	if inside {
		results = append(results, checkResult{
			passed:  true,
			message: "Inside a git repository: " + shortenPath(root),
		})
	} else {
		results = append(results, checkResult{passed: true, message: "Not inside a git repository"})
	}

	if local := config.LoadLocal(root).Selected(); local != "" && cfg.FindProfile(local) == nil {
		results = append(results, checkResult{
			message: fmt.Sprintf("Repository is bound to unknown profile '%s'", local),
			fix:     "Run: gix use",
		})
	}

	if res := identity.Resolve(ctx, cfg, g, cwd); res != nil {
		results = append(results, checkResult{
			passed:  true,
			message: fmt.Sprintf("Resolved profile: %s %s", res.Profile.ProfileName, sourceLabel(res)),
		})
	} else if len(cfg.Profiles) > 0 {
		results = append(results, checkResult{
			message: "No profile resolves here; intercepted commands will ask",
			fix:     "Run: gix use or gix set",
		})
	}

	return results
}
