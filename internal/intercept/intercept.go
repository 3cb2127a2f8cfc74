// Package intercept decides whether a git invocation needs an identity,
// obtains one, and delegates to git with that identity injected.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/byterings/gix/internal/audit"
	"github.com/byterings/gix/internal/auth"
	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/git"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/identity"
	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/ui"
)

// BindQuestion is asked after an interactive selection inside a work tree
const BindQuestion = "Configure this repository to always use this profile?"

// State is a step of an intercepted invocation
type State int

const (
	PassThrough State = iota
	ResolvedProfile
	NeedsSelection
	Bound
	Delegated
	Failed
)

func (s State) String() string {
	switch s {
	case PassThrough:
		return "pass-through"
	case ResolvedProfile:
		return "resolved"
	case NeedsSelection:
		return "needs-selection"
	case Bound:
		return "bound"
	case Delegated:
		return "delegated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Git is everything the interceptor asks of the git client
type Git interface {
	identity.Repo
	auth.Git
	Run(ctx context.Context, inv git.Invocation) (int, error)
}

// Prompter asks the user the interceptor's questions
type Prompter interface {
	SelectProfile(profiles []config.Profile) (int, error)
	Confirm(message string, def bool) (bool, error)
}

// Outcome records what an invocation did
type Outcome struct {
	States    []State
	Profile   *config.Profile
	Source    identity.Source // Empty when the profile was selected interactively
	ExitCode  int
	ClonedDir string
}

// Final returns the last state reached
func (o *Outcome) Final() State {
	if len(o.States) == 0 {
		return PassThrough
	}
	return o.States[len(o.States)-1]
}

func (o *Outcome) enter(s State) {
	o.States = append(o.States, s)
}

// Interceptor runs one git invocation
type Interceptor struct {
	Git      Git
	Prompter Prompter
	Audit    *audit.Logger
	Out      *ui.Printer // Notices; kept off git's stdout
	Cwd      string

	// Child stdio; nil inherits the parent's
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	isDir func(string) bool
}

// Run intercepts or passes through args. A non-zero git exit is returned
// as a DelegateFailed error carrying git's exit code.
func (ic *Interceptor) Run(ctx context.Context, cfg *config.GlobalConfig, args []string) (*Outcome, error) {
	out := &Outcome{}

	i, dir := SplitGlobalOptions(args, ic.Cwd)
	if i == len(args) || !cfg.IsIntercepted(args[i]) {
		out.enter(PassThrough)
		return out, ic.delegate(ctx, out, args, nil)
	}
	sub := args[i:]

	p, err := ic.obtainProfile(ctx, cfg, sub, dir, out)
	if err != nil {
		out.enter(Failed)
		return out, err
	}
	out.Profile = p

	if err := ic.Audit.Record(p.ProfileName, args, dir); err != nil {
		ic.out().Warning(fmt.Sprintf("Failed to write usage log: %v", err))
	}

	isClone := sub[0] == "clone"
	remoteURL := ""
	if isClone {
		remoteURL = CloneURL(sub[1:])
	}
	env, err := auth.Prepare(ctx, ic.Git, dir, remoteURL, p)
	if err != nil {
		out.enter(Failed)
		return out, err
	}

	full := append([]string{
		"-c", git.KeyUserName + "=" + p.Name,
		"-c", git.KeyUserEmail + "=" + p.Email,
	}, args...)
	if err := ic.delegate(ctx, out, full, env); err != nil {
		return out, err
	}

	if isClone {
		ic.bindClone(ctx, out, sub, dir, p)
	}
	return out, nil
}

// globalOptsWithValue are git options that consume the next argument
var globalOptsWithValue = map[string]bool{
	"-C":             true,
	"-c":             true,
	"--git-dir":      true,
	"--work-tree":    true,
	"--namespace":    true,
	"--config-env":   true,
	"--super-prefix": true,
}

// SplitGlobalOptions returns the index of the git subcommand in args,
// or len(args) when there is none, and the directory git will run it in
// after applying any -C options.
func SplitGlobalOptions(args []string, cwd string) (int, string) {
	dir := cwd
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			return i, dir
		}
		if !globalOptsWithValue[a] {
			continue
		}
		if i+1 == len(args) {
			break
		}
		i++
		// git ignores an empty -C
		if a == "-C" && args[i] != "" {
			if filepath.IsAbs(args[i]) {
				dir = filepath.Clean(args[i])
			} else {
				dir = filepath.Join(dir, args[i])
			}
		}
	}
	return len(args), dir
}

// obtainProfile resolves a profile or falls back to interactive selection
func (ic *Interceptor) obtainProfile(ctx context.Context, cfg *config.GlobalConfig, args []string, dir string, out *Outcome) (*config.Profile, error) {
	if res := identity.Resolve(ctx, cfg, ic.Git, dir); res != nil {
		out.enter(ResolvedProfile)
		out.Source = res.Source
		p := res.Profile
		ic.out().Info(fmt.Sprintf("Using profile: %s (%s)", p.ProfileName, p.Email))
		ic.warnMissingKey(p)
		return p, nil
	}

	out.enter(NeedsSelection)
	if len(cfg.Profiles) == 0 {
		return nil, gixerr.New(gixerr.NoProfilesConfigured, "no profiles configured; run 'gix profile add' to create one")
	}

	isClone := args[0] == "clone"
	if isClone {
		ic.out().Info("Cloning a new repository: no profile can be bound to it until the clone exists")
	} else {
		ic.out().Warning("No profile detected for this repository")
	}

	idx, err := ic.Prompter.SelectProfile(cfg.Profiles)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(cfg.Profiles) {
		return nil, gixerr.New(gixerr.Cancelled, "no profile selected")
	}
	p := &cfg.Profiles[idx]
	ic.warnMissingKey(p)

	if isClone {
		return p, nil
	}

	root, inside := identity.RepoRoot(ctx, ic.Git, dir)
	if !inside {
		return p, nil
	}

	bind, err := ic.Prompter.Confirm(BindQuestion, true)
	if err != nil {
		return nil, err
	}
	if bind {
		if err := Bind(ctx, ic.Git, root, p); err != nil {
			ic.out().Warning(fmt.Sprintf("Failed to configure repository: %v", err))
		} else {
			out.enter(Bound)
			ic.out().Success("Repository configured! Future commands will use this profile.")
		}
	}
	return p, nil
}

// delegate runs git and maps a non-zero exit to DelegateFailed
func (ic *Interceptor) delegate(ctx context.Context, out *Outcome, args, env []string) error {
	code, err := ic.Git.Run(ctx, git.Invocation{
		Args:   args,
		Dir:    ic.Cwd,
		Env:    env,
		Stdin:  ic.Stdin,
		Stdout: ic.Stdout,
		Stderr: ic.Stderr,
	})
	if err != nil {
		out.enter(Failed)
		return err
	}
	out.ExitCode = code
	if out.Final() != PassThrough {
		out.enter(Delegated)
	}
	if code != 0 {
		return gixerr.Delegate(code)
	}
	return nil
}

// bindClone binds the freshly cloned working copy; failures are warnings
func (ic *Interceptor) bindClone(ctx context.Context, out *Outcome, args []string, cwd string, p *config.Profile) {
	isDir := ic.isDir
	if isDir == nil {
		isDir = dirExists
	}

	dir, ok := CloneDir(args, cwd, isDir)
	if !ok {
		log.FromContext(ctx).Debugf("clone directory not found, skipping binding")
		return
	}

	ic.out().Info("Configuring new repository...")
	if err := Bind(ctx, ic.Git, dir, p); err != nil {
		ic.out().Warning(fmt.Sprintf("Failed to configure %s: %v", dir, err))
		return
	}
	out.ClonedDir = dir
	out.enter(Bound)
	ic.out().Success(fmt.Sprintf("Repository '%s' configured with profile '%s'", dir, p.ProfileName))
}

func (ic *Interceptor) warnMissingKey(p *config.Profile) {
	if p.Auth.Kind() != config.AuthSSH {
		return
	}
	if _, err := os.Stat(expand(p.Auth.KeyPath())); errors.Is(err, os.ErrNotExist) {
		ic.out().Warning(fmt.Sprintf("SSH key not found at: %s", p.Auth.KeyPath()))
	}
}

// Bind persists p as dir's profile and applies it to dir's git settings
func Bind(ctx context.Context, g auth.Git, dir string, p *config.Profile) error {
	if err := config.SaveLocal(dir, p.ProfileName); err != nil {
		return err
	}
	return auth.ApplyToRepo(ctx, g, dir, p)
}

func (ic *Interceptor) out() *ui.Printer {
	if ic.Out == nil {
		return ui.NewPrinter(io.Discard)
	}
	return ic.Out
}
