package identity

import (
	"context"
	"path/filepath"

	"github.com/byterings/gix/internal/config"
)

// Source indicates how the profile was resolved
type Source string

const (
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
	SourceEmail   Source = "email"
)

// Repo answers the repository questions the resolver needs
type Repo interface {
	IsInsideWorkTree(ctx context.Context, dir string) bool
	TopLevel(ctx context.Context, dir string) (string, error)
	LocalEmail(ctx context.Context, dir string) (string, error)
}

// Resolution contains the resolved profile and its source
type Resolution struct {
	Profile *config.Profile
	Source  Source
	Path    string // Repository root that matched (empty for default)
}

// RepoRoot returns the work tree root containing cwd and whether cwd is in one.
// Outside a work tree it returns cwd itself.
func RepoRoot(ctx context.Context, repo Repo, cwd string) (string, bool) {
	if !repo.IsInsideWorkTree(ctx, cwd) {
		return cwd, false
	}
	root, err := repo.TopLevel(ctx, cwd)
	if err != nil || root == "" {
		return cwd, true
	}
	return filepath.Clean(root), true
}

// Resolve returns the active profile for cwd, or nil.
// Priority: 1. Local config at the repository root 2. Global default
// 3. Repository user.email matching a profile email exactly.
// References to unknown profiles fall through silently.
func Resolve(ctx context.Context, cfg *config.GlobalConfig, repo Repo, cwd string) *Resolution {
	root, inside := RepoRoot(ctx, repo, cwd)

	// 1. Local config
	if name := config.LoadLocal(root).Selected(); name != "" {
		if p := cfg.FindProfile(name); p != nil {
			return &Resolution{Profile: p, Source: SourceLocal, Path: root}
		}
	}

	// 2. Global default
	if p := cfg.FindProfile(cfg.DefaultProfileName()); p != nil {
		return &Resolution{Profile: p, Source: SourceDefault}
	}

	// 3. Repository email
	if inside {
		email, err := repo.LocalEmail(ctx, cwd)
		if err == nil {
			if p := cfg.FindProfileByEmail(email); p != nil {
				return &Resolution{Profile: p, Source: SourceEmail, Path: root}
			}
		}
	}

	return nil
}
