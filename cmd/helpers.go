package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/git"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/profile"
	"github.com/byterings/gix/internal/ui"
)

// gitClient returns a client for the configured git binary
func gitClient() *git.Client {
	return git.New(settings.GitBinary)
}

// findProfile looks up name or returns ProfileNotFound
func findProfile(cfg *config.GlobalConfig, name string) (*config.Profile, error) {
	p := cfg.FindProfile(name)
	if p == nil {
		return nil, gixerr.New(gixerr.ProfileNotFound, "profile '%s' not found\nRun: gix profile list", name)
	}
	return p, nil
}

// pickProfile returns the named profile, or asks for one when name is empty
func pickProfile(cfg *config.GlobalConfig, name, message string) (*config.Profile, error) {
	if len(cfg.Profiles) == 0 {
		return nil, gixerr.New(gixerr.NoProfilesConfigured, "no profiles configured; run 'gix profile add' to create one")
	}
	if name != "" {
		return findProfile(cfg, name)
	}
	if !ui.Interactive() {
		return nil, errNoTTY
	}
	idx, err := ui.SelectProfile(message, cfg.Profiles)
	if err != nil {
		return nil, err
	}
	return &cfg.Profiles[idx], nil
}

// pickProfileByName is pickProfile with a plain list of profile names
func pickProfileByName(cfg *config.GlobalConfig, name, message string) (*config.Profile, error) {
	if len(cfg.Profiles) == 0 || name != "" {
		return pickProfile(cfg, name, message)
	}
	if !ui.Interactive() {
		return nil, errNoTTY
	}
	chosen, err := ui.SelectName(message, cfg.ProfileNames())
	if err != nil {
		return nil, err
	}
	return findProfile(cfg, chosen)
}

// validateProfile runs validation and prints its warnings
func validateProfile(out *ui.Printer, p config.Profile) error {
	warnings, err := profile.Validate(p)
	for _, w := range warnings {
		out.Warning(w)
	}
	return err
}

// shortenPath shortens home directory paths with ~
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if absPath != home && strings.HasPrefix(absPath, home+string(filepath.Separator)) {
		return "~" + absPath[len(home):]
	}

	return path
}

// section prints a heading underlined to its width
func section(out *ui.Printer, title string) {
	out.Println()
	out.Println(title)
	out.Println(strings.Repeat("─", len([]rune(title))))
}
