package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/platform"
)

const (
	ConfigFileName   = "config.json"
	SettingsFileName = "settings.toml"
	UsageLogFileName = "usage.log"
	LocalDirName     = ".gix" // Per-repository directory holding the local config
)

// DefaultInterceptedCommands are intercepted when the config names none
var DefaultInterceptedCommands = []string{"pull", "push", "fetch", "clone"}

// Store reads and writes the global config under a gix home directory.
// There is no locking: concurrent writers race and the last rename wins.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultStore returns the store at ~/.gix (or $GIX_HOME)
func DefaultStore() (*Store, error) {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir), nil
}

// GlobalPath returns the path to the global config file
func (s *Store) GlobalPath() string {
	return filepath.Join(s.Dir, ConfigFileName)
}

// UsageLogPath returns the default audit log path
func (s *Store) UsageLogPath() string {
	return filepath.Join(s.Dir, UsageLogFileName)
}

// SettingsPath returns the path to the optional settings file
func (s *Store) SettingsPath() string {
	return filepath.Join(s.Dir, SettingsFileName)
}

// Exists reports whether the global config file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.GlobalPath())
	return err == nil
}

// NewGlobalConfig creates an empty config with default intercepted commands
func NewGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Profiles:            []Profile{},
		InterceptedCommands: slices.Clone(DefaultInterceptedCommands),
	}
}

// LoadGlobal loads the global config. A missing file yields defaults;
// a corrupt file is reported and left untouched.
func (s *Store) LoadGlobal() (*GlobalConfig, error) {
	path := s.GlobalPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewGlobalConfig(), nil
		}
		return nil, gixerr.Wrap(gixerr.ConfigUnreadable, err, "failed to read config %s", path)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, gixerr.Wrap(gixerr.ConfigUnreadable, err, "failed to parse config %s (it may be corrupted)", path)
	}

	if cfg.Profiles == nil {
		cfg.Profiles = []Profile{}
	}
	for _, p := range cfg.Profiles {
		if p.Auth.Kind() == AuthNone {
			return nil, gixerr.New(gixerr.ConfigUnreadable, "failed to parse config %s: profile '%s' has no auth method", path, p.ProfileName)
		}
	}
	if len(cfg.InterceptedCommands) == 0 {
		cfg.InterceptedCommands = slices.Clone(DefaultInterceptedCommands)
	}

	return &cfg, nil
}

// SaveGlobal writes the global config atomically with owner-only permissions
func (s *Store) SaveGlobal(cfg *GlobalConfig) error {
	if err := platform.MkdirSecure(s.Dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := writeJSONAtomic(s.GlobalPath(), cfg, platform.SecureFileMode()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// LocalPath returns the local config path for a repository directory
func LocalPath(dir string) string {
	return filepath.Join(dir, LocalDirName, ConfigFileName)
}

// LoadLocal reads the local config for dir.
// Missing or unparsable files both yield nil.
func LoadLocal(dir string) *LocalConfig {
	data, err := os.ReadFile(LocalPath(dir))
	if err != nil {
		return nil
	}

	var local LocalConfig
	if err := json.Unmarshal(data, &local); err != nil {
		return nil
	}
	return &local
}

// SaveLocal binds profileName to the repository at dir
func SaveLocal(dir, profileName string) error {
	path := LocalPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	local := LocalConfig{SelectedProfile: &profileName}
	if err := writeJSONAtomic(path, local, 0o644); err != nil {
		return fmt.Errorf("failed to save local config: %w", err)
	}
	return nil
}

// writeJSONAtomic writes pretty JSON to a temp file in the target directory,
// then renames it over path so readers never see a partial file.
func writeJSONAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(perm); err != nil && platform.SupportsPermissions() {
		cleanup()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// IsIntercepted reports whether a git subcommand triggers profile logic
func (c *GlobalConfig) IsIntercepted(subcommand string) bool {
	return slices.Contains(c.InterceptedCommands, subcommand)
}

// FindProfile finds a profile by profile_name
func (c *GlobalConfig) FindProfile(name string) *Profile {
	if name == "" {
		return nil
	}
	for i := range c.Profiles {
		if c.Profiles[i].ProfileName == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// FindProfileByEmail finds a profile by exact email match
func (c *GlobalConfig) FindProfileByEmail(email string) *Profile {
	if email == "" {
		return nil
	}
	for i := range c.Profiles {
		if c.Profiles[i].Email == email {
			return &c.Profiles[i]
		}
	}
	return nil
}

// ProfileIndex returns the position of a profile, or -1
func (c *GlobalConfig) ProfileIndex(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.ProfileName == name })
}

// ProfileNames returns profile names in insertion order
func (c *GlobalConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.ProfileName)
	}
	return names
}

// AddProfile appends a profile, keeping profile_name unique
func (c *GlobalConfig) AddProfile(p Profile) error {
	if c.FindProfile(p.ProfileName) != nil {
		return fmt.Errorf("a profile with name '%s' already exists", p.ProfileName)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile named oldName, keeping its position.
// A rename also follows through to default_profile.
func (c *GlobalConfig) UpdateProfile(oldName string, p Profile) error {
	idx := c.ProfileIndex(oldName)
	if idx < 0 {
		return gixerr.New(gixerr.ProfileNotFound, "profile '%s' not found", oldName)
	}
	if p.ProfileName != oldName && c.FindProfile(p.ProfileName) != nil {
		return fmt.Errorf("a profile with name '%s' already exists", p.ProfileName)
	}
	c.Profiles[idx] = p
	if p.ProfileName != oldName && c.DefaultProfileName() == oldName {
		c.SetDefaultProfile(p.ProfileName)
	}
	return nil
}

// RemoveProfile deletes a profile and clears a matching default
func (c *GlobalConfig) RemoveProfile(name string) bool {
	idx := c.ProfileIndex(name)
	if idx < 0 {
		return false
	}
	c.Profiles = slices.Delete(c.Profiles, idx, idx+1)
	if c.DefaultProfileName() == name {
		c.DefaultProfile = nil
	}
	return true
}

// DefaultProfileName returns the default profile reference, or ""
func (c *GlobalConfig) DefaultProfileName() string {
	if c.DefaultProfile == nil {
		return ""
	}
	return *c.DefaultProfile
}

// SetDefaultProfile sets the default reference; "" clears it
func (c *GlobalConfig) SetDefaultProfile(name string) {
	if name == "" {
		c.DefaultProfile = nil
		return
	}
	c.DefaultProfile = &name
}
