package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/byterings/gix/internal/platform"
)

// EnvPrefix prefixes environment overrides, e.g. GIX_GIT_BINARY
const EnvPrefix = "GIX_"

// Settings are runtime knobs that gix reads but never writes.
// Priority: GIX_* environment > settings.toml > defaults.
type Settings struct {
	GitBinary string `koanf:"git_binary"`
	AuditLog  string `koanf:"audit_log"` // Empty disables the usage log
	Verbose   bool   `koanf:"verbose"`
	NoColor   bool   `koanf:"no_color"`
}

// LoadSettings layers defaults, the store's settings.toml and the environment
func (s *Store) LoadSettings() (*Settings, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"git_binary": "git",
		"audit_log":  s.UsageLogPath(),
		"verbose":    false,
		"no_color":   false,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	path := s.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), tomlParser{}); err != nil {
			return nil, fmt.Errorf("failed to load settings %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment settings: %w", err)
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if settings.GitBinary == "" {
		settings.GitBinary = "git"
	}
	if settings.AuditLog != "" {
		expanded, err := platform.ExpandTilde(settings.AuditLog)
		if err != nil {
			return nil, err
		}
		settings.AuditLog = expanded
	}

	return &settings, nil
}

// envKey maps GIX_GIT_BINARY to git_binary
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// tomlParser adapts BurntSushi/toml to koanf's Parser interface
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
