package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/platform"
)

func sampleConfig() *GlobalConfig {
	cfg := NewGlobalConfig()
	cfg.Profiles = []Profile{
		{ProfileName: "work", Name: "Jane Doe", Email: "jane@work.com", Auth: SSH("/home/jane/.ssh/id_work")},
		{ProfileName: "personal", Name: "Jane", Email: "jane@home.org", Auth: Token("ghp_secret")},
		{ProfileName: "oss", Name: "jd", Email: "jd@oss.dev", Auth: SSH("~/.ssh/id_oss")},
	}
	cfg.InterceptedCommands = []string{"push", "commit"}
	cfg.SetDefaultProfile("personal")
	return cfg
}

func TestLoadGlobal_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	cfg, err := s.LoadGlobal()
	require.NoError(t, err)

	assert.Empty(t, cfg.Profiles)
	assert.NotNil(t, cfg.Profiles)
	assert.Equal(t, DefaultInterceptedCommands, cfg.InterceptedCommands)
	assert.Nil(t, cfg.DefaultProfile)
	assert.False(t, s.Exists())
}

func TestSaveGlobal_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "nested", ".gix"))
	want := sampleConfig()
	require.NoError(t, s.SaveGlobal(want))

	got, err := s.LoadGlobal()
	require.NoError(t, err)

	assert.Equal(t, want.Profiles, got.Profiles)
	assert.Equal(t, want.InterceptedCommands, got.InterceptedCommands)
	assert.Equal(t, "personal", got.DefaultProfileName())
	assert.Equal(t, []string{"work", "personal", "oss"}, got.ProfileNames())
}

func TestSaveGlobal_OwnerOnlyPermissions(t *testing.T) {
	if !platform.SupportsPermissions() {
		t.Skip("permission bits not supported")
	}
	t.Parallel()

	s := NewStore(t.TempDir())
	require.NoError(t, s.SaveGlobal(sampleConfig()))

	info, err := os.Stat(s.GlobalPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveGlobal_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	require.NoError(t, s.SaveGlobal(sampleConfig()))
	require.NoError(t, s.SaveGlobal(NewGlobalConfig()))

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ConfigFileName, entries[0].Name())
}

func TestSaveGlobal_WireFormat(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	cfg := NewGlobalConfig()
	cfg.Profiles = []Profile{
		{ProfileName: "work", Name: "Jane", Email: "jane@work.com", Auth: SSH("/k")},
		{ProfileName: "home", Name: "Jane", Email: "jane@home.org", Auth: Token("t0k")},
	}
	require.NoError(t, s.SaveGlobal(cfg))

	data, err := os.ReadFile(s.GlobalPath())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Nil(t, raw["default_profile"])
	assert.Contains(t, raw, "default_profile")
	profiles := raw["profiles"].([]any)
	assert.Equal(t, map[string]any{"SSH": map[string]any{"key_path": "/k"}}, profiles[0].(map[string]any)["auth"])
	assert.Equal(t, map[string]any{"Token": map[string]any{"token": "t0k"}}, profiles[1].(map[string]any)["auth"])
}

func TestLoadGlobal_Corrupt(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.GlobalPath(), []byte("{not json"), 0600))

	_, err := s.LoadGlobal()
	require.Error(t, err)
	assert.True(t, gixerr.Is(err, gixerr.ConfigUnreadable))

	// never auto-reset
	data, err := os.ReadFile(s.GlobalPath())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestLoadGlobal_RejectsAmbiguousAuth(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"both variants": `{"profiles":[{"profile_name":"a","name":"A","email":"a@b.co","auth":{"SSH":{"key_path":"/k"},"Token":{"token":"t"}}}]}`,
		"no variant":    `{"profiles":[{"profile_name":"a","name":"A","email":"a@b.co","auth":{}}]}`,
		"missing auth":  `{"profiles":[{"profile_name":"a","name":"A","email":"a@b.co"}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStore(t.TempDir())
			require.NoError(t, os.WriteFile(s.GlobalPath(), []byte(body), 0600))

			_, err := s.LoadGlobal()
			assert.True(t, gixerr.Is(err, gixerr.ConfigUnreadable), "got %v", err)
		})
	}
}

func TestLoadGlobal_EmptyInterceptedUsesDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	body := `{"profiles":[],"intercepted_commands":[],"default_profile":"ghost"}`
	require.NoError(t, os.WriteFile(s.GlobalPath(), []byte(body), 0600))

	cfg, err := s.LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, DefaultInterceptedCommands, cfg.InterceptedCommands)
	assert.Equal(t, "ghost", cfg.DefaultProfileName())
	assert.Nil(t, cfg.FindProfile("ghost"))
}

func TestLocalConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Nil(t, LoadLocal(dir))

	require.NoError(t, SaveLocal(dir, "work"))
	assert.Equal(t, "work", LoadLocal(dir).Selected())

	first, err := os.ReadFile(LocalPath(dir))
	require.NoError(t, err)

	require.NoError(t, SaveLocal(dir, "work"))
	second, err := os.ReadFile(LocalPath(dir))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, SaveLocal(dir, "personal"))
	assert.Equal(t, "personal", LoadLocal(dir).Selected())
}

func TestLoadLocal_CorruptIsSilent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, LocalDirName), 0o755))
	require.NoError(t, os.WriteFile(LocalPath(dir), []byte("garbage"), 0o644))

	assert.Nil(t, LoadLocal(dir))
	var nilLocal *LocalConfig
	assert.Equal(t, "", nilLocal.Selected())
}

func TestProfileMutations(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig()

	err := cfg.AddProfile(Profile{ProfileName: "work", Name: "x", Email: "x@y.z", Auth: Token("t")})
	assert.Error(t, err)

	require.NoError(t, cfg.AddProfile(Profile{ProfileName: "client", Name: "x", Email: "x@y.z", Auth: Token("t")}))
	assert.Equal(t, 3, cfg.ProfileIndex("client"))

	renamed := cfg.Profiles[1]
	renamed.ProfileName = "home"
	require.NoError(t, cfg.UpdateProfile("personal", renamed))
	assert.Equal(t, "home", cfg.DefaultProfileName())
	assert.Equal(t, 1, cfg.ProfileIndex("home"))

	err = cfg.UpdateProfile("missing", renamed)
	assert.True(t, gixerr.Is(err, gixerr.ProfileNotFound))

	assert.True(t, cfg.RemoveProfile("home"))
	assert.Nil(t, cfg.DefaultProfile)
	assert.False(t, cfg.RemoveProfile("home"))

	assert.Equal(t, "oss", cfg.FindProfileByEmail("jd@oss.dev").ProfileName)
	assert.Nil(t, cfg.FindProfileByEmail("JD@oss.dev"))
}

func TestAuthMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AuthSSH, SSH("/k").Kind())
	assert.Equal(t, AuthToken, Token("t").Kind())
	assert.Equal(t, AuthNone, AuthMethod{}.Kind())
	assert.NotContains(t, Token("ghp_secret").String(), "ghp_secret")
	assert.Equal(t, "/k", SSH("/k").KeyPath())
	assert.Equal(t, "", Token("t").KeyPath())

	_, err := json.Marshal(AuthMethod{})
	assert.Error(t, err)
}
