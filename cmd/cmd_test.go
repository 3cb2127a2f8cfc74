package cmd

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/platform"
	"github.com/byterings/gix/internal/ui"
)

// setupEnv points the shared command state at temp directories
func setupEnv(t *testing.T, cfg *config.GlobalConfig) string {
	t.Helper()

	oldStore, oldSettings, oldDir := store, settings, workDir
	t.Cleanup(func() { store, settings, workDir = oldStore, oldSettings, oldDir })

	store = config.NewStore(t.TempDir())
	settings = &config.Settings{GitBinary: "git"}
	workDir = t.TempDir()

	if cfg != nil {
		require.NoError(t, store.SaveGlobal(cfg))
	}
	return workDir
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetContext(context.Background())
	return c, &buf
}

func writeKey(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_test")
	require.NoError(t, os.WriteFile(path, []byte("key"), 0o600))
	return path
}

func testConfig(keyPath string) *config.GlobalConfig {
	cfg := config.NewGlobalConfig()
	cfg.Profiles = []config.Profile{
		{ProfileName: "work", Name: "Jane Doe", Email: "jane@work.com", Auth: config.SSH(keyPath)},
		{ProfileName: "home", Name: "Jane", Email: "jane@home.org", Auth: config.Token("t0k")},
	}
	return cfg
}

func loadConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg, err := store.LoadGlobal()
	require.NoError(t, err)
	return cfg
}

func TestRouteArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"empty", nil, nil},
		{"git command", []string{"push", "origin"}, []string{"--", "push", "origin"}},
		{"git flag before gix name", []string{"-C", "repo", "status"}, []string{"--", "-C", "repo", "status"}},
		{"gix command", []string{"status"}, []string{"status"}},
		{"gix alias", []string{"profiles", "list"}, []string{"profiles", "list"}},
		{"subcommand alias is git", []string{"ls"}, []string{"--", "ls"}},
		{"forced pass-through", []string{"--", "status"}, []string{"--", "status"}},
		{"help flag", []string{"-h"}, []string{"-h"}},
		{"help command", []string{"help", "use"}, []string{"help", "use"}},
		{"version flag", []string{"--version"}, []string{"--version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeArgs(tt.args))
		})
	}
}

func TestRunGit_VersionAndHelp(t *testing.T) {
	c, buf := newTestCmd()
	require.NoError(t, runGit(c, []string{"--version"}))
	assert.Equal(t, versionString()+"\n", buf.String())

	c, buf = newTestCmd()
	c.Use = "gix"
	c.Long = "help text"
	require.NoError(t, runGit(c, nil))
	assert.Contains(t, buf.String(), "help text")
}

func TestFail(t *testing.T) {
	assert.Equal(t, 3, fail(gixerr.Delegate(3)))
	assert.Equal(t, gixerr.ExitInternal, fail(gixerr.New(gixerr.ProfileNotFound, "profile 'x' not found")))
}

func TestSet(t *testing.T) {
	setupEnv(t, testConfig(writeKey(t)))

	c, buf := newTestCmd()
	require.NoError(t, runSet(c, []string{"home"}))
	assert.Equal(t, "home", loadConfig(t).DefaultProfileName())
	assert.Contains(t, buf.String(), "Default profile set to 'home'")

	c, _ = newTestCmd()
	err := runSet(c, []string{"ghost"})
	assert.True(t, gixerr.Is(err, gixerr.ProfileNotFound), "got %v", err)
	assert.Equal(t, "home", loadConfig(t).DefaultProfileName())

	setClear = true
	t.Cleanup(func() { setClear = false })
	c, buf = newTestCmd()
	require.NoError(t, runSet(c, nil))
	assert.Equal(t, "", loadConfig(t).DefaultProfileName())
	assert.Contains(t, buf.String(), "cleared")
}

func TestSet_NoProfiles(t *testing.T) {
	setupEnv(t, nil)

	c, buf := newTestCmd()
	require.NoError(t, runSet(c, nil))
	assert.Contains(t, buf.String(), "No profiles configured")
	assert.False(t, store.Exists())
}

func TestCommands(t *testing.T) {
	setupEnv(t, testConfig(writeKey(t)))

	c, _ := newTestCmd()
	require.NoError(t, runCommands(c, []string{"push", " commit ", "push", ""}))
	assert.Equal(t, []string{"push", "commit"}, loadConfig(t).InterceptedCommands)

	commandsReset = true
	t.Cleanup(func() { commandsReset = false })
	c, _ = newTestCmd()
	require.NoError(t, runCommands(c, nil))
	assert.Equal(t, config.DefaultInterceptedCommands, loadConfig(t).InterceptedCommands)
}

func TestCommands_RejectsEmpty(t *testing.T) {
	setupEnv(t, nil)

	c, _ := newTestCmd()
	assert.Error(t, runCommands(c, []string{" "}))
}

func TestUse_NotInRepository(t *testing.T) {
	setupEnv(t, testConfig(writeKey(t)))

	c, _ := newTestCmd()
	err := runUse(c, []string{"work"})
	assert.True(t, gixerr.Is(err, gixerr.NotInRepository), "got %v", err)
}

func TestUse_BindsRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	keyPath := writeKey(t)
	dir := setupEnv(t, testConfig(keyPath))
	require.NoError(t, exec.Command("git", "init", "-q", dir).Run())

	c, _ := newTestCmd()
	err := runUse(c, []string{"ghost"})
	assert.True(t, gixerr.Is(err, gixerr.ProfileNotFound), "got %v", err)

	c, buf := newTestCmd()
	require.NoError(t, runUse(c, []string{"work"}))
	assert.Contains(t, buf.String(), "now uses profile 'work'")
	assert.Equal(t, "work", config.LoadLocal(dir).Selected())

	email, err := gitClient().LocalEmail(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "jane@work.com", email)
}

func TestProfileAdd_WithFlags(t *testing.T) {
	keyPath := writeKey(t)
	setupEnv(t, nil)

	addFlags = profileFlags{user: "Jane Doe", email: "jane@oss.dev", sshKey: keyPath}
	t.Cleanup(func() { addFlags = profileFlags{} })

	c, buf := newTestCmd()
	require.NoError(t, runProfileAdd(c, []string{"oss"}))
	assert.Contains(t, buf.String(), "Profile 'oss' added")

	cfg := loadConfig(t)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, config.Profile{ProfileName: "oss", Name: "Jane Doe", Email: "jane@oss.dev", Auth: config.SSH(keyPath)}, cfg.Profiles[0])

	c, _ = newTestCmd()
	assert.Error(t, runProfileAdd(c, []string{"oss"}))
}

func TestProfileAdd_RejectsInvalid(t *testing.T) {
	setupEnv(t, nil)

	addFlags = profileFlags{user: "Jane", email: "not-an-email", sshKey: writeKey(t)}
	t.Cleanup(func() { addFlags = profileFlags{} })

	c, _ := newTestCmd()
	require.Error(t, runProfileAdd(c, []string{"oss"}))
	assert.False(t, store.Exists())

	addFlags = profileFlags{user: "Jane", email: "jane@oss.dev", sshKey: filepath.Join(t.TempDir(), "missing")}
	c, _ = newTestCmd()
	err := runProfileAdd(c, []string{"oss"})
	assert.True(t, gixerr.Is(err, gixerr.AuthKeyMissing), "got %v", err)
}

func TestProfileAdd_MissingFieldsWithoutTerminal(t *testing.T) {
	if ui.Interactive() {
		t.Skip("stdin is a terminal")
	}
	setupEnv(t, nil)

	addFlags = profileFlags{user: "Jane"}
	t.Cleanup(func() { addFlags = profileFlags{} })

	c, _ := newTestCmd()
	assert.Error(t, runProfileAdd(c, []string{"oss"}))
}

func TestProfileEdit_WithFlags(t *testing.T) {
	cfg := testConfig(writeKey(t))
	cfg.SetDefaultProfile("work")
	setupEnv(t, cfg)

	editFlags = profileFlags{email: "jane@new-work.com"}
	t.Cleanup(func() { editFlags = profileFlags{} })

	c, _ := newTestCmd()
	require.NoError(t, runProfileEdit(c, []string{"work"}))

	got := loadConfig(t)
	assert.Equal(t, "jane@new-work.com", got.FindProfile("work").Email)
	assert.Equal(t, "Jane Doe", got.FindProfile("work").Name)
	assert.Equal(t, []string{"work", "home"}, got.ProfileNames())

	c, _ = newTestCmd()
	err := runProfileEdit(c, []string{"ghost"})
	assert.True(t, gixerr.Is(err, gixerr.ProfileNotFound), "got %v", err)
}

func TestProfileDelete(t *testing.T) {
	cfg := testConfig(writeKey(t))
	cfg.SetDefaultProfile("work")
	setupEnv(t, cfg)

	deleteForce = true
	t.Cleanup(func() { deleteForce = false })

	c, buf := newTestCmd()
	require.NoError(t, runProfileDelete(c, []string{"work"}))
	assert.Contains(t, buf.String(), "no default is set")

	got := loadConfig(t)
	assert.Equal(t, []string{"home"}, got.ProfileNames())
	assert.Nil(t, got.DefaultProfile)
}

func TestProfileEditDelete_SelectNeedsTerminal(t *testing.T) {
	setupEnv(t, testConfig(writeKey(t)))

	c, _ := newTestCmd()
	assert.ErrorIs(t, runProfileEdit(c, nil), errNoTTY)
	assert.ErrorIs(t, runProfileDelete(c, nil), errNoTTY)
}

func TestPickProfileByName(t *testing.T) {
	cfg := testConfig(writeKey(t))

	p, err := pickProfileByName(cfg, "home", "Select:")
	require.NoError(t, err)
	assert.Equal(t, "home", p.ProfileName)

	_, err = pickProfileByName(cfg, "ghost", "Select:")
	assert.True(t, gixerr.Is(err, gixerr.ProfileNotFound), "got %v", err)

	_, err = pickProfileByName(config.NewGlobalConfig(), "", "Select:")
	assert.True(t, gixerr.Is(err, gixerr.NoProfilesConfigured), "got %v", err)
}

func TestProfileDelete_NoProfiles(t *testing.T) {
	setupEnv(t, nil)

	c, _ := newTestCmd()
	err := runProfileDelete(c, []string{"work"})
	assert.True(t, gixerr.Is(err, gixerr.NoProfilesConfigured), "got %v", err)
}

func TestProfileList(t *testing.T) {
	cfg := testConfig(writeKey(t))
	cfg.SetDefaultProfile("home")
	setupEnv(t, cfg)

	c, buf := newTestCmd()
	require.NoError(t, runProfileList(c, nil))
	out := buf.String()
	assert.Contains(t, out, "jane@work.com")
	assert.Contains(t, out, "→ 2.")
	assert.NotContains(t, out, "t0k")
}

func TestStatus(t *testing.T) {
	cfg := testConfig(writeKey(t))
	cfg.SetDefaultProfile("home")
	setupEnv(t, cfg)

	c, buf := newTestCmd()
	require.NoError(t, runStatus(c, nil))
	out := buf.String()
	assert.Contains(t, out, "(global default)")
	assert.Contains(t, out, "jane@home.org")
	assert.NotContains(t, out, "t0k")
}

func TestCheckProfile(t *testing.T) {
	token := config.Profile{ProfileName: "home", Name: "Jane", Email: "jane@home.org", Auth: config.Token("t0k")}
	results, fixed := checkProfile(token, false)
	require.Len(t, results, 1)
	assert.True(t, results[0].passed)
	assert.NotContains(t, results[0].message, "t0k")
	assert.Equal(t, 0, fixed)

	missing := config.Profile{ProfileName: "work", Name: "Jane", Email: "jane@work.com", Auth: config.SSH(filepath.Join(t.TempDir(), "nope"))}
	results, _ = checkProfile(missing, false)
	require.Len(t, results, 1)
	assert.False(t, results[0].passed)
	assert.Equal(t, "Run: gix profile edit work", results[0].fix)

	garbage := config.Profile{ProfileName: "work", Name: "Jane", Email: "jane@work.com", Auth: config.SSH(writeKey(t))}
	results, _ = checkProfile(garbage, false)
	require.Len(t, results, 1)
	assert.False(t, results[0].passed)
	assert.Contains(t, results[0].message, "not a usable key")
}

func TestCheckConfig(t *testing.T) {
	s := config.NewStore(t.TempDir())

	results, cfg, _ := checkConfig(s, false)
	require.NotNil(t, cfg)
	assert.Equal(t, "Run: gix profile add", results[0].fix)

	require.NoError(t, os.WriteFile(s.GlobalPath(), []byte("{"), 0o600))
	results, cfg, _ = checkConfig(s, false)
	assert.Nil(t, cfg)
	require.Len(t, results, 1)
	assert.False(t, results[0].passed)
	assert.Contains(t, repairHint(s.GlobalPath()), platform.GetEditorSuggestion()+" "+s.GlobalPath())

	dangling := config.NewGlobalConfig()
	dangling.SetDefaultProfile("ghost")
	require.NoError(t, s.SaveGlobal(dangling))
	results, cfg, _ = checkConfig(s, false)
	require.NotNil(t, cfg)
	var messages []string
	for _, r := range results {
		messages = append(messages, r.message)
	}
	assert.Contains(t, strings.Join(messages, "\n"), "Default profile 'ghost' does not exist")
}

func TestCheckPermissions_Fix(t *testing.T) {
	if !platform.SupportsPermissions() {
		t.Skip("permission bits not supported")
	}
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.Chmod(path, 0o644))

	r, fixed := checkPermissions("Config file", path, false)
	assert.False(t, r.passed)
	assert.Equal(t, 0, fixed)

	r, fixed = checkPermissions("Config file", path, true)
	assert.True(t, r.passed)
	assert.Equal(t, 1, fixed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTally(t *testing.T) {
	var tl tally
	tl.add([]checkResult{{passed: true}, {message: "bad"}, {message: "meh", fix: "do it"}})
	assert.Equal(t, 1, tl.errors)
	assert.Equal(t, 1, tl.warnings)
}

func TestShortenPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, "~"+string(filepath.Separator)+"code", shortenPath(filepath.Join(home, "code")))
	assert.Equal(t, home, shortenPath(home))
}
