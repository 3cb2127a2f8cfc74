package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/platform"
)

func writeKey(t *testing.T, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_test")
	require.NoError(t, os.WriteFile(path, []byte("key"), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestValidate(t *testing.T) {
	t.Parallel()

	key := writeKey(t, 0o600)

	tests := []struct {
		name    string
		profile config.Profile
		kind    gixerr.Kind
	}{
		{
			name:    "valid ssh",
			profile: config.Profile{ProfileName: "work", Email: "a@b.co", Auth: config.SSH(key)},
		},
		{
			name:    "valid token",
			profile: config.Profile{ProfileName: "home", Email: "a@b.co", Auth: config.Token("t")},
		},
		{
			name:    "email without at",
			profile: config.Profile{ProfileName: "work", Email: "not-an-email", Auth: config.Token("t")},
			kind:    gixerr.ValidationFailed,
		},
		{
			name:    "email without dot",
			profile: config.Profile{ProfileName: "work", Email: "a@b", Auth: config.Token("t")},
			kind:    gixerr.ValidationFailed,
		},
		{
			name:    "empty name",
			profile: config.Profile{Email: "a@b.co", Auth: config.Token("t")},
			kind:    gixerr.ValidationFailed,
		},
		{
			name:    "slash in name",
			profile: config.Profile{ProfileName: "a/b", Email: "a@b.co", Auth: config.Token("t")},
			kind:    gixerr.ValidationFailed,
		},
		{
			name:    "backslash in name",
			profile: config.Profile{ProfileName: `a\b`, Email: "a@b.co", Auth: config.Token("t")},
			kind:    gixerr.ValidationFailed,
		},
		{
			name:    "missing key",
			profile: config.Profile{ProfileName: "work", Email: "a@b.co", Auth: config.SSH(key + ".missing")},
			kind:    gixerr.AuthKeyMissing,
		},
		{
			name:    "key is a directory",
			profile: config.Profile{ProfileName: "work", Email: "a@b.co", Auth: config.SSH(filepath.Dir(key))},
			kind:    gixerr.AuthKeyInvalid,
		},
		{
			name:    "empty token",
			profile: config.Profile{ProfileName: "work", Email: "a@b.co", Auth: config.Token("")},
			kind:    gixerr.ValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(tt.profile)
			if tt.kind == gixerr.Unknown {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, gixerr.KindOf(err))
		})
	}
}

func TestValidate_LoosePermissionsWarn(t *testing.T) {
	if !platform.SupportsPermissions() {
		t.Skip("permission bits not supported")
	}
	t.Parallel()

	key := writeKey(t, 0o644)
	warnings, err := Validate(config.Profile{ProfileName: "work", Email: "a@b.co", Auth: config.SSH(key)})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "chmod 600")
}
