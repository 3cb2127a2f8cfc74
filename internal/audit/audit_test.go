package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".gix", "usage.log")
	at := time.Date(2026, 3, 1, 9, 5, 7, 0, time.Local)
	l := &Logger{Path: path, Now: func() time.Time { return at }}

	require.NoError(t, l.Record("work", []string{"push", "origin", "main"}, "/src/app"))
	require.NoError(t, l.Record("home", []string{"pull"}, "/src/other"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"[2026-03-01 09:05:07] Profile: work | Cmd: git push origin main | Dir: /src/app",
		"[2026-03-01 09:05:07] Profile: home | Cmd: git pull | Dir: /src/other",
	}, lines)
}

func TestRecord_Disabled(t *testing.T) {
	t.Parallel()

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Record("work", []string{"push"}, "/"))
	assert.NoError(t, New("").Record("work", []string{"push"}, "/"))
}

func TestRecord_UnwritablePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// a directory where the log file should be
	path := filepath.Join(dir, "usage.log")
	require.NoError(t, os.Mkdir(path, 0o700))

	assert.Error(t, New(path).Record("work", []string{"push"}, dir))
}
