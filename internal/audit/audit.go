// Package audit appends one line per intercepted command to the usage log.
// Entries carry the profile name and argv only, never credentials.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/byterings/gix/internal/platform"
)

// TimeFormat is the timestamp layout of each entry
const TimeFormat = "2006-01-02 15:04:05"

// Logger appends entries to a file. A zero Path disables logging.
type Logger struct {
	Path string
	Now  func() time.Time
}

// New returns a logger writing to path
func New(path string) *Logger {
	return &Logger{Path: path, Now: time.Now}
}

// Format renders one entry without the trailing newline
func Format(at time.Time, profileName string, args []string, cwd string) string {
	return fmt.Sprintf("[%s] Profile: %s | Cmd: git %s | Dir: %s",
		at.Format(TimeFormat), profileName, strings.Join(args, " "), cwd)
}

// Record appends an entry for a run under profileName
func (l *Logger) Record(profileName string, args []string, cwd string) error {
	if l == nil || l.Path == "" {
		return nil
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	if err := platform.MkdirSecure(filepath.Dir(l.Path)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, platform.SecureFileMode())
	if err != nil {
		return fmt.Errorf("failed to open usage log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, Format(now(), profileName, args, cwd)); err != nil {
		return fmt.Errorf("failed to write usage log: %w", err)
	}
	return nil
}
