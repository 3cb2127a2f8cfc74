// Package log provides a context-carried logger for diagnostic output.
// It never receives secrets: callers pass argv, and credentials travel on stdin.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
)

type ctxKey struct{}

// Logger writes diagnostics, echoing subprocess commands in verbose mode.
type Logger struct {
	out     io.Writer
	verbose bool
}

// New creates a new logger.
func New(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, verbose: verbose}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard}
}

// Printf writes formatted output.
func (l *Logger) Printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}

// Debugf writes a formatted line only in verbose mode.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	l.Printf(format, args...)
}

// Command logs an external command execution in verbose mode.
// dir is shown as a prefix when non-empty.
func (l *Logger) Command(dir, name string, args ...string) {
	if !l.verbose {
		return
	}
	line := shellquote.Join(append([]string{name}, args...)...)
	if dir != "" {
		fmt.Fprintf(l.out, "[%s] $ %s\n", dir, line)
		return
	}
	fmt.Fprintf(l.out, "$ %s\n", line)
}

// Verbose returns true if verbose mode is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}
