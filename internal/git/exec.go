package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/byterings/gix/internal/log"
)

// ExitError reports a git command that ran and exited non-zero
type ExitError struct {
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("git %s exited with status %d", strings.Join(e.Args, " "), e.Code)
}

// ExitCode returns the exit status carried by err, or -1
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// output runs git and returns stdout; stderr is folded into the error
func (c *Client) output(ctx context.Context, dir string, stdin io.Reader, args ...string) ([]byte, error) {
	full := gitArgs(dir, args)
	log.FromContext(ctx).Command("", c.Bin, full...)

	cmd := exec.CommandContext(ctx, c.Bin, full...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Args:   args,
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return nil, fmt.Errorf("failed to run %s: %w", c.Bin, err)
	}
	return out, nil
}

// run is output with stdout discarded
func (c *Client) run(ctx context.Context, dir string, args ...string) error {
	_, err := c.output(ctx, dir, nil, args...)
	return err
}
