// Package git adapts the git executable: repository queries, local
// setting writes, credential approval and delegated runs.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/byterings/gix/internal/log"
)

// Local setting keys written by gix
const (
	KeyUserName   = "user.name"
	KeyUserEmail  = "user.email"
	KeySSHCommand = "core.sshCommand"
)

// Client runs a git binary
type Client struct {
	Bin string
}

// New returns a client for bin, defaulting to "git"
func New(bin string) *Client {
	if bin == "" {
		bin = "git"
	}
	return &Client{Bin: bin}
}

// IsInstalled checks if the git binary can be executed
func (c *Client) IsInstalled(ctx context.Context) bool {
	_, err := c.Version(ctx)
	return err == nil
}

// Version returns the output of git --version
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "", nil, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsInsideWorkTree reports whether dir is inside a git work tree
func (c *Client) IsInsideWorkTree(ctx context.Context, dir string) bool {
	out, err := c.output(ctx, dir, nil, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// TopLevel returns the root of the work tree containing dir
func (c *Client) TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := c.output(ctx, dir, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to find repository root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// LocalConfig reads a repository-scoped setting. An unset key yields "".
func (c *Client) LocalConfig(ctx context.Context, dir, key string) (string, error) {
	out, err := c.output(ctx, dir, nil, "config", "--local", "--get", key)
	if err != nil {
		// exit 1 means the key is not set
		if ExitCode(err) == 1 {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// LocalEmail returns the repository-scoped user.email, or ""
func (c *Client) LocalEmail(ctx context.Context, dir string) (string, error) {
	return c.LocalConfig(ctx, dir, KeyUserEmail)
}

// RemoteURL returns the fetch URL of a remote
func (c *Client) RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	out, err := c.output(ctx, dir, nil, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get url of remote %s: %w", remote, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// SetLocal writes a repository-scoped setting
func (c *Client) SetLocal(ctx context.Context, dir, key, value string) error {
	if err := c.run(ctx, dir, "config", "--local", key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// UnsetLocal removes a repository-scoped setting; an absent key is not an error
func (c *Client) UnsetLocal(ctx context.Context, dir, key string) error {
	err := c.run(ctx, dir, "config", "--local", "--unset", key)
	if err != nil && ExitCode(err) != 5 {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}
	return nil
}

// Credential is one record for git's credential helpers.
// It has no String method so it cannot end up in a log line by accident.
type Credential struct {
	Protocol string
	Host     string
	Username string
	Password string
}

func (cr Credential) encode() string {
	return fmt.Sprintf("protocol=%s\nhost=%s\nusername=%s\npassword=%s\n\n",
		cr.Protocol, cr.Host, cr.Username, cr.Password)
}

// ApproveCredential hands a credential to the configured helpers via stdin
func (c *Client) ApproveCredential(ctx context.Context, dir string, cred Credential) error {
	if _, err := c.output(ctx, dir, strings.NewReader(cred.encode()), "credential", "approve"); err != nil {
		return fmt.Errorf("failed to approve credential for %s: %w", cred.Host, err)
	}
	return nil
}

// Invocation describes a delegated git run with inherited stdio by default
type Invocation struct {
	Args   []string
	Dir    string
	Env    []string // Appended to the parent environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes git with the invocation and returns its exit code.
// A non-zero exit is not an error; failing to start git is.
func (c *Client) Run(ctx context.Context, inv Invocation) (int, error) {
	log.FromContext(ctx).Command(inv.Dir, c.Bin, inv.Args...)

	cmd := exec.CommandContext(ctx, c.Bin, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin = orReader(inv.Stdin, os.Stdin)
	cmd.Stdout = orWriter(inv.Stdout, os.Stdout)
	cmd.Stderr = orWriter(inv.Stderr, os.Stderr)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// Killed by a signal: report it the way a shell does
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
	}
	return -1, fmt.Errorf("failed to run %s: %w", c.Bin, err)
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
