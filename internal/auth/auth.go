// Package auth injects a profile's credentials into git, either for a
// single delegated run or permanently into a repository's local settings.
package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/git"
	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/ssh"
)

// Git is the subset of the git client used for credential injection
type Git interface {
	RemoteURL(ctx context.Context, dir, remote string) (string, error)
	ApproveCredential(ctx context.Context, dir string, cred git.Credential) error
	SetLocal(ctx context.Context, dir, key, value string) error
	UnsetLocal(ctx context.Context, dir, key string) error
}

// Env returns the environment additions for a delegated run.
// Only SSH profiles contribute: GIT_SSH_COMMAND pinned to the key.
func Env(p *config.Profile) ([]string, error) {
	if p.Auth.Kind() != config.AuthSSH {
		return nil, nil
	}
	command, err := ssh.Command(p.Auth.KeyPath())
	if err != nil {
		return nil, fmt.Errorf("failed to build ssh command: %w", err)
	}
	return []string{"GIT_SSH_COMMAND=" + command}, nil
}

// HTTPSHost returns host[:port] for an https URL, or false for anything else
func HTTPSHost(rawURL string) (string, bool) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil || ep.Protocol != "https" || ep.Host == "" {
		return "", false
	}
	if ep.Port != 0 && ep.Port != 443 {
		return ep.Host + ":" + strconv.Itoa(ep.Port), true
	}
	return ep.Host, true
}

// InjectToken submits the profile's token for remoteURL to git's credential
// helpers. It is best-effort: every failure is skipped and only logged.
// When remoteURL is empty, the origin of dir is used.
func InjectToken(ctx context.Context, g Git, dir, remoteURL string, p *config.Profile) {
	logger := log.FromContext(ctx)
	if p.Auth.Kind() != config.AuthToken {
		return
	}

	if remoteURL == "" {
		url, err := g.RemoteURL(ctx, dir, "origin")
		if err != nil {
			logger.Debugf("token not injected: no origin remote")
			return
		}
		remoteURL = url
	}

	host, ok := HTTPSHost(remoteURL)
	if !ok {
		logger.Debugf("token not injected: remote is not https")
		return
	}

	cred := git.Credential{
		Protocol: "https",
		Host:     host,
		Username: p.Name,
		Password: p.Auth.Token.Token,
	}
	if err := g.ApproveCredential(ctx, dir, cred); err != nil {
		logger.Debugf("token not injected for %s: credential helper failed", host)
	}
}

// Prepare readies authentication for one delegated run and returns the
// environment additions for the child process
func Prepare(ctx context.Context, g Git, dir, remoteURL string, p *config.Profile) ([]string, error) {
	switch p.Auth.Kind() {
	case config.AuthSSH:
		return Env(p)
	case config.AuthToken:
		InjectToken(ctx, g, dir, remoteURL, p)
	}
	return nil, nil
}

// ApplyToRepo writes the profile into the repository's local settings
func ApplyToRepo(ctx context.Context, g Git, dir string, p *config.Profile) error {
	if err := g.SetLocal(ctx, dir, git.KeyUserName, p.Name); err != nil {
		return err
	}
	if err := g.SetLocal(ctx, dir, git.KeyUserEmail, p.Email); err != nil {
		return err
	}

	switch p.Auth.Kind() {
	case config.AuthSSH:
		command, err := ssh.Command(p.Auth.KeyPath())
		if err != nil {
			return fmt.Errorf("failed to build ssh command: %w", err)
		}
		return g.SetLocal(ctx, dir, git.KeySSHCommand, command)
	case config.AuthToken:
		return g.UnsetLocal(ctx, dir, git.KeySSHCommand)
	}
	return nil
}
