// Package gittest provides an in-memory stand-in for the git client.
package gittest

import (
	"context"
	"errors"

	"github.com/byterings/gix/internal/git"
)

// Fake records every call and answers from its fields
type Fake struct {
	Root   string // Work tree root; empty means not inside one
	Email  string // Repository user.email
	Origin string // URL of origin; empty means no such remote

	// Settings holds local settings written per directory
	Settings map[string]map[string]string

	Approved   []git.Credential
	ApproveErr error

	Runs     []git.Invocation
	ExitCode int
	OnRun    func(inv git.Invocation)
}

// ErrNoRemote is returned by RemoteURL when Origin is empty
var ErrNoRemote = errors.New("no such remote")

func (f *Fake) IsInsideWorkTree(context.Context, string) bool {
	return f.Root != ""
}

func (f *Fake) TopLevel(context.Context, string) (string, error) {
	if f.Root == "" {
		return "", errors.New("not a git repository")
	}
	return f.Root, nil
}

func (f *Fake) LocalEmail(context.Context, string) (string, error) {
	return f.Email, nil
}

func (f *Fake) LocalConfig(_ context.Context, dir, key string) (string, error) {
	return f.Settings[dir][key], nil
}

func (f *Fake) RemoteURL(context.Context, string, string) (string, error) {
	if f.Origin == "" {
		return "", ErrNoRemote
	}
	return f.Origin, nil
}

func (f *Fake) SetLocal(_ context.Context, dir, key, value string) error {
	if f.Settings == nil {
		f.Settings = map[string]map[string]string{}
	}
	if f.Settings[dir] == nil {
		f.Settings[dir] = map[string]string{}
	}
	f.Settings[dir][key] = value
	return nil
}

func (f *Fake) UnsetLocal(_ context.Context, dir, key string) error {
	delete(f.Settings[dir], key)
	return nil
}

func (f *Fake) ApproveCredential(_ context.Context, _ string, cred git.Credential) error {
	if f.ApproveErr != nil {
		return f.ApproveErr
	}
	f.Approved = append(f.Approved, cred)
	return nil
}

func (f *Fake) Run(_ context.Context, inv git.Invocation) (int, error) {
	f.Runs = append(f.Runs, inv)
	if f.OnRun != nil {
		f.OnRun(inv)
	}
	return f.ExitCode, nil
}
