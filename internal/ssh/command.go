// Package ssh builds key-pinned ssh commands and manages key files.
package ssh

import (
	"github.com/kballard/go-shellquote"

	"github.com/byterings/gix/internal/platform"
)

// Command returns the ssh command line that pins keyPath as the only identity.
// The path is expanded and shell-quoted since git runs the value through sh.
func Command(keyPath string) (string, error) {
	expanded, err := platform.ExpandTilde(keyPath)
	if err != nil {
		return "", err
	}
	return shellquote.Join("ssh", "-i", platform.NormalizePathForSSH(expanded), "-o", "IdentitiesOnly=yes"), nil
}
