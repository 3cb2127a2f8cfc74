package ssh

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	cryptossh "golang.org/x/crypto/ssh"

	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/platform"
)

// KeyRequest describes a new ed25519 key pair
type KeyRequest struct {
	Path       string // Private key path; the public key gets a .pub suffix
	Comment    string
	Passphrase string
}

// GenerateKey creates a key pair with ssh-keygen, falling back to
// built-in generation when ssh-keygen is not available
func GenerateKey(ctx context.Context, req KeyRequest) (string, error) {
	path, err := platform.ExpandTilde(req.Path)
	if err != nil {
		return "", err
	}
	req.Path = path

	if err := platform.MkdirSecure(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("key already exists at %s", path)
	}

	if !platform.HasCommand("ssh-keygen") {
		log.FromContext(ctx).Debugf("ssh-keygen not found, using built-in key generation")
		return path, generateBuiltin(req)
	}

	// argv is not logged: it carries the passphrase
	cmd := exec.CommandContext(ctx, "ssh-keygen", "-q", "-t", "ed25519", "-f", path, "-N", req.Passphrase, "-C", req.Comment)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to generate SSH key: %s: %w", string(out), err)
	}
	return path, nil
}

// generateBuiltin writes an OpenSSH-format ed25519 key pair
func generateBuiltin(req KeyRequest) error {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	sshPubKey, err := cryptossh.NewPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("failed to convert public key: %w", err)
	}

	var block *pem.Block
	if req.Passphrase == "" {
		block, err = cryptossh.MarshalPrivateKey(privKey, req.Comment)
	} else {
		block, err = cryptossh.MarshalPrivateKeyWithPassphrase(privKey, req.Comment, []byte(req.Passphrase))
	}
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	f, err := platform.OpenFileSecure(req.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return fmt.Errorf("failed to create private key file: %w", err)
	}
	defer f.Close()

	if err := pem.Encode(f, block); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	pub := cryptossh.MarshalAuthorizedKey(sshPubKey)
	if req.Comment != "" {
		pub = append(pub[:len(pub)-1], []byte(" "+req.Comment+"\n")...)
	}
	if err := os.WriteFile(req.Path+".pub", pub, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}
