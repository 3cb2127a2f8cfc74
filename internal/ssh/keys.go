package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cryptossh "golang.org/x/crypto/ssh"

	"github.com/byterings/gix/internal/platform"
)

// nonKeyPrefixes are files in ~/.ssh that are never private keys
var nonKeyPrefixes = []string{"known_hosts", "config", "authorized_keys", "environment", "agent"}

// ListKeys returns candidate private keys in dir, sorted by name
func ListKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasSuffix(name, ".pub") || strings.HasPrefix(name, ".") {
			continue
		}
		if hasAnyPrefix(name, nonKeyPrefixes) {
			continue
		}
		keys = append(keys, filepath.Join(dir, name))
	}
	sort.Strings(keys)
	return keys, nil
}

// ListUserKeys lists private keys in ~/.ssh
func ListUserKeys() ([]string, error) {
	dir, err := platform.GetSSHDir()
	if err != nil {
		return nil, err
	}
	return ListKeys(dir)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// KeyInfo describes a private key file
type KeyInfo struct {
	Type        string
	Fingerprint string
	Encrypted   bool
}

// Inspect parses the private key at path. An encrypted key is reported
// through its .pub companion when one exists.
func Inspect(path string) (*KeyInfo, error) {
	expanded, err := platform.ExpandTilde(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	signer, err := cryptossh.ParsePrivateKey(data)
	if err == nil {
		pub := signer.PublicKey()
		return &KeyInfo{Type: pub.Type(), Fingerprint: cryptossh.FingerprintSHA256(pub)}, nil
	}

	var missing *cryptossh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("not a valid private key: %w", err)
	}

	info := &KeyInfo{Encrypted: true}
	pub := missing.PublicKey
	if pub == nil {
		pub, _ = readPublicKey(expanded + ".pub")
	}
	if pub != nil {
		info.Type = pub.Type()
		info.Fingerprint = cryptossh.FingerprintSHA256(pub)
	}
	return info, nil
}

func readPublicKey(path string) (cryptossh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pub, _, _, _, err := cryptossh.ParseAuthorizedKey(data)
	return pub, err
}

// PublicKeyContent reads the public key next to a private key
func PublicKeyContent(privateKeyPath string) (string, error) {
	expanded, err := platform.ExpandTilde(privateKeyPath)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(expanded + ".pub")
	if err != nil {
		return "", fmt.Errorf("failed to read public key: %w", err)
	}
	return string(content), nil
}
