// Package profile validates identities before they are persisted.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/platform"
)

// ValidateEmail accepts anything containing both '@' and '.'
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return gixerr.New(gixerr.ValidationFailed, "invalid email format: %s", email)
	}
	return nil
}

// ValidateName checks a profile_name
func ValidateName(name string) error {
	if name == "" {
		return gixerr.New(gixerr.ValidationFailed, "profile name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return gixerr.New(gixerr.ValidationFailed, "profile name cannot contain path separators: %s", name)
	}
	return nil
}

// ValidateKeyPath checks that an SSH key exists and is a regular file.
// Loose permissions are returned as a warning.
func ValidateKeyPath(keyPath string) (string, error) {
	path, err := platform.ExpandTilde(keyPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", gixerr.New(gixerr.AuthKeyMissing, "SSH key not found at: %s", keyPath)
		}
		return "", gixerr.Wrap(gixerr.AuthKeyInvalid, err, "failed to access SSH key %s", keyPath)
	}
	if !info.Mode().IsRegular() {
		return "", gixerr.New(gixerr.AuthKeyInvalid, "SSH key path is not a file: %s", keyPath)
	}

	ok, err := platform.CheckFilePermissions(path)
	if err != nil || ok {
		return "", nil
	}
	return fmt.Sprintf("SSH key has insecure permissions (%o). Consider running: %s",
		info.Mode().Perm(), platform.GetPermissionFixCommand(path)), nil
}

// Validate checks a profile before it is saved
func Validate(p config.Profile) (warnings []string, err error) {
	if err := ValidateEmail(p.Email); err != nil {
		return nil, err
	}
	if err := ValidateName(p.ProfileName); err != nil {
		return nil, err
	}

	switch p.Auth.Kind() {
	case config.AuthSSH:
		warning, err := ValidateKeyPath(p.Auth.KeyPath())
		if err != nil {
			return nil, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
	case config.AuthToken:
		if p.Auth.Token.Token == "" {
			return nil, gixerr.New(gixerr.ValidationFailed, "token cannot be empty")
		}
	default:
		return nil, gixerr.New(gixerr.ValidationFailed, "profile '%s' has no authentication method", p.ProfileName)
	}

	return warnings, nil
}
