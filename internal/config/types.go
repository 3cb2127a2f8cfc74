package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AuthKind identifies which variant an AuthMethod holds
type AuthKind int

const (
	AuthNone AuthKind = iota
	AuthSSH
	AuthToken
)

// SSHAuth authenticates with a private key file
type SSHAuth struct {
	KeyPath string `json:"key_path"`
}

// TokenAuth authenticates over HTTPS with a token
type TokenAuth struct {
	Token string `json:"token"`
}

// AuthMethod holds exactly one of SSH or Token.
// On disk it is {"SSH":{"key_path":...}} or {"Token":{"token":...}}.
type AuthMethod struct {
	SSH   *SSHAuth
	Token *TokenAuth
}

// SSH returns an AuthMethod using the given private key
func SSH(keyPath string) AuthMethod {
	return AuthMethod{SSH: &SSHAuth{KeyPath: keyPath}}
}

// Token returns an AuthMethod using the given HTTPS token
func Token(token string) AuthMethod {
	return AuthMethod{Token: &TokenAuth{Token: token}}
}

// Kind returns the variant held by the method
func (a AuthMethod) Kind() AuthKind {
	switch {
	case a.SSH != nil && a.Token == nil:
		return AuthSSH
	case a.Token != nil && a.SSH == nil:
		return AuthToken
	default:
		return AuthNone
	}
}

// KeyPath returns the SSH key path, or "" for token auth
func (a AuthMethod) KeyPath() string {
	if a.SSH == nil {
		return ""
	}
	return a.SSH.KeyPath
}

// String describes the method without revealing secrets
func (a AuthMethod) String() string {
	switch a.Kind() {
	case AuthSSH:
		return "SSH: " + a.SSH.KeyPath
	case AuthToken:
		return "Token: ••••••••"
	default:
		return "none"
	}
}

var errAuthVariant = errors.New("auth must hold exactly one of SSH or Token")

type authJSON struct {
	SSH   *SSHAuth   `json:"SSH,omitempty"`
	Token *TokenAuth `json:"Token,omitempty"`
}

// MarshalJSON encodes the single variant held by the method
func (a AuthMethod) MarshalJSON() ([]byte, error) {
	if a.Kind() == AuthNone {
		return nil, errAuthVariant
	}
	return json.Marshal(authJSON{SSH: a.SSH, Token: a.Token})
}

// UnmarshalJSON decodes a method and rejects zero or two variants
func (a *AuthMethod) UnmarshalJSON(data []byte) error {
	var raw authJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := AuthMethod{SSH: raw.SSH, Token: raw.Token}
	if decoded.Kind() == AuthNone {
		return fmt.Errorf("invalid auth %s: %w", string(data), errAuthVariant)
	}
	*a = decoded
	return nil
}

// Profile represents a Git identity
type Profile struct {
	ProfileName string     `json:"profile_name"` // Unique key (e.g., work, personal)
	Name        string     `json:"name"`         // user.name passed to git
	Email       string     `json:"email"`
	Auth        AuthMethod `json:"auth"`
}

// Label returns the menu label used when selecting a profile
func (p Profile) Label() string {
	return fmt.Sprintf("%s (%s <%s>)", p.ProfileName, p.Name, p.Email)
}

// GlobalConfig represents ~/.gix/config.json
type GlobalConfig struct {
	Profiles            []Profile `json:"profiles"`
	InterceptedCommands []string  `json:"intercepted_commands"`
	DefaultProfile      *string   `json:"default_profile"` // Name reference, may dangle
}

// LocalConfig represents <repo>/.gix/config.json
type LocalConfig struct {
	SelectedProfile *string `json:"selected_profile"`
}

// Selected returns the selected profile name, or ""
func (l *LocalConfig) Selected() string {
	if l == nil || l.SelectedProfile == nil {
		return ""
	}
	return *l.SelectedProfile
}
