package ui

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/gixerr"
	"github.com/byterings/gix/internal/profile"
)

// Menu entries appended after the discovered SSH keys
const (
	OptionNewKey     = "Create new SSH key"
	OptionCustomPath = "Custom path..."
	OptionNoDefault  = "No default (clear)"
)

// Commands offered when configuring interception
var KnownCommands = []string{"pull", "push", "clone", "fetch", "commit", "merge", "rebase", "checkout"}

// Interactive reports whether stdin is a terminal
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// mapErr turns a Ctrl-C into a Cancelled error
func mapErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return gixerr.New(gixerr.Cancelled, "cancelled")
	}
	return err
}

func ask(p survey.Prompt, response any, opts ...survey.AskOpt) error {
	return mapErr(survey.AskOne(p, response, opts...))
}

// validator adapts a string check to survey
func validator(check func(string) error) survey.Validator {
	return func(val interface{}) error {
		if str, ok := val.(string); ok {
			return check(str)
		}
		return nil
	}
}

// SelectProfile asks for a profile and returns its index
func SelectProfile(message string, profiles []config.Profile, opts ...survey.AskOpt) (int, error) {
	options := make([]string, len(profiles))
	for i, p := range profiles {
		options[i] = p.Label()
	}

	var idx int
	prompt := &survey.Select{Message: message, Options: options}
	if err := ask(prompt, &idx, opts...); err != nil {
		return 0, err
	}
	return idx, nil
}

// SelectName asks for one of names
func SelectName(message string, names []string) (string, error) {
	var choice string
	if err := ask(&survey.Select{Message: message, Options: names}, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// SelectDefault asks for the global default; choosing the clear option returns ""
func SelectDefault(profiles []config.Profile, current string) (string, error) {
	options := make([]string, 0, len(profiles)+1)
	def := 0
	for i, p := range profiles {
		options = append(options, p.Label())
		if p.ProfileName == current {
			def = i
		}
	}
	options = append(options, OptionNoDefault)

	var idx int
	prompt := &survey.Select{Message: "Select default profile:", Options: options, Default: def}
	if err := ask(prompt, &idx); err != nil {
		return "", err
	}
	if idx == len(profiles) {
		return "", nil
	}
	return profiles[idx].ProfileName, nil
}

// Confirm prompts for yes/no confirmation
func Confirm(message string, def bool, opts ...survey.AskOpt) (bool, error) {
	var confirmed bool
	if err := ask(&survey.Confirm{Message: message, Default: def}, &confirmed, opts...); err != nil {
		return false, err
	}
	return confirmed, nil
}

// PromptProfileInfo prompts for profile fields, offering current values as defaults
func PromptProfileInfo(current config.Profile) (profileName, name, email string, err error) {
	namePrompt := &survey.Input{
		Message: "Profile name (e.g., work, personal):",
		Help:    "Short unique name used to select this identity",
		Default: current.ProfileName,
	}
	if err := ask(namePrompt, &profileName, survey.WithValidator(survey.Required), survey.WithValidator(validator(profile.ValidateName))); err != nil {
		return "", "", "", err
	}

	userPrompt := &survey.Input{
		Message: "Git user name:",
		Help:    "Name recorded on your commits (e.g., John Doe)",
		Default: current.Name,
	}
	if err := ask(userPrompt, &name, survey.WithValidator(survey.Required)); err != nil {
		return "", "", "", err
	}

	emailPrompt := &survey.Input{
		Message: "Git user email:",
		Help:    "Email recorded on your commits (e.g., john@example.com)",
		Default: current.Email,
	}
	if err := ask(emailPrompt, &email, survey.WithValidator(survey.Required), survey.WithValidator(validator(profile.ValidateEmail))); err != nil {
		return "", "", "", err
	}

	return profileName, name, email, nil
}

// PromptAuthKind asks for SSH or token authentication
func PromptAuthKind(current config.AuthKind) (config.AuthKind, error) {
	def := 0
	if current == config.AuthToken {
		def = 1
	}

	var idx int
	prompt := &survey.Select{
		Message: "Authentication method:",
		Options: []string{"SSH key", "HTTPS token"},
		Default: def,
	}
	if err := ask(prompt, &idx); err != nil {
		return config.AuthNone, err
	}
	if idx == 1 {
		return config.AuthToken, nil
	}
	return config.AuthSSH, nil
}

// SelectSSHKey offers discovered keys plus the create and custom options.
// It returns the chosen key path, or OptionNewKey.
func SelectSSHKey(keys []string) (string, error) {
	options := append(append([]string{}, keys...), OptionNewKey, OptionCustomPath)

	var choice string
	if err := ask(&survey.Select{Message: "Select SSH key:", Options: options}, &choice); err != nil {
		return "", err
	}
	if choice != OptionCustomPath {
		return choice, nil
	}

	var path string
	prompt := &survey.Input{
		Message: "Path to SSH private key:",
		Help:    "Full path to your private key file (e.g., ~/.ssh/id_ed25519)",
	}
	if err := ask(prompt, &path, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return path, nil
}

// PromptNewKey asks for the file name and passphrase of a new key
func PromptNewKey(suggested string) (name, passphrase string, err error) {
	namePrompt := &survey.Input{
		Message: "Key name:",
		Help:    "File name under ~/.ssh (e.g., id_ed25519_work)",
		Default: suggested,
	}
	if err := ask(namePrompt, &name, survey.WithValidator(survey.Required), survey.WithValidator(validator(profile.ValidateName))); err != nil {
		return "", "", err
	}

	if err := ask(&survey.Password{Message: "Passphrase (empty for none):"}, &passphrase); err != nil {
		return "", "", err
	}
	return name, passphrase, nil
}

// PromptToken asks for a personal access token
func PromptToken() (string, error) {
	var token string
	if err := ask(&survey.Password{Message: "Personal access token:"}, &token, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return token, nil
}

// PromptCommands asks which git commands to intercept
func PromptCommands(selected []string) ([]string, error) {
	var chosen []string
	prompt := &survey.MultiSelect{
		Message: "Commands to intercept:",
		Options: KnownCommands,
		Default: intersect(selected, KnownCommands),
	}
	if err := ask(prompt, &chosen); err != nil {
		return nil, err
	}
	return chosen, nil
}

func intersect(values, allowed []string) []string {
	var out []string
	for _, v := range values {
		for _, a := range allowed {
			if v == a {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// SurveyPrompter answers interceptor questions on the terminal.
// Prompts are drawn on stderr so the wrapped git command's stdout stays clean.
type SurveyPrompter struct{}

func onStderr() survey.AskOpt {
	return survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)
}

// SelectProfile asks which profile to use for the current command
func (SurveyPrompter) SelectProfile(profiles []config.Profile) (int, error) {
	if !Interactive() {
		return 0, gixerr.New(gixerr.Cancelled, "no profile resolved and stdin is not a terminal; run 'gix use' or 'gix set' first")
	}
	return SelectProfile("Select Git profile:", profiles, onStderr())
}

// Confirm asks a yes/no question; without a terminal it takes the default
func (SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	if !Interactive() {
		return def, nil
	}
	return Confirm(message, def, onStderr())
}
