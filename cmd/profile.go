package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/platform"
	"github.com/byterings/gix/internal/ssh"
	"github.com/byterings/gix/internal/ui"
)

// profileFlags pre-fill profile fields. Once they complete the profile
// nothing is asked.
type profileFlags struct {
	user   string
	email  string
	sshKey string
}

func (f profileFlags) given() bool {
	return f.user != "" || f.email != "" || f.sshKey != ""
}

// filled reports whether p needs nothing more to be saved
func filled(p config.Profile) bool {
	return p.ProfileName != "" && p.Name != "" && p.Email != "" && p.Auth.Kind() != config.AuthNone
}

var (
	addFlags    profileFlags
	editFlags   profileFlags
	deleteForce bool
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"profiles"},
	Short:   "Manage profiles",
	Long:    `List, add, edit and delete the identities gix can use.`,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfileList,
}

var profileAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new profile",
	Long: `Add a new profile. Missing fields are asked for interactively.

SSH profiles can reuse a key from ~/.ssh or create a new ed25519 key.
Token profiles can only be added interactively.`,
	Args: cobra.MaximumNArgs(1),
	Example: `  gix profile add
  gix profile add work --user "Jane Doe" --email jane@work.com --ssh-key ~/.ssh/id_work`,
	RunE: runProfileAdd,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Example: `  gix profile edit work
  gix profile edit work --ssh-key ~/.ssh/id_work_new`,
	RunE: runProfileEdit,
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a profile",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runProfileDelete,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd, profileAddCmd, profileEditCmd, profileDeleteCmd)

	for _, c := range []struct {
		cmd   *cobra.Command
		flags *profileFlags
	}{{profileAddCmd, &addFlags}, {profileEditCmd, &editFlags}} {
		c.cmd.Flags().StringVar(&c.flags.user, "user", "", "Git user name")
		c.cmd.Flags().StringVar(&c.flags.email, "email", "", "Git user email")
		c.cmd.Flags().StringVar(&c.flags.sshKey, "ssh-key", "", "Path to SSH private key")
	}
	profileDeleteCmd.Flags().BoolVarP(&deleteForce, "yes", "y", false, "Skip confirmation")
}

func runProfileList(cmd *cobra.Command, args []string) error {
	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintProfiles(cfg.Profiles, cfg.DefaultProfileName())
	return nil
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	var p config.Profile
	if len(args) > 0 {
		p.ProfileName = args[0]
	}
	p, err = collectProfile(cmd.Context(), out, p, addFlags)
	if err != nil {
		return err
	}

	if err := validateProfile(out, p); err != nil {
		return err
	}
	if err := cfg.AddProfile(p); err != nil {
		return err
	}
	if err := store.SaveGlobal(cfg); err != nil {
		return err
	}

	out.Success(fmt.Sprintf("Profile '%s' added", p.ProfileName))
	if cfg.DefaultProfileName() == "" {
		out.Println()
		out.Println("Next steps:")
		out.Printf("  gix set %s    # Use it by default\n", p.ProfileName)
		out.Printf("  gix use %s    # Or bind it to the current repository\n", p.ProfileName)
	}
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	current, err := pickProfileByName(cfg, name, "Select profile to edit:")
	if err != nil {
		return err
	}
	oldName := current.ProfileName

	updated, err := collectProfile(cmd.Context(), out, *current, editFlags)
	if err != nil {
		return err
	}

	if err := validateProfile(out, updated); err != nil {
		return err
	}
	if err := cfg.UpdateProfile(oldName, updated); err != nil {
		return err
	}
	if err := store.SaveGlobal(cfg); err != nil {
		return err
	}

	out.Success(fmt.Sprintf("Profile '%s' updated", updated.ProfileName))
	if updated.ProfileName != oldName {
		out.Warning(fmt.Sprintf("Repositories bound to '%s' keep the old name. Re-bind them with: gix use %s", oldName, updated.ProfileName))
	}
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	out := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	p, err := pickProfileByName(cfg, name, "Select profile to delete:")
	if err != nil {
		return err
	}
	name = p.ProfileName

	if !deleteForce {
		if !ui.Interactive() {
			return fmt.Errorf("refusing to delete '%s' without confirmation; pass --yes", name)
		}
		ok, err := ui.Confirm(fmt.Sprintf("Delete profile '%s' (%s)?", name, p.Email), false)
		if err != nil || !ok {
			return err
		}
		ok, err = ui.Confirm("This cannot be undone. Are you sure?", false)
		if err != nil || !ok {
			return err
		}
	}

	wasDefault := cfg.DefaultProfileName() == name
	cfg.RemoveProfile(name)
	if err := store.SaveGlobal(cfg); err != nil {
		return err
	}

	out.Success(fmt.Sprintf("Profile '%s' deleted", name))
	if wasDefault {
		out.Info("It was the default profile; no default is set now.")
	}
	return nil
}

// collectProfile fills cur from flags, asking for whatever is still missing
func collectProfile(ctx context.Context, out *ui.Printer, cur config.Profile, flags profileFlags) (config.Profile, error) {
	if flags.user != "" {
		cur.Name = flags.user
	}
	if flags.email != "" {
		cur.Email = flags.email
	}
	if flags.sshKey != "" {
		cur.Auth = config.SSH(flags.sshKey)
	}

	if flags.given() && filled(cur) {
		return cur, nil
	}
	if !ui.Interactive() {
		return cur, fmt.Errorf("missing profile fields; pass a name with --user, --email and --ssh-key, or run from a terminal")
	}

	var err error
	cur.ProfileName, cur.Name, cur.Email, err = ui.PromptProfileInfo(cur)
	if err != nil {
		return cur, err
	}
	if flags.sshKey != "" {
		return cur, nil
	}

	kind, err := ui.PromptAuthKind(cur.Auth.Kind())
	if err != nil {
		return cur, err
	}

	switch kind {
	case config.AuthToken:
		if cur.Auth.Kind() == config.AuthToken {
			keep, err := ui.Confirm("Keep the current token?", true)
			if err != nil {
				return cur, err
			}
			if keep {
				return cur, nil
			}
		}
		token, err := ui.PromptToken()
		if err != nil {
			return cur, err
		}
		cur.Auth = config.Token(token)
	default:
		keyPath, err := chooseKey(ctx, out, cur)
		if err != nil {
			return cur, err
		}
		cur.Auth = config.SSH(keyPath)
	}
	return cur, nil
}

// chooseKey offers existing keys or generates a new one
func chooseKey(ctx context.Context, out *ui.Printer, p config.Profile) (string, error) {
	keys, err := ssh.ListUserKeys()
	if err != nil {
		out.Warning(fmt.Sprintf("Could not list SSH keys: %v", err))
	}

	choice, err := ui.SelectSSHKey(keys)
	if err != nil {
		return "", err
	}
	if choice != ui.OptionNewKey {
		return choice, nil
	}

	name, passphrase, err := ui.PromptNewKey("id_ed25519_" + p.ProfileName)
	if err != nil {
		return "", err
	}
	sshDir, err := platform.GetSSHDir()
	if err != nil {
		return "", err
	}

	path, err := ssh.GenerateKey(ctx, ssh.KeyRequest{
		Path:       filepath.Join(sshDir, name),
		Comment:    p.Email,
		Passphrase: passphrase,
	})
	if err != nil {
		return "", err
	}
	out.Success(fmt.Sprintf("SSH key created at %s", path))

	if pub, err := ssh.PublicKeyContent(path); err == nil {
		out.Println("\nAdd this public key to your Git host:")
		out.Println("---")
		out.Printf("%s", pub)
		out.Println("---")
	}
	return path, nil
}
