package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/byterings/gix/internal/config"
	"github.com/byterings/gix/internal/platform"
)

// Printer writes marked, coloured status lines
type Printer struct {
	Out io.Writer
}

// NewPrinter returns a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{Out: out}
}

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// SetNoColor disables colour output globally
func SetNoColor(disabled bool) {
	if disabled {
		color.NoColor = true
	}
}

// Success prints a success message with checkmark
func (p *Printer) Success(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", green("✓"), message)
}

// Error prints an error message
func (p *Printer) Error(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", red("✗"), message)
}

// Info prints an info message
func (p *Printer) Info(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", cyan("ℹ"), message)
}

// Warning prints a warning message
func (p *Printer) Warning(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", yellow("⚠"), message)
}

// Println prints a plain line
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.Out, args...)
}

// Printf prints formatted text
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

var std = NewPrinter(os.Stdout)

// Success prints a success message to stdout
func Success(message string) { std.Success(message) }

// Info prints an info message to stdout
func Info(message string) { std.Info(message) }

// Warning prints a warning message to stdout
func Warning(message string) { std.Warning(message) }

// Error prints an error message to stderr
func Error(message string) { NewPrinter(os.Stderr).Error(message) }

// Bold renders s in bold when colour is enabled
func Bold(s string) string { return bold(s) }

// KeyStatus marks whether an SSH key file exists
func KeyStatus(keyPath string) string {
	path, err := platform.ExpandTilde(keyPath)
	if err == nil {
		if _, err := os.Stat(path); err == nil {
			return green("✓")
		}
	}
	return red("✗")
}

// PrintProfiles prints the configured profiles in order
func (p *Printer) PrintProfiles(profiles []config.Profile, defaultName string) {
	if len(profiles) == 0 {
		p.Println("No profiles configured yet.")
		p.Println("\nAdd your first profile with: gix profile add")
		return
	}

	p.Println("\nConfigured profiles:")
	p.Println()

	for i, prof := range profiles {
		indicator := " "
		if prof.ProfileName == defaultName {
			indicator = "→"
		}

		auth := prof.Auth.String()
		if prof.Auth.Kind() == config.AuthSSH {
			auth += " " + KeyStatus(prof.Auth.KeyPath())
		}

		p.Printf("%s %d. %s\n", indicator, i+1, bold(prof.ProfileName))
		p.Printf("     %s <%s>\n", prof.Name, prof.Email)
		p.Printf("     %s\n", dim(auth))
	}

	p.Println()
	if defaultName == "" {
		p.Println("No default profile set. Use 'gix set <name>' to set one.")
	}
}
