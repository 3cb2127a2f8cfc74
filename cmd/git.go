package cmd

import (
	"context"
	"os"

	"github.com/byterings/gix/internal/audit"
	"github.com/byterings/gix/internal/intercept"
	"github.com/byterings/gix/internal/log"
	"github.com/byterings/gix/internal/ui"
)

// runIntercepted runs a git command line through the interceptor.
// Notices go to stderr so git's stdout stays clean for pipes.
func runIntercepted(ctx context.Context, args []string) error {
	cfg, err := store.LoadGlobal()
	if err != nil {
		return err
	}

	ic := &intercept.Interceptor{
		Git:      gitClient(),
		Prompter: ui.SurveyPrompter{},
		Audit:    audit.New(settings.AuditLog),
		Out:      ui.NewPrinter(os.Stderr),
		Cwd:      workDir,
	}

	stop := catchInterrupts()
	defer stop()

	outcome, err := ic.Run(ctx, cfg, args)
	if outcome != nil {
		log.FromContext(ctx).Debugf("gix: %v", outcome.States)
	}
	return err
}
