package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-mdrefine/internal/apierr"
	"github.com/alnah/go-mdrefine/internal/chunk"
	"github.com/alnah/go-mdrefine/internal/cli"
	"github.com/alnah/go-mdrefine/internal/config"
	"github.com/alnah/go-mdrefine/internal/convert"
	"github.com/alnah/go-mdrefine/internal/interrupt"
	"github.com/alnah/go-mdrefine/internal/prompt"
	"github.com/alnah/go-mdrefine/internal/refine"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitRefine     = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the context so in-flight work can finish and
	// partial results get written; a second Ctrl+C aborts immediately.
	notifier, ctx := interrupt.Notify(context.Background())
	defer notifier.Stop()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "mdrefine",
		Short:   "Convert documents to Markdown and refine them with an LLM",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		// The root itself runs only when no subcommand matched.
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", cli.ErrUsage, args[0])
			}
			return cmd.Help()
		},
	}

	// Flag parsing failures get the usage sentinel so exitCode can
	// classify them with errors.Is rather than message matching.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", cli.ErrUsage, err)
	})

	// Subcommands.
	rootCmd.AddCommand(cli.ConvertCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}

	// A run interrupted by Ctrl+C can still finish cleanly with
	// partial output; signal that through the exit status.
	if notifier.Interrupted() {
		os.Exit(ExitInterrupt)
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): flag/arg parsing failures and
	// unknown subcommands, tagged with cli.ErrUsage at the boundary.
	if errors.Is(err, cli.ErrUsage) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, cli.ErrDeepSeekKeyMissing) ||
		errors.Is(err, cli.ErrInvalidProvider) || errors.Is(err, refine.ErrEmptyAPIKey) ||
		errors.Is(err, prompt.ErrNoDefault) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrNotDirectory) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, convert.ErrUnsupportedFormat) ||
		errors.Is(err, convert.ErrNoContent) || errors.Is(err, chunk.ErrInvalidBudget) ||
		errors.Is(err, refine.ErrBudgetExhausted) || errors.Is(err, config.ErrInvalidKey) ||
		errors.Is(err, config.ErrInvalidSyntax) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) {
		return ExitValidation
	}

	// Refinement errors (ExitRefine = 5).
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrAuthFailed) || errors.Is(err, apierr.ErrServer) ||
		errors.Is(err, apierr.ErrContextTooLong) || errors.Is(err, apierr.ErrInvalidResponse) {
		return ExitRefine
	}

	return ExitGeneral
}

