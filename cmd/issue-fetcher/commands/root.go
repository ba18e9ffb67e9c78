package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"issue-fetcher/internal/app"
	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/observability"
	"issue-fetcher/internal/publisher"
)

// environment holds what differs between the real binary and tests.
type environment struct {
	openBrowser func(cfg *config.Config, logger *observability.Logger) browser.Opener
	now         func() time.Time
	// signals installs the SIGINT/SIGTERM handler.
	signals bool
}

func defaultEnvironment() *environment {
	return &environment{
		openBrowser: browser.NewOpener,
		now:         time.Now,
		signals:     true,
	}
}

type rootFlags struct {
	configPath string
	targetDir  string
	authFile   string
	headless   bool
	dryRun     bool
	logLevel   string
}

func newRootCmd(env *environment) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "issue-fetcher",
		Short:         "issue-fetcher downloads the current issue of a subscribed magazine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", os.Getenv("ISSUE_FETCHER_CONFIG"), "YAML config file (env ISSUE_FETCHER_CONFIG)")
	pf.StringVar(&flags.targetDir, "target-dir", getEnv("TARGET_DIR", "."), "directory to save issues to (env TARGET_DIR)")
	pf.StringVar(&flags.authFile, "auth-file", "", `JSON file with "user" and "pass" (default env <PUBLISHER>_AUTH_FILE or <publisher>-auth.json)`)
	pf.BoolVar(&flags.headless, "headless", true, "run the browser without a window; use --headless=false to solve captchas by hand")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "log in and resolve the issue without downloading")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	for _, id := range publisher.IDs() {
		rootCmd.AddCommand(newPublisherCmd(id, flags, env))
	}
	return rootCmd
}

// ExecuteContext runs the CLI and exits non-zero on failure, 130 after an
// interrupt.
func ExecuteContext(ctx context.Context) {
	os.Exit(execute(ctx, defaultEnvironment(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, env *environment, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if errors.Is(err, app.ErrInterrupted) {
			return 130
		}
		return 1
	}
	return 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
