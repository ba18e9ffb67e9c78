package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"issue-fetcher/internal/app"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/fetcher"
	"issue-fetcher/internal/issue"
	"issue-fetcher/internal/observability"
	"issue-fetcher/internal/publisher"
	"issue-fetcher/internal/storage"
	"issue-fetcher/internal/storage/mssql"
)

type fetchFlags struct {
	year    int
	number  int
	formats []string
}

var publisherShort = map[string]string{
	"freitag": "Download der Freitag (epub by default, formats as arguments).",
	"spiegel": "Download DER SPIEGEL as PDF (next week's issue from Thursday on).",
	"zeit":    "Download DIE ZEIT from the e-paper portal.",
}

func newPublisherCmd(id string, root *rootFlags, env *environment) *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   id + " [formats...]",
		Short: publisherShort[id],
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, id, root, flags, args, env)
		},
	}

	cmd.Flags().IntVar(&flags.year, "year", 0, "issue year, e.g. 2025 (requires --issue)")
	cmd.Flags().IntVar(&flags.number, "issue", 0, "issue number, e.g. 16 (requires --year)")
	cmd.Flags().StringSliceVar(&flags.formats, "formats", nil, "formats to download, e.g. pdf,epub")
	return cmd
}

func (f *fetchFlags) explicitIssue() (*issue.Issue, error) {
	if f.year == 0 && f.number == 0 {
		return nil, nil
	}
	if f.year == 0 || f.number == 0 {
		return nil, errors.New("--year and --issue must be given together")
	}
	iss := &issue.Issue{Year: f.year, Number: f.number}
	if err := iss.Validate(); err != nil {
		return nil, err
	}
	return iss, nil
}

// runFetch checks config, credentials and flags before anything touches the
// browser or the network.
func runFetch(cmd *cobra.Command, id string, root *rootFlags, flags *fetchFlags, args []string, env *environment) error {
	cfg, err := config.LoadConfig(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Rod.Headless = root.headless
	}
	if root.logLevel != "" {
		cfg.Observability.LogLevel = strings.ToLower(root.logLevel)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	authPath := config.ResolveAuthFile(root.authFile, id)
	creds, err := config.LoadCredentials(authPath)
	if err != nil {
		if errors.Is(err, config.ErrAuthFileNotFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Create %s (or set %s) with:\n%s\n", authPath, config.AuthFileEnv(id), config.AuthFileHint)
		}
		return err
	}

	iss, err := flags.explicitIssue()
	if err != nil {
		return err
	}

	p, err := publisher.New(id, cfg)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability, cmd.ErrOrStderr())
	defer func() { _ = logger.Close() }()

	repo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close ledger", "error", err.Error())
		}
	}()

	ctx := cmd.Context()
	if env.signals {
		var stop context.CancelFunc
		ctx, stop = app.GracefulShutdown(ctx, logger)
		defer stop()
	}

	orch := app.NewOrchestrator(cfg, logger, p, env.openBrowser(cfg, logger), fetcher.NewFetcher(cfg, logger), repo).
		WithClock(env.now)

	report, err := orch.Run(ctx, app.Options{
		Credentials: creds,
		Issue:       iss,
		Formats:     append(append([]string(nil), flags.formats...), args...),
		TargetDir:   root.targetDir,
		DryRun:      root.dryRun,
	})
	if err != nil {
		if app.Interrupted(ctx) {
			return fmt.Errorf("%w: %w", app.ErrInterrupted, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range report.Downloads {
		if d.Result == nil {
			fmt.Fprintf(out, "%s\t%s\n", d.Target.Filename, d.Target.URL)
			continue
		}
		fmt.Fprintln(out, d.Target.Filename)
	}
	return nil
}

func openRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	if !cfg.Storage.Enabled() {
		return storage.NopRepository{}, nil
	}
	repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open download ledger: %w", err)
	}
	return repo, nil
}
