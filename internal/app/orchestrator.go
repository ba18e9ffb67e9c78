package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/fetcher"
	"issue-fetcher/internal/issue"
	"issue-fetcher/internal/normalize"
	"issue-fetcher/internal/observability"
	"issue-fetcher/internal/publisher"
	"issue-fetcher/internal/storage"
)

// State is the progress of a run.
type State int

const (
	StateIdle State = iota
	StateLoggedIn
	StateIssueResolved
	StateDownloaded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoggedIn:
		return "logged_in"
	case StateIssueResolved:
		return "issue_resolved"
	case StateDownloaded:
		return "downloaded"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Downloader is implemented by *fetcher.Fetcher.
type Downloader interface {
	Download(ctx context.Context, rawURL string, cookies []*http.Cookie, targetDir, filename string) (*fetcher.Result, error)
}

// Options select what a run fetches.
type Options struct {
	Credentials config.Credentials
	// Issue is nil for the publisher's current issue.
	Issue     *issue.Issue
	Formats   []string
	TargetDir string
	// DryRun logs in and resolves targets without downloading.
	DryRun bool
}

// Download is one resolved format. Result is nil on a dry run.
type Download struct {
	Target    publisher.Target
	Result    *fetcher.Result
	Duplicate bool
}

type Report struct {
	RunID     string
	State     State
	Downloads []Download
}

type Orchestrator struct {
	cfg        *config.Config
	logger     *observability.Logger
	publisher  publisher.Publisher
	open       browser.Opener
	downloader Downloader
	repo       storage.Repository
	now        func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	p publisher.Publisher,
	open browser.Opener,
	d Downloader,
	repo storage.Repository,
) *Orchestrator {
	if repo == nil {
		repo = storage.NopRepository{}
	}
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		publisher:  p,
		open:       open,
		downloader: d,
		repo:       repo,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to derive the current issue.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run logs in, resolves and downloads every requested format, then logs out.
// The browser is closed on every path.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (report *Report, err error) {
	id := o.publisher.ID()
	report = &Report{RunID: uuid.NewString(), State: StateIdle}
	log := o.logger.With("run_id", report.RunID, "publisher", id)

	formats := normalize.Formats(opts.Formats...)
	if len(formats) == 0 {
		formats = o.publisher.DefaultFormats()
	}
	if opts.Issue != nil {
		if err := opts.Issue.Validate(); err != nil {
			return report, err
		}
	}

	log.Info("Starting run",
		"formats", formats,
		"issue", issueField(opts.Issue),
		"target_dir", opts.TargetDir,
		"dry_run", opts.DryRun,
	)

	session, err := o.open(ctx)
	if err != nil {
		return report, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if report.State >= StateLoggedIn {
			if err := o.publisher.Logout(ctx, session); err != nil {
				log.Warn("Logout failed", "error", err.Error())
			}
		}
		if err := session.Close(); err != nil {
			log.Warn("Failed to close browser", "error", err.Error())
		}
		o.transition(log, report, StateClosed)
	}()

	if err := o.publisher.Login(ctx, session, opts.Credentials); err != nil {
		o.screenshot(ctx, log, session, "login")
		log.Error("Login failed", "error", err.Error())
		return report, fmt.Errorf("login to %s: %w", id, err)
	}
	o.transition(log, report, StateLoggedIn)

	now := o.now()
	seen := make(map[string]bool, len(formats))
	for _, format := range formats {
		target, err := o.publisher.Resolve(ctx, session, publisher.Request{
			Issue:  opts.Issue,
			Format: format,
			Now:    now,
		})
		if err != nil {
			o.screenshot(ctx, log, session, "resolve")
			log.Error("Resolve failed", "format", format, "error", err.Error())
			return report, fmt.Errorf("resolve %s %s: %w", id, format, err)
		}
		if seen[target.Filename] {
			continue
		}
		seen[target.Filename] = true
		o.transition(log, report, StateIssueResolved)

		log.Info("Issue resolved",
			"issue", target.Issue.String(),
			"format", target.Format,
			"filename", target.Filename,
			"url", target.URL,
		)

		if opts.DryRun {
			report.Downloads = append(report.Downloads, Download{Target: *target})
			continue
		}

		dl, err := o.download(ctx, log, session, report.RunID, target, opts.TargetDir)
		if err != nil {
			return report, err
		}
		report.Downloads = append(report.Downloads, *dl)
		o.transition(log, report, StateDownloaded)
	}

	log.Info("Run completed", "files", len(report.Downloads))
	return report, nil
}

func (o *Orchestrator) download(ctx context.Context, log *observability.Logger, s browser.Session, runID string, target *publisher.Target, targetDir string) (*Download, error) {
	cookies, err := s.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session cookies: %w", err)
	}

	res, err := o.downloader.Download(ctx, target.URL, cookies, targetDir, target.Filename)
	if err != nil {
		log.Error("Download failed", "filename", target.Filename, "error", err.Error())
		return nil, fmt.Errorf("download %s: %w", target.Filename, err)
	}

	dl := &Download{Target: *target, Result: res}

	// The ledger never fails a run; the file is already in place.
	dup, err := o.repo.ExistsByChecksum(ctx, res.SHA256)
	if err != nil {
		log.Warn("Ledger lookup failed", "error", err.Error())
	} else if dup {
		dl.Duplicate = true
		log.Info("Payload already recorded", "filename", target.Filename, "sha256", res.SHA256)
	}

	rec := &storage.DownloadRecord{
		RunID:        runID,
		Publisher:    o.publisher.ID(),
		IssueYear:    target.Issue.Year,
		IssueNumber:  target.Issue.Number,
		Format:       target.Format,
		Filename:     target.Filename,
		Path:         res.Path,
		URL:          res.URL,
		Bytes:        res.Bytes,
		SHA256:       res.SHA256,
		DownloadedAt: o.now().UTC(),
	}
	if err := o.repo.RecordDownload(ctx, rec); err != nil {
		log.Warn("Failed to record download", "filename", target.Filename, "error", err.Error())
	}
	return dl, nil
}

func (o *Orchestrator) transition(log *observability.Logger, r *Report, to State) {
	log.Debug("State change", "from", r.State.String(), "to", to.String())
	r.State = to
}

// screenshot saves <diagnostics_dir>/<publisher>_<stage>_error.png.
func (o *Orchestrator) screenshot(ctx context.Context, log *observability.Logger, s browser.Session, stage string) {
	path := filepath.Join(o.cfg.Rod.DiagnosticsDir, fmt.Sprintf("%s_%s_error.png", o.publisher.ID(), stage))
	if err := s.Screenshot(context.WithoutCancel(ctx), path); err != nil {
		log.Warn("Failed to save screenshot", "path", path, "error", err.Error())
		return
	}
	log.Info("Saved screenshot", "path", path)
}

func issueField(iss *issue.Issue) string {
	if iss == nil {
		return "current"
	}
	return iss.String()
}
