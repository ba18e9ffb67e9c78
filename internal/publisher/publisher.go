// Package publisher holds one strategy per subscriber portal: how to log in
// and how to turn an issue into a download URL and a file name.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/issue"
	"issue-fetcher/internal/normalize"
	"issue-fetcher/internal/scraper"
)

var (
	ErrUnknownPublisher  = errors.New("unknown publisher")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Request selects the issue and format to resolve. A nil Issue means the
// issue current at Now.
type Request struct {
	Issue  *issue.Issue
	Format string
	Now    time.Time
}

// Target is a resolved download.
type Target struct {
	Issue    issue.Issue
	Format   string
	Filename string
	URL      string
}

type Publisher interface {
	ID() string
	DefaultFormats() []string
	Login(ctx context.Context, s browser.Session, creds config.Credentials) error
	Resolve(ctx context.Context, s browser.Session, req Request) (*Target, error)
	// Logout is best effort; the session is never reused.
	Logout(ctx context.Context, s browser.Session) error
}

// IDs lists the supported publishers.
func IDs() []string {
	return []string{"freitag", "spiegel", "zeit"}
}

func New(id string, cfg *config.Config) (Publisher, error) {
	pc, ok := cfg.Publishers.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPublisher, id)
	}
	rule, err := pc.Rule()
	if err != nil {
		return nil, fmt.Errorf("publisher %s: %w", id, err)
	}

	p := portal{
		id:   id,
		cfg:  *pc,
		rule: rule,
		poll: cfg.GetRodPollInterval(),
	}
	switch id {
	case "freitag":
		return &Freitag{portal: p}, nil
	case "spiegel":
		return &Spiegel{portal: p}, nil
	case "zeit":
		return &Zeit{portal: p}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPublisher, id)
}

// portal implements the parts every publisher shares: a username/password
// form, an optional logout URL and the date rule.
type portal struct {
	id   string
	cfg  config.PublisherConfig
	rule issue.Rule
	poll time.Duration
}

func (p *portal) ID() string {
	return p.id
}

func (p *portal) DefaultFormats() []string {
	return append([]string(nil), p.cfg.Formats...)
}

func (p *portal) Login(ctx context.Context, s browser.Session, creds config.Credentials) error {
	sel := p.cfg.Selectors

	if err := s.Navigate(ctx, p.cfg.LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	form := s
	if sel.LoginFrame != "" {
		frame, err := s.Frame(ctx, sel.LoginFrame)
		if err != nil {
			return fmt.Errorf("open login frame: %w", err)
		}
		defer func() { _ = frame.Close() }()
		form = frame
	}

	if err := form.Input(ctx, sel.Username, creds.User); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := form.Input(ctx, sel.Password, creds.Pass); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := form.Click(ctx, sel.Submit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	if _, err := s.WaitURL(ctx, p.loggedIn, p.cfg.GetLoginWait()); err != nil {
		return fmt.Errorf("login not confirmed: %w", err)
	}
	return nil
}

// loggedIn accepts the success URL when one is configured, otherwise any
// page other than the login form.
func (p *portal) loggedIn(current string) bool {
	if p.cfg.SuccessURL != "" {
		return strings.Contains(current, p.cfg.SuccessURL)
	}
	return current != "" && !samePage(current, p.cfg.LoginURL)
}

func samePage(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return strings.EqualFold(ua.Host, ub.Host) &&
		strings.TrimSuffix(ua.Path, "/") == strings.TrimSuffix(ub.Path, "/")
}

func (p *portal) Logout(ctx context.Context, s browser.Session) error {
	if p.cfg.LogoutURL == "" {
		return nil
	}
	if err := s.Navigate(ctx, p.cfg.LogoutURL); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (p *portal) issueFor(req Request) (issue.Issue, error) {
	if req.Issue != nil {
		if err := req.Issue.Validate(); err != nil {
			return issue.Issue{}, err
		}
		return *req.Issue, nil
	}
	return p.rule.Apply(req.Now), nil
}

func (p *portal) waitAnchor(ctx context.Context, s browser.Session, pageURL string, m scraper.Match) (*scraper.Anchor, error) {
	sc, err := scraper.NewScraper(pageURL)
	if err != nil {
		return nil, err
	}

	var found *scraper.Anchor
	_, err = browser.PollHTML(ctx, s, p.cfg.GetElementWait(), p.poll, func(html string) bool {
		a, err := sc.FindAnchor(html, m)
		if err != nil {
			return false
		}
		found = a
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("link %v %v on %s: %w", m.Selectors, m.Texts, pageURL, err)
	}
	return found, nil
}

func (p *portal) waitText(ctx context.Context, s browser.Session, selector, contains string) (string, error) {
	var text string
	_, err := browser.PollHTML(ctx, s, p.cfg.GetElementWait(), p.poll, func(html string) bool {
		t, err := scraper.FindText(html, selector, contains)
		if err != nil {
			return false
		}
		text = t
		return true
	})
	if err != nil {
		return "", fmt.Errorf("text %s %q: %w", selector, contains, err)
	}
	return text, nil
}

func requireFormat(raw string) (string, error) {
	format := normalize.Format(raw)
	if format == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedFormat)
	}
	return format, nil
}
