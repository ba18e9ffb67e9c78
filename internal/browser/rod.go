package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"issue-fetcher/internal/config"
	"issue-fetcher/internal/observability"
)

// RodSession is a Session backed by a Chromium controlled over CDP.
type RodSession struct {
	browser     *rod.Browser
	page        *rod.Page
	launcher    *launcher.Launcher
	logger      *observability.Logger
	pageTimeout time.Duration
	poll        time.Duration
	owned       bool
}

// NewOpener returns an Opener launching browsers with cfg.
func NewOpener(cfg *config.Config, logger *observability.Logger) Opener {
	return func(ctx context.Context) (Session, error) {
		return Launch(ctx, cfg, logger)
	}
}

// Launch starts a browser and opens a blank page. The caller must Close the
// session on every path.
func Launch(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*RodSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Rod.Headless).
		Leakless(cfg.Rod.Leakless)
	if cfg.Rod.Bin != "" {
		l = l.Bin(cfg.Rod.Bin)
	}

	logger.Debug("Launching browser", "bin", cfg.Rod.Bin, "headless", cfg.Rod.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	logger.Info("Browser started")

	return &RodSession{
		browser:     b,
		page:        page,
		launcher:    l,
		logger:      logger,
		pageTimeout: cfg.GetRodPageTimeout(),
		poll:        cfg.GetRodPollInterval(),
		owned:       true,
	}, nil
}

func (s *RodSession) scoped(ctx context.Context) *rod.Page {
	return s.page.Context(ctx).Timeout(s.pageTimeout)
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.scoped(ctx)
	defer p.CancelTimeout()

	s.logger.Debug("Navigating", "url", url)
	if err := p.Navigate(url); err != nil {
		return classify(err, "navigate to "+url)
	}
	if err := p.WaitLoad(); err != nil {
		return classify(err, "load "+url)
	}
	return nil
}

// withElement waits for selector and runs fn within the page timeout.
func (s *RodSession) withElement(ctx context.Context, selector string, fn func(el *rod.Element) error) error {
	p := s.scoped(ctx)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
		}
		return fmt.Errorf("failed to find %s: %w", selector, err)
	}
	return fn(el)
}

func (s *RodSession) Frame(ctx context.Context, selector string) (Session, error) {
	var frame *rod.Page
	err := s.withElement(ctx, selector, func(el *rod.Element) error {
		f, err := el.Frame()
		if err != nil {
			return fmt.Errorf("failed to enter frame %s: %w", selector, err)
		}
		frame = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RodSession{
		browser:     s.browser,
		page:        frame.Context(context.Background()),
		logger:      s.logger,
		pageTimeout: s.pageTimeout,
		poll:        s.poll,
	}, nil
}

func (s *RodSession) Input(ctx context.Context, selector, text string) error {
	return s.withElement(ctx, selector, func(el *rod.Element) error {
		if err := el.Input(text); err != nil {
			return classify(err, "input into "+selector)
		}
		return nil
	})
}

func (s *RodSession) Click(ctx context.Context, selector string) error {
	return s.withElement(ctx, selector, func(el *rod.Element) error {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return classify(err, "click "+selector)
		}
		return nil
	})
}

func (s *RodSession) currentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *RodSession) WaitURL(ctx context.Context, match func(string) bool, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	var last string
	for {
		current, err := s.currentURL(ctx)
		if err == nil {
			last = current
			if match(current) {
				return current, nil
			}
		}

		select {
		case <-ctx.Done():
			return last, waitError(ctx, fmt.Sprintf("URL change after %s (last %s)", timeout, last))
		case <-ticker.C:
		}
	}
}

func (s *RodSession) HTML(ctx context.Context) (string, error) {
	p := s.scoped(ctx)
	defer p.CancelTimeout()

	html, err := p.HTML()
	if err != nil {
		return "", classify(err, "read page HTML")
	}
	return html, nil
}

func (s *RodSession) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	cookies, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read browser cookies: %w", err)
	}
	return toHTTPCookies(cookies), nil
}

func (s *RodSession) Screenshot(ctx context.Context, path string) error {
	p := s.scoped(ctx)
	defer p.CancelTimeout()

	data, err := p.Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Close quits the browser and removes its profile. Frame sessions only
// detach.
func (s *RodSession) Close() error {
	if !s.owned || s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Cleanup()
	s.browser = nil
	s.logger.Info("Browser closed")
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

func classify(err error, what string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, what)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}
