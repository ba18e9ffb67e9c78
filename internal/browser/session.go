// Package browser drives the controlled browser used to log into portals.
//
// Publishers talk to the browser only through Session so the login and
// lookup steps can run against a fake in tests.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrTimeout         = errors.New("timed out waiting for page")
	ErrElementNotFound = errors.New("element not found")
)

type Session interface {
	// Navigate opens url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Frame returns a session scoped to the iframe matched by selector.
	// Closing it does not close the browser.
	Frame(ctx context.Context, selector string) (Session, error)
	Input(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// WaitURL polls the current URL until match accepts it.
	WaitURL(ctx context.Context, match func(string) bool, timeout time.Duration) (string, error)
	HTML(ctx context.Context) (string, error)
	// Cookies returns every cookie of the browser context.
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Opener starts a new session.
type Opener func(ctx context.Context) (Session, error)

// PollHTML snapshots the page until check accepts it or timeout passes.
func PollHTML(ctx context.Context, s Session, timeout, interval time.Duration, check func(html string) bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		html, err := s.HTML(ctx)
		if err == nil && check(html) {
			return html, nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", waitError(ctx, fmt.Sprintf("page content after %s", timeout))
		case <-ticker.C:
		}
	}
}

// waitError turns an expired wait into ErrTimeout and keeps cancellation
// distinguishable.
func waitError(ctx context.Context, what string) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("waiting for %s: %w", what, ctx.Err())
	}
	return fmt.Errorf("%w: %s", ErrTimeout, what)
}
