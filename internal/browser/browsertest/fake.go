// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/scraper"
)

// Session serves canned HTML per URL. Input and Click fail with
// browser.ErrElementNotFound when the selector is absent from the current
// page; a click on a selector listed in OnClick navigates to that URL.
type Session struct {
	mu sync.Mutex

	Pages     map[string]string
	OnClick   map[string]string
	CookieSet []*http.Cookie

	// NavigateErr, when set, fails every navigation.
	NavigateErr error

	Current     string
	Visited     []string
	Inputs      map[string]string
	Clicks      []string
	Screenshots []string
	Closed      bool
}

func New() *Session {
	return &Session{
		Pages:   make(map[string]string),
		OnClick: make(map[string]string),
		Inputs:  make(map[string]string),
	}
}

// Opener returns a browser.Opener handing out s.
func (s *Session) Opener() browser.Opener {
	return func(context.Context) (browser.Session, error) {
		return s, nil
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.Current = url
	s.Visited = append(s.Visited, url)
	return nil
}

func (s *Session) requireElement(selector string) error {
	if !scraper.Exists(s.Pages[s.Current], selector) {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return nil
}

// Frame flattens frames: the frame's fields live on the page itself.
func (s *Session) Frame(_ context.Context, selector string) (browser.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireElement(selector); err != nil {
		return nil, err
	}
	return frame{s}, nil
}

func (s *Session) Input(_ context.Context, selector, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireElement(selector); err != nil {
		return err
	}
	s.Inputs[selector] = text
	return nil
}

func (s *Session) Click(_ context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireElement(selector); err != nil {
		return err
	}
	s.Clicks = append(s.Clicks, selector)
	if next, ok := s.OnClick[selector]; ok {
		s.Current = next
		s.Visited = append(s.Visited, next)
	}
	return nil
}

// WaitURL checks once; nothing changes the URL while waiting.
func (s *Session) WaitURL(_ context.Context, match func(string) bool, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match(s.Current) {
		return s.Current, nil
	}
	return s.Current, fmt.Errorf("%w: URL change after %s (last %s)", browser.ErrTimeout, timeout, s.Current)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Pages[s.Current], nil
}

func (s *Session) Cookies(context.Context) ([]*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.CookieSet, nil
}

func (s *Session) Screenshot(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Screenshots = append(s.Screenshots, path)
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closed = true
	return nil
}

type frame struct {
	*Session
}

func (frame) Close() error {
	return nil
}
