package browser_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/browser/browsertest"
)

func TestPollHTMLFindsContent(t *testing.T) {
	s := browsertest.New()
	s.Pages["https://example.com/"] = `<a id="ready">ok</a>`
	require.NoError(t, s.Navigate(context.Background(), "https://example.com/"))

	html, err := browser.PollHTML(context.Background(), s, time.Second, 10*time.Millisecond, func(html string) bool {
		return strings.Contains(html, `id="ready"`)
	})
	require.NoError(t, err)
	require.Contains(t, html, "ok")
}

func TestPollHTMLTimesOut(t *testing.T) {
	s := browsertest.New()
	s.Pages["https://example.com/"] = `<p>loading</p>`
	require.NoError(t, s.Navigate(context.Background(), "https://example.com/"))

	_, err := browser.PollHTML(context.Background(), s, 30*time.Millisecond, 5*time.Millisecond, func(string) bool {
		return false
	})
	require.ErrorIs(t, err, browser.ErrTimeout)
}

func TestPollHTMLCancelled(t *testing.T) {
	s := browsertest.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := browser.PollHTML(ctx, s, time.Second, 5*time.Millisecond, func(string) bool { return false })
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, browser.ErrTimeout)
}
