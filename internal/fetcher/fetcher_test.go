package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"issue-fetcher/internal/config"
	"issue-fetcher/internal/observability"
)

var payload = []byte("PK\x03\x04 der freitag epub payload")

func newTestFetcher() *Fetcher {
	cfg := config.Default()
	cfg.HTTP.ChunkSizeBytes = 8
	return NewFetcher(cfg, observability.NewNopLogger())
}

func sessionCookies() []*http.Cookie {
	return []*http.Cookie{{Name: "sessionid", Value: "abc", Domain: "127.0.0.1", Path: "/"}}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/1625/der-freitag-1625.epub", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/files/1625.epub", http.StatusFound)
	})
	mux.HandleFunc("/files/1625.epub", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("sessionid")
		if err != nil || c.Value != "abc" {
			http.Error(w, "login required", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	})
	mux.HandleFunc("/short.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("truncated"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestDownloadStreamsWithCookies(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	res, err := newTestFetcher().Download(context.Background(), srv.URL+"/1625/der-freitag-1625.epub", sessionCookies(), dir, "der-freitag-1625.epub")
	require.NoError(t, err)

	sum := sha256.Sum256(payload)
	require.Equal(t, filepath.Join(dir, "der-freitag-1625.epub"), res.Path)
	require.Equal(t, int64(len(payload)), res.Bytes)
	require.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.Equal(t, []string{"der-freitag-1625.epub"}, listDir(t, dir))
}

func TestDownloadCreatesTargetDir(t *testing.T) {
	srv := newServer(t)
	dir := filepath.Join(t.TempDir(), "issues", "2025")

	_, err := newTestFetcher().Download(context.Background(), srv.URL+"/files/1625.epub", sessionCookies(), dir, "issue.epub")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "issue.epub"))
}

func TestDownloadBadStatusLeavesNoFile(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	_, err := newTestFetcher().Download(context.Background(), srv.URL+"/missing.pdf", sessionCookies(), dir, "missing.pdf")
	require.ErrorIs(t, err, ErrBadStatus)
	require.Empty(t, listDir(t, dir))

	_, err = newTestFetcher().Download(context.Background(), srv.URL+"/files/1625.epub", nil, dir, "issue.epub")
	require.ErrorIs(t, err, ErrBadStatus)
	require.Empty(t, listDir(t, dir))
}

func TestDownloadShortBodyLeavesNoFile(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	_, err := newTestFetcher().Download(context.Background(), srv.URL+"/short.pdf", sessionCookies(), dir, "short.pdf")
	require.ErrorIs(t, err, ErrShortBody)
	require.Empty(t, listDir(t, dir))
}

func TestDownloadRejectsPathInFilename(t *testing.T) {
	_, err := newTestFetcher().Download(context.Background(), "https://example.com/a.pdf", nil, t.TempDir(), "../a.pdf")
	require.Error(t, err)
}

func TestNewJar(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: "shared", Value: "1", Domain: ".zeit.de", Path: "/"},
		{Name: "host", Value: "2", Domain: "meine.zeit.de", Path: "/"},
		{Name: "nodomain", Value: "3", Path: "/"},
	}
	fallback, _ := url.Parse("https://epaper.zeit.de/abo/diezeit")

	jar, err := NewJar(cookies, fallback)
	require.NoError(t, err)

	names := func(raw string) map[string]bool {
		u, _ := url.Parse(raw)
		out := make(map[string]bool)
		for _, c := range jar.Cookies(u) {
			out[c.Name] = true
		}
		return out
	}

	require.Equal(t, map[string]bool{"shared": true, "nodomain": true}, names("https://epaper.zeit.de/download/1"))
	require.Equal(t, map[string]bool{"shared": true, "host": true}, names("https://meine.zeit.de/konto"))
}
