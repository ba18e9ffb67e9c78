package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/browser/browsertest"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/observability"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, env *environment, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), env, args, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// noBrowser fails the test if a browser is launched.
func noBrowser(t *testing.T) *environment {
	return &environment{
		openBrowser: func(*config.Config, *observability.Logger) browser.Opener {
			return func(context.Context) (browser.Session, error) {
				t.Fatal("browser launched")
				return nil, nil
			}
		},
		now: time.Now,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMissingAuthFilePrintsHint(t *testing.T) {
	dir := t.TempDir()
	res := run(t, noBrowser(t), "zeit", "--auth-file", filepath.Join(dir, "nope.json"), "--target-dir", dir)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, `"user"`)
	require.Contains(t, res.stderr, "ZEIT_AUTH_FILE")
	require.Contains(t, res.stderr, "Error:")
}

func TestMalformedAuthFile(t *testing.T) {
	dir := t.TempDir()
	for _, content := range []string{`{"user": "a"}`, `not json`, `{"user": "a", "pass": 3}`} {
		auth := writeFile(t, dir, "auth.json", content)
		res := run(t, noBrowser(t), "spiegel", "--auth-file", auth, "--target-dir", dir)
		require.Equal(t, 1, res.code, content)
		require.Contains(t, res.stderr, config.ErrInvalidAuthFile.Error(), content)
	}
}

func TestInvalidConfigFailsBeforeLaunch(t *testing.T) {
	dir := t.TempDir()
	auth := writeFile(t, dir, "auth.json", `{"user":"a","pass":"b"}`)
	cfg := writeFile(t, dir, "config.yaml", "rod:\n  page_timeout_s: 0\n")

	res := run(t, noBrowser(t), "freitag", "--config", cfg, "--auth-file", auth)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "page_timeout_s")
}

func TestYearRequiresIssue(t *testing.T) {
	dir := t.TempDir()
	auth := writeFile(t, dir, "auth.json", `{"user":"a","pass":"b"}`)

	res := run(t, noBrowser(t), "zeit", "--auth-file", auth, "--year", "2025")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "--issue")
}

func TestUnknownPublisher(t *testing.T) {
	res := run(t, noBrowser(t), "faz")
	require.Equal(t, 1, res.code)
}

func freitagEnv(s *browsertest.Session) *environment {
	return &environment{
		openBrowser: func(*config.Config, *observability.Logger) browser.Opener { return s.Opener() },
		now:         func() time.Time { return time.Date(2025, 4, 16, 9, 0, 0, 0, time.UTC) },
	}
}

func freitagSession() *browsertest.Session {
	s := browsertest.New()
	s.Pages["https://digital.freitag.de/login"] = `<input id="id_username"><input id="id_password"><button type="submit">Login</button>`
	s.OnClick["button[type='submit']"] = "https://digital.freitag.de/"
	s.CookieSet = []*http.Cookie{{Name: "sessionid", Value: "abc", Path: "/"}}
	return s
}

func TestFreitagEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sessionid"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/1625/der-freitag-1625.epub" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "issue 16/2025")
	}))
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "issues")
	auth := writeFile(t, dir, "auth.json", `{"user":"a","pass":"b"}`)
	cfg := writeFile(t, dir, "config.yaml", fmt.Sprintf("publishers:\n  freitag:\n    base_url: %s\n", srv.URL))

	t.Setenv("FREITAG_AUTH_FILE", auth)
	t.Setenv("TARGET_DIR", target)

	s := freitagSession()
	res := run(t, freitagEnv(s), "freitag", "--config", cfg)
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "der-freitag-1625.epub\n", res.stdout)

	data, err := os.ReadFile(filepath.Join(target, "der-freitag-1625.epub"))
	require.NoError(t, err)
	require.Equal(t, "issue 16/2025", string(data))

	require.True(t, s.Closed)
	require.Equal(t, "b", s.Inputs["#id_password"])
	require.NotContains(t, res.stderr, `"b"`)
}

func TestFreitagDownloadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	auth := writeFile(t, dir, "auth.json", `{"user":"a","pass":"b"}`)
	cfg := writeFile(t, dir, "config.yaml", fmt.Sprintf("publishers:\n  freitag:\n    base_url: %s\n", srv.URL))
	target := filepath.Join(dir, "out")

	s := freitagSession()
	res := run(t, freitagEnv(s), "freitag", "pdf", "--config", cfg, "--auth-file", auth, "--target-dir", target)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "403")
	require.True(t, s.Closed)

	entries, _ := os.ReadDir(target)
	require.Empty(t, entries)
}

func TestDryRunPrintsTargets(t *testing.T) {
	dir := t.TempDir()
	auth := writeFile(t, dir, "auth.json", `{"user":"a","pass":"b"}`)

	res := run(t, freitagEnv(freitagSession()), "freitag", "epub", "pdf", "--dry-run", "--auth-file", auth, "--target-dir", dir)
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t,
		"der-freitag-1625.epub\thttps://digital.freitag.de/1625/der-freitag-1625.epub\n"+
			"der-freitag-1625.pdf\thttps://digital.freitag.de/1625/der-freitag-1625.pdf\n",
		res.stdout)
}
