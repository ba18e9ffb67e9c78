package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"issue-fetcher/internal/checksum"
	"issue-fetcher/internal/config"
	"issue-fetcher/internal/observability"
)

var (
	ErrBadStatus = errors.New("unexpected download status")
	ErrShortBody = errors.New("download truncated")
)

// Fetcher downloads issue files with the cookies of a logged-in browser.
type Fetcher struct {
	client   *resty.Client
	cfg      *config.Config
	logger   *observability.Logger
	checksum *checksum.Generator
}

type Result struct {
	Path   string
	URL    string
	Bytes  int64
	SHA256 string
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.GetTotalTimeout()).
		SetHeader("User-Agent", cfg.HTTP.UserAgent).
		SetHeader("Accept", "*/*")

	return &Fetcher{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		checksum: checksum.NewGenerator(),
	}
}

// Download GETs rawURL and streams the body to targetDir/filename. The file
// appears only after the whole body arrived; on any error nothing is left
// behind.
func (f *Fetcher) Download(ctx context.Context, rawURL string, cookies []*http.Cookie, targetDir, filename string) (*Result, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	jar, err := NewJar(cookies, u)
	if err != nil {
		return nil, err
	}
	f.client.SetCookieJar(jar)

	f.logger.Info("Downloading", "url", rawURL, "filename", filename, "cookies", len(cookies))

	res, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	body := res.RawBody()
	defer func() {
		if err := body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "error", err.Error())
		}
	}()

	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: %s for %s", ErrBadStatus, res.Status(), rawURL)
	}

	f.logger.Debug("Response headers",
		"content_type", res.Header().Get("Content-Type"),
		"content_length", res.RawResponse.ContentLength,
	)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create target dir: %w", err)
	}

	written, sum, err := f.writeAtomically(body, targetDir, filename, res.RawResponse.ContentLength)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Path:   filepath.Join(targetDir, filename),
		URL:    rawURL,
		Bytes:  written,
		SHA256: sum,
	}
	f.logger.Info("Download complete", "path", result.Path, "bytes", result.Bytes, "sha256", result.SHA256)
	return result, nil
}

func (f *Fetcher) writeAtomically(body io.Reader, dir, filename string, expected int64) (int64, string, error) {
	tmp, err := os.CreateTemp(dir, "."+filename+".*.part")
	if err != nil {
		return 0, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	h := f.checksum.New()
	buf := make([]byte, f.cfg.HTTP.ChunkSizeBytes)
	written, err := io.CopyBuffer(io.MultiWriter(tmp, h), body, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, "", fmt.Errorf("%w: %s after %d bytes: %v", ErrShortBody, filename, written, err)
		}
		return 0, "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if expected >= 0 && written != expected {
		return 0, "", fmt.Errorf("%w: %s got %d of %d bytes", ErrShortBody, filename, written, expected)
	}

	if err := tmp.Sync(); err != nil {
		return 0, "", fmt.Errorf("failed to sync %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, "", fmt.Errorf("failed to close %s: %w", filename, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, filename)); err != nil {
		return 0, "", fmt.Errorf("failed to move %s into place: %w", filename, err)
	}
	committed = true

	return written, f.checksum.Sum(h), nil
}
