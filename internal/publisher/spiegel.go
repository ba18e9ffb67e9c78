package publisher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/issue"
	"issue-fetcher/internal/normalize"
)

// Spiegel addresses issues as "SP/<year>/<number>" and only offers PDF.
type Spiegel struct {
	portal
}

func SpiegelHeft(iss issue.Issue) string {
	return fmt.Sprintf("SP/%d/%d", iss.Year, iss.Number)
}

func SpiegelFilename(heft string) string {
	return normalize.Filename(strings.ReplaceAll(heft, "/", "_") + ".pdf")
}

func (sp *Spiegel) Resolve(_ context.Context, _ browser.Session, req Request) (*Target, error) {
	format, err := requireFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if format != "pdf" {
		return nil, fmt.Errorf("%w: spiegel offers pdf only, got %s", ErrUnsupportedFormat, format)
	}
	iss, err := sp.issueFor(req)
	if err != nil {
		return nil, err
	}

	heft := SpiegelHeft(iss)
	query := url.Values{"heft": {heft}}
	return &Target{
		Issue:    iss,
		Format:   format,
		Filename: SpiegelFilename(heft),
		URL:      strings.TrimSuffix(sp.cfg.BaseURL, "/") + "/download/download.html?" + query.Encode(),
	}, nil
}
