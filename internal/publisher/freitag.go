package publisher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/normalize"
)

// Freitag serves issues under a WWYY slug, e.g. /1625/der-freitag-1625.epub.
type Freitag struct {
	portal
}

func FreitagFilename(slug, format string) string {
	return normalize.Filename(fmt.Sprintf("der-freitag-%s.%s", slug, format))
}

func (f *Freitag) Resolve(_ context.Context, _ browser.Session, req Request) (*Target, error) {
	format, err := requireFormat(req.Format)
	if err != nil {
		return nil, err
	}
	iss, err := f.issueFor(req)
	if err != nil {
		return nil, err
	}

	slug := url.PathEscape(iss.Slug())
	return &Target{
		Issue:    iss,
		Format:   format,
		Filename: FreitagFilename(iss.Slug(), format),
		URL:      fmt.Sprintf("%s/%s/der-freitag-%s.%s", strings.TrimSuffix(f.cfg.BaseURL, "/"), slug, slug, url.PathEscape(format)),
	}, nil
}
