package publisher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"issue-fetcher/internal/browser"
	"issue-fetcher/internal/issue"
	"issue-fetcher/internal/normalize"
	"issue-fetcher/internal/scraper"
)

// Zeit has no predictable download URLs: the issue page is found through the
// e-paper listing and the file link is read from that page.
type Zeit struct {
	portal
}

func ZeitFilename(date time.Time, iss issue.Issue, format string) string {
	return normalize.Filename(fmt.Sprintf("%s Die Zeit %02d-%02d.%s",
		date.Format("2006-01-02"), iss.ShortYear(), iss.Number, format))
}

func (z *Zeit) filterURL(iss issue.Issue) string {
	query := url.Values{
		"title": {"diezeit"},
		"issue": {fmt.Sprintf("%02d", iss.Number)},
		"year":  {strconv.Itoa(iss.Year)},
	}
	return z.cfg.BaseURL + "?" + query.Encode()
}

func (z *Zeit) Resolve(ctx context.Context, s browser.Session, req Request) (*Target, error) {
	format, err := requireFormat(req.Format)
	if err != nil {
		return nil, err
	}
	sel := z.cfg.Selectors

	// The listing filter only works once the main page was visited.
	if err := s.Navigate(ctx, z.cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("open e-paper listing: %w", err)
	}

	listingURL := z.cfg.BaseURL
	match := scraper.Match{Selectors: []string{sel.CurrentLink}, Texts: []string{sel.CurrentText}}
	if req.Issue != nil {
		if err := req.Issue.Validate(); err != nil {
			return nil, err
		}
		listingURL = z.filterURL(*req.Issue)
		if err := s.Navigate(ctx, listingURL); err != nil {
			return nil, fmt.Errorf("open filtered listing: %w", err)
		}
		match = scraper.Match{Selectors: []string{sel.ArchiveLink}}
	}

	issueLink, err := z.waitAnchor(ctx, s, listingURL, match)
	if err != nil {
		return nil, fmt.Errorf("find issue page: %w", err)
	}

	if err := s.Navigate(ctx, issueLink.Href); err != nil {
		return nil, fmt.Errorf("open issue page: %w", err)
	}

	title, err := z.waitText(ctx, s, sel.Title, sel.TitleText)
	if err != nil {
		return nil, fmt.Errorf("find issue title: %w", err)
	}

	var iss issue.Issue
	if req.Issue != nil {
		iss = *req.Issue
	} else if iss, err = issue.ParseEdition(title); err != nil {
		return nil, fmt.Errorf("read edition from title %q: %w", title, err)
	}

	date, err := scraper.DateFromURL(issueLink.Href)
	if err != nil {
		return nil, err
	}
	iss.Date = date

	download, err := z.waitAnchor(ctx, s, issueLink.Href, scraper.Match{
		Selectors: []string{sel.DownloadLink},
		Texts:     []string{format},
	})
	if err != nil {
		return nil, fmt.Errorf("find %s download: %w", format, err)
	}

	return &Target{
		Issue:    iss,
		Format:   format,
		Filename: ZeitFilename(date, iss, format),
		URL:      download.Href,
	}, nil
}
