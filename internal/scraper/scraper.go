// Package scraper inspects HTML snapshots of portal pages.
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"issue-fetcher/internal/normalize"
)

type Scraper struct {
	baseURL *url.URL
}

// NewScraper returns a scraper resolving relative links against pageURL.
func NewScraper(pageURL string) (*Scraper, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	return &Scraper{baseURL: u}, nil
}

// FindAnchor returns the first anchor in document order that matches m.
func (s *Scraper) FindAnchor(html string, m Match) (*Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, selector := range m.Selectors {
		var found *Anchor
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, ok := sel.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return true
			}
			text := normalize.Text(sel.Text())
			if !containsAll(text, m.Texts) {
				return true
			}
			found = &Anchor{Text: text, Href: s.resolve(href)}
			return false
		})
		if found != nil {
			return found, nil
		}
	}

	return nil, fmt.Errorf("%w: anchor %v with text %q", ErrNoMatch, m.Selectors, m.Texts)
}

// FindText returns the normalised text of the first element matching
// selector whose text contains contains.
func FindText(html, selector, contains string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var result string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := normalize.Text(sel.Text())
		if text == "" || !containsAll(text, []string{contains}) {
			return true
		}
		result = text
		return false
	})
	if result == "" {
		return "", fmt.Errorf("%w: %s containing %q", ErrNoMatch, selector, contains)
	}
	return result, nil
}

// Exists reports whether selector matches anything in html.
func Exists(html, selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

func (s *Scraper) resolve(href string) string {
	href = normalize.NormalizeURL(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.baseURL.ResolveReference(ref).String()
}

func containsAll(text string, parts []string) bool {
	lower := strings.ToLower(text)
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(p)) {
			return false
		}
	}
	return true
}
