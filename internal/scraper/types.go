package scraper

import "errors"

// ErrNoMatch is returned when no element satisfies a lookup.
var ErrNoMatch = errors.New("no matching element")

// Anchor is a link found on a page, with Href resolved to an absolute URL.
type Anchor struct {
	Text string
	Href string
}

// Match describes which anchors qualify. Selectors are tried in order; an
// anchor must contain every non-empty Text (case-insensitive).
type Match struct {
	Selectors []string
	Texts     []string
}
