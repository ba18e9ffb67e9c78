// Package normalize cleans page text and turns issue metadata into safe file
// names.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var spaces = regexp.MustCompile(`\s+`)

// Text replaces NBSP with plain spaces, collapses whitespace runs and trims.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Filename makes s usable as a single path element: separators and control
// characters become "_", surrounding dots and spaces are dropped.
func Filename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Trim(Text(b.String()), ". ")
	if name == "" {
		return "_"
	}
	return name
}

// Format turns ".PDF", " pdf" and "pdf" into "pdf".
func Format(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
}

// Formats splits space or comma separated format lists, normalises each entry
// and drops blanks and duplicates while keeping the order.
func Formats(values ...string) []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, v := range values {
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
			f = Format(f)
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// NormalizeURL trims the URL and drops the fragment.
func NormalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
