package scraper

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var deMonths = map[string]time.Month{
	"januar":    time.January,
	"jänner":    time.January,
	"februar":   time.February,
	"märz":      time.March,
	"maerz":     time.March,
	"april":     time.April,
	"mai":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"august":    time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"dezember":  time.December,
}

var (
	numericDate = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	longDate    = regexp.MustCompile(`(\d{1,2})\.\s*([a-zäöü]+)\s+(\d{4})`)
)

// ParseDate parses German date forms as printed by the portals:
// "16.04.2025" and "16. April 2025". The result is UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.ToLower(strings.TrimSpace(dateStr))
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if m := numericDate.FindStringSubmatch(dateStr); m != nil {
		var day, month, year int
		if _, err := fmt.Sscanf(m[1]+" "+m[2]+" "+m[3], "%d %d %d", &day, &month, &year); err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", m[0], err)
		}
		return buildDate(year, time.Month(month), day)
	}

	if m := longDate.FindStringSubmatch(dateStr); m != nil {
		month, ok := deMonths[m[2]]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month: %s", m[2])
		}
		var day, year int
		if _, err := fmt.Sscanf(m[1]+" "+m[3], "%d %d", &day, &year); err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", m[0], err)
		}
		return buildDate(year, month, day)
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// DateFromURL parses the date carried by the last path segment of rawURL,
// e.g. https://epaper.zeit.de/abo/diezeit/16.04.2025.
func DateFromURL(rawURL string) (time.Time, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	segment := path.Base(strings.TrimSuffix(u.Path, "/"))
	t, err := ParseDate(segment)
	if err != nil {
		return time.Time{}, fmt.Errorf("no date in URL %s: %w", rawURL, err)
	}
	return t, nil
}

func buildDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month: %d", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid day: %d", day)
	}
	return t, nil
}
