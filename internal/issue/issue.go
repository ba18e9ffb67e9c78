// Package issue models periodical issues and derives the issue that is current
// for a given date from ISO calendar weeks.
package issue

import (
	"fmt"
	"strings"
	"time"
)

// Issue identifies a single publication by year and week/issue number.
// Date is the publication date when the portal reports one.
type Issue struct {
	Year   int
	Number int
	Date   time.Time
}

func (i Issue) String() string {
	return fmt.Sprintf("%02d/%d", i.Number, i.Year)
}

// ShortYear returns the two-digit year used in slugs and filenames.
func (i Issue) ShortYear() int {
	return i.Year % 100
}

// Slug encodes the issue as WWYY.
func (i Issue) Slug() string {
	return fmt.Sprintf("%02d%02d", i.Number, i.ShortYear())
}

// Validate checks that the issue can be addressed on a portal.
func (i Issue) Validate() error {
	if i.Year < 1900 || i.Year > 9999 {
		return fmt.Errorf("invalid issue year: %d", i.Year)
	}
	if i.Number < 1 || i.Number > 53 {
		return fmt.Errorf("invalid issue number: %d", i.Number)
	}
	return nil
}

// Rule describes how a publisher maps a calendar date to its issue week.
//
// The issue week is the ISO week of now shifted by WeekOffset weeks. When a
// cutoff weekday is set and now falls on an earlier weekday (Monday first),
// the result moves one more week back: the issue of the week is not out yet.
type Rule struct {
	WeekOffset int
	Cutoff     time.Weekday
	HasCutoff  bool
}

// NewRule builds a Rule from a week offset and an optional weekday name.
func NewRule(weekOffset int, cutoff string) (Rule, error) {
	r := Rule{WeekOffset: weekOffset}
	if strings.TrimSpace(cutoff) == "" {
		return r, nil
	}
	wd, err := ParseWeekday(cutoff)
	if err != nil {
		return Rule{}, err
	}
	r.Cutoff = wd
	r.HasCutoff = true
	return r, nil
}

// Apply returns the issue current at now. The result carries no Date.
func (r Rule) Apply(now time.Time) Issue {
	d := now.AddDate(0, 0, 7*r.WeekOffset)
	if r.HasCutoff && mondayFirst(now.Weekday()) < mondayFirst(r.Cutoff) {
		d = d.AddDate(0, 0, -7)
	}
	year, week := d.ISOWeek()
	return Issue{Year: year, Number: week}
}

func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

// ParseWeekday accepts English weekday names and their three-letter forms.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return time.Sunday, fmt.Errorf("unknown weekday: %q", s)
	}
	return wd, nil
}

// ParseEdition parses the "NN/YYYY" form printed on issue pages.
func ParseEdition(s string) (Issue, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Issue{}, fmt.Errorf("empty edition string")
	}
	edition := fields[len(fields)-1]

	var iss Issue
	if _, err := fmt.Sscanf(edition, "%d/%d", &iss.Number, &iss.Year); err != nil {
		return Issue{}, fmt.Errorf("failed to parse edition %q: %w", edition, err)
	}
	if err := iss.Validate(); err != nil {
		return Issue{}, err
	}
	return iss, nil
}
