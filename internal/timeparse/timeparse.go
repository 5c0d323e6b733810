// Package timeparse parses the two timestamp shapes carried by the police
// events feed: the canonical feed timestamp, and the Swedish
// "day month hour.minute" fragment that leads many event headlines.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/poliswatch/internal/domain"
)

// FeedLayout is the timestamp format the feed uses. The trailing UTC
// offset is mandatory; a timestamp without one is unusable.
const FeedLayout = "2006-01-02 15:04:05 -07:00"

const (
	// A headline date landing this far past its publish time belongs to
	// the prior year (December events published in January).
	yearRollbackAfter = 30 * 24 * time.Hour
	// A headline time still past the publish time by more than this was
	// published just after midnight and belongs to the prior day.
	dayRollbackAfter = 2 * time.Minute
)

// swedishMonths maps the twelve Swedish month names, lowercased, to
// calendar months.
var swedishMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"mars":      time.March,
	"april":     time.April,
	"maj":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"augusti":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// titlePattern matches the leading "12 januari 22.16" fragment: a 1-2
// digit day, a month word, a 1-2 digit hour, a dot, and a 2-digit minute.
var titlePattern = regexp.MustCompile(`^\s*(\d{1,2})\s+(\p{L}+)\s+(\d{1,2})\.(\d{2})`)

// ParseFeedTimestamp parses a feed timestamp ("2024-01-05 14:30:00
// +01:00"). The supplied UTC offset is preserved in the result rather
// than normalized to local time or UTC.
func ParseFeedTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &domain.ParseError{Input: s, Err: errEmptyTimestamp}
	}
	ts, err := time.Parse(FeedLayout, s)
	if err != nil {
		return time.Time{}, &domain.ParseError{Input: s, Err: err}
	}
	return ts, nil
}

var errEmptyTimestamp = fmt.Errorf("empty timestamp")

// EventTimeFromTitle extracts the occurrence time many headlines lead
// with ("12 januari 22.16, Mordbrand, Helsingborg"). The headline only
// carries day, month, and clock time, so year and UTC offset are borrowed
// from fallback. A candidate more than 30 days past fallback is moved
// back one year; one still more than two minutes past fallback is moved
// back one day. Headlines without the fragment, with an unknown month, or
// naming an impossible date return fallback unchanged.
func EventTimeFromTitle(title string, fallback time.Time) time.Time {
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return fallback
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := swedishMonths[strings.ToLower(m[2])]
	if !ok {
		return fallback
	}
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	if hour > 23 || minute > 59 {
		return fallback
	}

	candidate := time.Date(fallback.Year(), month, day, hour, minute, 0, 0, fallback.Location())
	if candidate.Day() != day || candidate.Month() != month {
		return fallback
	}

	if candidate.Sub(fallback) > yearRollbackAfter {
		candidate = candidate.AddDate(-1, 0, 0)
	}
	if candidate.Sub(fallback) > dayRollbackAfter {
		candidate = candidate.AddDate(0, 0, -1)
	}
	return candidate
}
