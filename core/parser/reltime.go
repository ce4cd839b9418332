package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var relativeTimePattern = regexp.MustCompile(`(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago`)

const day = 24 * time.Hour

// unitLengths bounds each unit. Months and years use their longest length.
var unitLengths = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    day,
	"week":   7 * day,
	"month":  31 * day,
	"year":   366 * day,
}

// ResolveRelativeTime finds a phrase like "3 hours ago" in text and returns
// the instant it refers to, counted back from now.
func ResolveRelativeTime(text string, now time.Time) (time.Time, error) {
	m := relativeTimePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("no relative time in %q", text)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad amount in %q: %w", m[0], err)
	}

	unit := unitLengths[m[2]]
	if int64(n) > math.MaxInt64/int64(unit) {
		return time.Time{}, fmt.Errorf("amount out of range in %q", m[0])
	}

	switch m[2] {
	case "month":
		return now.AddDate(0, -n, 0), nil
	case "year":
		return now.AddDate(-n, 0, 0), nil
	}
	return now.Add(-time.Duration(n) * unit), nil
}
