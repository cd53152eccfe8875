package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDateWindow is the two-digit year pivot: years below it belong to
// the 2000s, the rest to the 1900s.
const DefaultDateWindow = 50

// month, day and a two- or four-digit year separated by "/" or "-"
var dateRegex = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)

// ParseDate parses M/D/Y or M-D-Y. The calendar date is built with
// overflow normalization and then compared against the parsed components,
// so "1/41/2015" (which normalizes to February 10) is rejected.
func ParseDate(s string, window int) (time.Time, bool) {
	m := dateRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = expandYear(year, window)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func expandYear(year, window int) int {
	if year < window {
		return 2000 + year
	}
	return 1900 + year
}
