package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dmyDatePattern  = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})$`)
	ymdDatePattern  = regexp.MustCompile(`^(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})$`)
	dMonYPattern    = regexp.MustCompile(`(?i)^(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+(\d{4})$`)
	monDYPattern    = regexp.MustCompile(`(?i)^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+(\d{1,2}),?\s+(\d{4})$`)
	fallbackLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"2 January 2006",
		"01/02/2006",
	}
	monthsByAbbrev = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// ParseDate parses the date formats that appear on bank statements.
// Day-first numeric formats are tried before anything ambiguous, so
// 05/01/2025 is the 5th of January, not the 1st of May. Returns the
// zero time when nothing matches.
func ParseDate(value string) (time.Time, bool) {
	str := strings.TrimSpace(value)
	if str == "" {
		return time.Time{}, false
	}

	if m := dmyDatePattern.FindStringSubmatch(str); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	if m := ymdDatePattern.FindStringSubmatch(str); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := dMonYPattern.FindStringSubmatch(str); m != nil {
		month, ok := monthsByAbbrev[strings.ToLower(m[2])[:3]]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, month, day)
	}
	if m := monDYPattern.FindStringSubmatch(str); m != nil {
		month, ok := monthsByAbbrev[strings.ToLower(m[1])[:3]]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, month, day)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func makeDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	return validDate(year, time.Month(month), day)
}

// validDate rejects rolled-over dates like 32/01/2025, which time.Date
// would silently turn into the 1st of February.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
