package csvimport

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the accepted layouts for delivery dates in imported files.
// Day-first layouts follow the local convention.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
}

// ParseDate parses s with DateLayouts. Layouts without an offset are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseHouseholdSize reads an integer household size ("3" or "3.0").
// Anything unparseable or below 1 yields 1.
func ParseHouseholdSize(s string) int {
	n, ok := parseWhole(s)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// ParseQuantity reads a positive integer quantity ("2" or "2.0").
func ParseQuantity(s string) (int, bool) {
	n, ok := parseWhole(s)
	if !ok || n < 1 {
		return 0, false
	}
	return n, true
}

// parseWhole accepts integers and floats, truncating the fraction.
func parseWhole(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
