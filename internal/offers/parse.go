package offers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// parsePrice extracts a decimal number from a raw price cell. Currency
// symbols and whitespace are stripped, thousands-separator commas are
// removed. Unparsable values mean "price absent", never an error.
func parsePrice(raw string) (float64, bool) {
	s := nonPriceChars.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// dateLayouts are tried in order. Month-first slashed dates take
// priority over day-first, matching the upstream datasets.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDate best-effort parses a raw date cell. Unparsable or missing
// values mean "date absent".
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
