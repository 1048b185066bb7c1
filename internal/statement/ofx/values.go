package ofx

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseAmount parses an OFX amount. The standard uses a dot as decimal
// separator but several banks emit "1.234,56" or "350,50".
func parseAmount(s string) (decimal.Decimal, bool) {
	clean := strings.TrimPrefix(strings.TrimSpace(s), "+")
	if clean == "" || strings.ContainsAny(clean, "eE") {
		return decimal.Decimal{}, false
	}

	lastDot := strings.LastIndexByte(clean, '.')
	lastComma := strings.LastIndexByte(clean, ',')

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// datetimePattern is YYYYMMDD[HHMMSS[.XXX]][[+-]TZ[:NAME]].
var datetimePattern = regexp.MustCompile(`^\d{8}(\d{6}(\.\d{1,3})?)?(\[[+-]?\d+(\.\d+)?(:\w+)?\])?$`)

// parseDate reads the calendar date of an OFX datetime. Time of day and
// timezone are dropped: a posting date is a calendar date.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !datetimePattern.MatchString(s) {
		return time.Time{}, false
	}

	t, err := time.Parse("20060102", s[:8])
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
