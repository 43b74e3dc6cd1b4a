package css

import (
	"strings"
	"time"
)

// Helpers mapping optional metadata values onto record fields. A missing
// value never fails record construction; it becomes the schema sentinel.

// Str trims s and substitutes the null marker for empty strings.
func Str(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return StrNull
	}
	return s
}

// FloatOr dereferences v or returns def when it is absent.
func FloatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// JulianDate renders t as a YYYYJJJ ordinal date, or -1 when absent.
func JulianDate(t *time.Time) int64 {
	if t == nil {
		return IntNull
	}
	return int64(t.Year())*1000 + int64(t.YearDay())
}

// Timestamp returns t as epoch seconds, or def when absent.
func Timestamp(t *time.Time, def float64) float64 {
	if t == nil {
		return def
	}
	return float64(t.UnixMilli()) / 1000.0
}
