package validation

import (
	"regexp"
	"time"
)

// Class codes: 1-20 chars, uppercase letters, digits and hyphens (ORD, PREF-A).
var classCodeRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{0,19}$`)

func IsValidClassCode(code string) bool {
	return classCodeRe.MatchString(code)
}

// IsValidQuantity reports whether q is usable as a share quantity (> 0).
func IsValidQuantity(q float64) bool {
	return q > 0
}

// IsValidPrice reports whether p is usable as a price per share (>= 0).
func IsValidPrice(p float64) bool {
	return p >= 0
}

// ParseReferenceDate parses a YYYY-MM-DD reference date; empty means "now".
func ParseReferenceDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
