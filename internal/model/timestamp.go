package model

import (
	"fmt"
	"time"
)

// IncomeInterval is the period between two income ticks of a hotspot.
const IncomeInterval = time.Hour

// CanonicalTime reformats an RFC 3339 timestamp as UTC RFC 3339 with
// optional fractional seconds. Unparseable input is returned unchanged.
func CanonicalTime(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseTime(s)
	if err != nil {
		return s
	}
	return FormatTime(t)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// DeriveNextIncome returns last+IncomeInterval in canonical form, or "" if
// last is empty or unparseable.
func DeriveNextIncome(last string) string {
	if last == "" {
		return ""
	}
	t, err := ParseTime(last)
	if err != nil {
		return ""
	}
	return FormatTime(t.Add(IncomeInterval))
}
