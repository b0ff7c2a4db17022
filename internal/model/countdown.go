package model

import (
	"fmt"
	"time"
)

const (
	CountdownNow       = "Now"
	CountdownReady     = "Ready to collect"
	CountdownCompleted = "Completed"
	CountdownUnknown   = "Unknown"
)

// SoonWindow is the trailing window in which a target counts as imminent.
const SoonWindow = 5 * time.Minute

// FormatDuration renders d as "1h 2m 3s", dropping leading zero units.
// Partial seconds are dropped, so anything under a second renders as
// CountdownNow.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return CountdownNow
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Remaining is max(0, target-now).
func Remaining(target, now time.Time) time.Duration {
	if d := target.Sub(now); d > 0 {
		return d
	}
	return 0
}

// IsSoon reports 0 <= target-now <= SoonWindow.
func IsSoon(target, now time.Time) bool {
	d := target.Sub(now)
	return d >= 0 && d <= SoonWindow
}
