// Package clock abstracts wall time so countdowns and reconnect delays can
// be driven deterministically in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Timer interface {
	Stop() bool
}

// ClockFunc adapts a now function; tickers and timers use real time.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func (f ClockFunc) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (f ClockFunc) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Real is the system clock.
var Real Clock = ClockFunc(time.Now)

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
