package clock

import (
	"sync"
	"time"
)

// Interval runs fn every period on its own goroutine until stopped.
type Interval struct {
	clock  Clock
	period time.Duration
	fn     func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewInterval(c Clock, period time.Duration, fn func()) *Interval {
	if c == nil {
		c = Real
	}
	if period <= 0 {
		period = time.Second
	}
	return &Interval{clock: c, period: period, fn: fn}
}

// Start installs the loop. A running loop is stopped first.
func (i *Interval) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()

	ticker := i.clock.NewTicker(i.period)
	stop := make(chan struct{})
	done := make(chan struct{})
	i.stop, i.done = stop, done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				select {
				case <-stop:
					return
				default:
				}
				i.fn()
			}
		}
	}()
}

// Stop removes the loop and waits for it to exit. Safe to call when idle.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
}

func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stop != nil
}

func (i *Interval) stopLocked() {
	if i.stop == nil {
		return
	}
	close(i.stop)
	<-i.done
	i.stop, i.done = nil, nil
}
