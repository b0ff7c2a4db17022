package realtime

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ReconnectPolicy yields the delay before each reconnect attempt and gives
// up after MaxAttempts consecutive failures. Zero MaxAttempts never gives up.
type ReconnectPolicy struct {
	backoff     backoff.BackOff
	maxAttempts int
	attempts    int
}

type PolicyConfig struct {
	Initial     time.Duration
	Max         time.Duration
	Jitter      float64
	MaxAttempts int
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Initial:     5 * time.Second,
		Max:         2 * time.Minute,
		Jitter:      0.5,
		MaxAttempts: 10,
	}
}

func NewReconnectPolicy(cfg PolicyConfig) *ReconnectPolicy {
	b := backoff.NewExponentialBackOff()
	if cfg.Initial > 0 {
		b.InitialInterval = cfg.Initial
	}
	if cfg.Max > 0 {
		b.MaxInterval = cfg.Max
	}
	b.RandomizationFactor = cfg.Jitter
	b.Multiplier = 2
	b.Reset()
	return &ReconnectPolicy{backoff: b, maxAttempts: cfg.MaxAttempts}
}

// NewPolicy wraps any backoff.BackOff.
func NewPolicy(b backoff.BackOff, maxAttempts int) *ReconnectPolicy {
	b.Reset()
	return &ReconnectPolicy{backoff: b, maxAttempts: maxAttempts}
}

// Next returns the delay for the next attempt, or false once exhausted.
func (p *ReconnectPolicy) Next() (time.Duration, bool) {
	if p.maxAttempts > 0 && p.attempts >= p.maxAttempts {
		return 0, false
	}
	d := p.backoff.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	p.attempts++
	return d, true
}

func (p *ReconnectPolicy) Attempts() int { return p.attempts }

func (p *ReconnectPolicy) Reset() {
	p.attempts = 0
	p.backoff.Reset()
}
