package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/rs/zerolog"
)

// Handler applies one push event. A returned error is logged and dropped.
type Handler func(ctx context.Context, ev model.StreamEvent) error

// Dispatcher routes events to handlers by name. Handler failures and
// panics never reach the stream loop.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      zerolog.Logger
}

func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler), log: log}
}

// Handle registers h for event, replacing any previous handler.
func (d *Dispatcher) Handle(event string, h Handler) {
	d.mu.Lock()
	d.handlers[event] = h
	d.mu.Unlock()
}

// Dispatch runs the handler for ev and reports whether it succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.StreamEvent) (ok bool) {
	d.mu.RLock()
	h := d.handlers[ev.Type]
	d.mu.RUnlock()
	if h == nil {
		d.log.Debug().Str("event", ev.Type).Msg("no handler for event")
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("event", ev.Type).Str("panic", fmt.Sprint(r)).Msg("event handler panicked")
			ok = false
		}
	}()
	if err := h(ctx, ev); err != nil {
		d.log.Warn().Err(err).Str("event", ev.Type).Int("bytes", len(ev.Data)).Msg("event handler failed")
		return false
	}
	return true
}
