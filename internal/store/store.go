// Package store holds the client-side caches of server state. Each cache is
// constructed explicitly, refreshed by fetch actions and patched by push
// events; the player wallet is the only state written across caches.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"

	"github.com/rs/zerolog"
)

var (
	ErrNotLoaded             = errors.New("player profile not loaded")
	ErrInvalidQuantity       = errors.New("quantity must be greater than 0")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrRequirementsNotMet    = errors.New("operation requirements not met")
	ErrListingNotFound       = errors.New("listing not found")
	ErrUnknownHotspot        = errors.New("unknown hotspot")
	ErrUnknownOperation      = errors.New("unknown operation")
	ErrUnknownAttempt        = errors.New("unknown operation attempt")
	ErrAlreadyInRegion       = errors.New("already in that region")
	ErrNoRegion              = errors.New("region id is required")
	ErrNoCampaignSelected    = errors.New("no campaign selected")
	ErrNoChoiceSelected      = errors.New("no mission choice selected")
	ErrTrackingInProgress    = errors.New("action tracking already in progress")
)

// Change topics passed to the Observer.
const (
	TopicPlayer         = "player"
	TopicNotifications  = "player.notifications"
	TopicTerritory      = "territory"
	TopicTerritoryTick  = "territory.tick"
	TopicMarket         = "market"
	TopicOperations     = "operations"
	TopicOperationsTick = "operations.tick"
	TopicCampaign       = "campaign"
	TopicTravel         = "travel"
)

// Observer is told which cache changed. It must not block.
type Observer func(topic string)

type Options struct {
	Clock        clock.Clock
	Log          zerolog.Logger
	Observer     Observer
	TickInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.Real
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	return o
}

// base carries the loading/error flags and shared dependencies of a cache.
type base struct {
	opts Options

	statusMu sync.RWMutex
	loading  int
	err      string
}

func (b *base) setup(opts Options) {
	b.opts = opts.withDefaults()
}

func (b *base) Loading() bool {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.loading > 0
}

// Err is the message of the last failed action, "" after a success.
func (b *base) Err() string {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.err
}

func (b *base) ClearErr() {
	b.statusMu.Lock()
	b.err = ""
	b.statusMu.Unlock()
}

// track runs fn as one action: clears the error, raises the loading flag
// and records fn's error message for readers.
func (b *base) track(topic, action string, fn func() error) error {
	b.statusMu.Lock()
	b.loading++
	b.err = ""
	b.statusMu.Unlock()

	err := fn()

	b.statusMu.Lock()
	b.loading--
	if err != nil {
		b.err = api.Message(err)
	}
	b.statusMu.Unlock()

	if err != nil {
		b.opts.Log.Warn().Err(err).Str("action", action).Msg("action failed")
	}
	b.notify(topic)
	return err
}

func (b *base) notify(topic string) {
	if b.opts.Observer != nil {
		b.opts.Observer(topic)
	}
}

func (b *base) now() time.Time {
	return b.opts.Clock.Now()
}

func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

func clone[T any](list []T) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}
