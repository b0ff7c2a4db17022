// Package devserver is a small authoritative game world used to run the
// client locally. It keeps everything in memory and applies a simplified
// rule set.
package devserver

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInsufficientFunds     = errors.New("not enough money")
	ErrInsufficientResources = errors.New("not enough resources")
	ErrCapacity              = errors.New("exceeds maximum capacity")
	ErrRequirementsNotMet    = errors.New("requirements not met")
	ErrConflict              = errors.New("conflict")
	ErrNoRegion              = errors.New("not in a region")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserExists            = errors.New("email already registered")
	ErrWeakPassword          = errors.New("password must be at least 8 characters")
)

const maxHeat = 100

// Publisher delivers push events to connected players.
type Publisher interface {
	SendToPlayer(playerID, event string, data any)
	SendToAll(event string, data any)
}

type nopPublisher struct{}

func (nopPublisher) SendToPlayer(string, string, any) {}
func (nopPublisher) SendToAll(string, any)            {}

type World struct {
	mu     sync.Mutex
	clock  clock.Clock
	rng    *rand.Rand
	events Publisher
	log    zerolog.Logger

	incomeEvery time.Duration

	accounts      map[string]*account
	players       map[string]*model.PlayerProfile
	stats         map[string]*model.PlayerStats
	notifications map[string][]model.Notification

	regions   []model.Region
	districts []model.District
	cities    []model.City
	hotspots  []*model.Hotspot
	actions   map[string][]model.TerritoryAction

	listings     map[model.ResourceType]*model.MarketListing
	transactions map[string][]model.MarketTransaction
	priceHistory []model.MarketHistory

	operations []model.Operation
	refresh    model.OperationsRefreshInfo
	attempts   map[string][]*model.OperationAttempt

	travels map[string][]model.TravelAttempt

	campaigns []model.Campaign
	progress  map[string]map[string]*model.PlayerCampaignProgress
}

type Options struct {
	Clock          clock.Clock
	Seed           int64
	IncomeInterval time.Duration
	Events         Publisher
	Logger         zerolog.Logger
}

// NewWorld builds an empty world. Call Seed to populate it.
func NewWorld(opts Options) *World {
	if opts.Clock == nil {
		opts.Clock = clock.Real
	}
	if opts.Events == nil {
		opts.Events = nopPublisher{}
	}
	if opts.IncomeInterval <= 0 {
		opts.IncomeInterval = model.IncomeInterval
	}
	seed := uint64(opts.Seed)
	return &World{
		clock:         opts.Clock,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		events:        opts.Events,
		log:           opts.Logger,
		incomeEvery:   opts.IncomeInterval,
		accounts:      map[string]*account{},
		players:       map[string]*model.PlayerProfile{},
		stats:         map[string]*model.PlayerStats{},
		notifications: map[string][]model.Notification{},
		actions:       map[string][]model.TerritoryAction{},
		listings:      map[model.ResourceType]*model.MarketListing{},
		transactions:  map[string][]model.MarketTransaction{},
		attempts:      map[string][]*model.OperationAttempt{},
		travels:       map[string][]model.TravelAttempt{},
		progress:      map[string]map[string]*model.PlayerCampaignProgress{},
	}
}

// SetPublisher swaps the push sink. Used when the broker is built after
// the world.
func (w *World) SetPublisher(p Publisher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p == nil {
		p = nopPublisher{}
	}
	w.events = p
}

func (w *World) now() string {
	return model.FormatTime(w.clock.Now())
}

func (w *World) player(id string) (*model.PlayerProfile, error) {
	p, ok := w.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// applyLocked adds d to the player's counters with the same clamping the
// client uses, bumps the version, and refreshes the title.
func (w *World) applyLocked(p *model.PlayerProfile, d model.ResourceDelta) {
	p.Money = max(p.Money+d.Money, 0)
	p.Crew = max(p.Crew+d.Crew, 0)
	p.Weapons = max(p.Weapons+d.Weapons, 0)
	p.Vehicles = max(p.Vehicles+d.Vehicles, 0)
	p.Respect = max(p.Respect+d.Respect, 0)
	p.Influence = max(p.Influence+d.Influence, 0)
	p.Heat = min(max(p.Heat+d.Heat, 0), maxHeat)
	p.Title = titleFor(p.Respect)
	p.LastActive = w.now()
	p.Version++
	if s := w.stats[p.ID]; s != nil {
		s.MaxHeatReached = max(s.MaxHeatReached, p.Heat)
		if d.Money > 0 {
			s.TotalMoneyEarned += d.Money
		}
	}
}

var titles = []struct {
	respect int
	title   string
}{
	{2500, "Godfather"},
	{1000, "Boss"},
	{400, "Consigliere"},
	{150, "Underboss"},
	{50, "Capo"},
	{10, "Soldier"},
}

func titleFor(respect int) string {
	for _, t := range titles {
		if respect >= t.respect {
			return t.title
		}
	}
	return "Associate"
}

func (w *World) notifyLocked(playerID string, typ model.NotificationType, msg string) {
	n := model.Notification{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Message:   msg,
		Type:      typ,
		Timestamp: w.now(),
	}
	w.notifications[playerID] = prepend(w.notifications[playerID], n)
	w.events.SendToPlayer(playerID, model.EventNotification, model.NotificationPayload{Notification: n})
}

// profileLocked returns a copy of the profile with derived totals filled in.
func (w *World) profileLocked(p *model.PlayerProfile) model.PlayerProfile {
	out := *p
	out.ControlledHotspots, out.HourlyRevenue, out.PendingCollections = 0, 0, 0
	for _, h := range w.hotspots {
		if h.Controller != p.ID {
			continue
		}
		out.ControlledHotspots++
		out.HourlyRevenue += h.Income
		out.PendingCollections += h.PendingCollection
	}
	out.TotalHotspotCount = len(w.hotspots)
	return out
}

func (w *World) regionByID(id string) (model.Region, bool) {
	for _, r := range w.regions {
		if r.ID == id {
			return r, true
		}
	}
	return model.Region{}, false
}

func (w *World) hotspotByID(id string) (*model.Hotspot, bool) {
	for _, h := range w.hotspots {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// regionOfHotspot walks city and district up to the region id.
func (w *World) regionOfHotspot(h *model.Hotspot) string {
	var districtID string
	for _, c := range w.cities {
		if c.ID == h.CityID {
			districtID = c.DistrictID
		}
	}
	for _, d := range w.districts {
		if d.ID == districtID {
			return d.RegionID
		}
	}
	return ""
}

func prepend[T any](list []T, v T) []T {
	return append([]T{v}, list...)
}

func limit[T any](list []T, n int) []T {
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return append([]T(nil), list...)
}

// roll returns true with probability pct/100.
func (w *World) roll(pct int) bool {
	return w.rng.IntN(100) < pct
}
