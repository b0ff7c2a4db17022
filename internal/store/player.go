package store

import (
	"context"
	"sync"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type PlayerAPI interface {
	GetProfile(ctx context.Context) (*api.Result[model.PlayerProfile], error)
	GetStats(ctx context.Context) (*api.Result[model.PlayerStats], error)
	GetNotifications(ctx context.Context) (*api.Result[[]model.Notification], error)
	MarkNotificationRead(ctx context.Context, id string) (*api.Result[struct{}], error)
	MarkAllNotificationsRead(ctx context.Context) (*api.Result[struct{}], error)
	CollectAllPending(ctx context.Context) (*api.Result[model.CollectAllResponse], error)
}

// PlayerStore caches the profile, stats and notifications. Its resource
// counters form the wallet every other cache writes through Apply.
type PlayerStore struct {
	base
	api PlayerAPI

	mu            sync.RWMutex
	profile       *model.PlayerProfile
	stats         *model.PlayerStats
	notifications []model.Notification
	seq           uint64
}

func NewPlayerStore(a PlayerAPI, opts Options) *PlayerStore {
	s := &PlayerStore{api: a}
	s.setup(opts)
	return s
}

func (s *PlayerStore) FetchProfile(ctx context.Context) error {
	return s.track(TopicPlayer, "fetch profile", func() error {
		res, err := s.api.GetProfile(ctx)
		if err != nil {
			return err
		}
		s.ReplaceProfile(res.Data)
		return nil
	})
}

// ReplaceProfile installs a fetched profile. A payload carrying a server
// version older than the cached one is discarded; without versions the
// newest write wins.
func (s *PlayerStore) ReplaceProfile(p model.PlayerProfile) bool {
	s.mu.Lock()
	if s.profile != nil && p.Version > 0 && s.profile.Version > p.Version {
		cached := s.profile.Version
		s.mu.Unlock()
		s.opts.Log.Debug().Int64("cached", cached).Int64("got", p.Version).Msg("stale profile ignored")
		return false
	}
	s.profile = &p
	s.seq++
	s.mu.Unlock()
	s.notify(TopicPlayer)
	return true
}

func (s *PlayerStore) FetchStats(ctx context.Context) error {
	return s.track(TopicPlayer, "fetch stats", func() error {
		res, err := s.api.GetStats(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats = &res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *PlayerStore) FetchNotifications(ctx context.Context) error {
	return s.track(TopicNotifications, "fetch notifications", func() error {
		res, err := s.api.GetNotifications(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.notifications = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *PlayerStore) MarkNotificationRead(ctx context.Context, id string) error {
	return s.track(TopicNotifications, "mark notification read", func() error {
		if _, err := s.api.MarkNotificationRead(ctx, id); err != nil {
			return err
		}
		s.mu.Lock()
		for i := range s.notifications {
			if s.notifications[i].ID == id {
				s.notifications[i].Read = true
			}
		}
		s.mu.Unlock()
		return nil
	})
}

func (s *PlayerStore) MarkAllNotificationsRead(ctx context.Context) error {
	return s.track(TopicNotifications, "mark all notifications read", func() error {
		if _, err := s.api.MarkAllNotificationsRead(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		for i := range s.notifications {
			s.notifications[i].Read = true
		}
		s.mu.Unlock()
		return nil
	})
}

// CollectAllPending collects every hotspot through the player endpoint.
func (s *PlayerStore) CollectAllPending(ctx context.Context) (*api.Result[model.CollectAllResponse], error) {
	var out *api.Result[model.CollectAllResponse]
	err := s.track(TopicPlayer, "collect all pending", func() error {
		res, err := s.api.CollectAllPending(ctx)
		if err != nil {
			return err
		}
		s.Apply(model.ResourceDelta{Money: res.Data.CollectedAmount})
		s.SetPendingCollections(0)
		out = res
		return nil
	})
	return out, err
}

// Apply adds delta to the resource counters, clamping each at zero.
func (s *PlayerStore) Apply(delta model.ResourceDelta) error {
	if delta.IsZero() {
		return nil
	}
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	p := s.profile
	p.Money = clamp64(p.Money + delta.Money)
	p.Crew = clamp(p.Crew + delta.Crew)
	p.Weapons = clamp(p.Weapons + delta.Weapons)
	p.Vehicles = clamp(p.Vehicles + delta.Vehicles)
	p.Respect = clamp(p.Respect + delta.Respect)
	p.Influence = clamp(p.Influence + delta.Influence)
	p.Heat = clamp(p.Heat + delta.Heat)
	s.seq++
	s.mu.Unlock()
	s.notify(TopicPlayer)
	return nil
}

func (s *PlayerStore) SetPendingCollections(total int64) {
	s.mutate(func(p *model.PlayerProfile) { p.PendingCollections = total })
}

func (s *PlayerStore) SetRegion(id, name string) {
	s.mutate(func(p *model.PlayerProfile) {
		p.CurrentRegionID = id
		p.CurrentRegionName = name
	})
}

func (s *PlayerStore) AdjustControlledHotspots(n int) {
	s.mutate(func(p *model.PlayerProfile) {
		p.ControlledHotspots = clamp(p.ControlledHotspots + n)
	})
}

func (s *PlayerStore) mutate(fn func(p *model.PlayerProfile)) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	fn(s.profile)
	s.seq++
	s.mu.Unlock()
	s.notify(TopicPlayer)
}

// AddNotification prepends n; the list is newest first.
func (s *PlayerStore) AddNotification(n model.Notification) {
	s.mu.Lock()
	s.notifications = prepend(s.notifications, n)
	s.mu.Unlock()
	s.notify(TopicNotifications)
}

func (s *PlayerStore) Profile() (model.PlayerProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return model.PlayerProfile{}, false
	}
	return *s.profile, true
}

func (s *PlayerStore) Money() int64 {
	p, _ := s.Profile()
	return p.Money
}

func (s *PlayerStore) PlayerID() string {
	p, _ := s.Profile()
	return p.ID
}

func (s *PlayerStore) Stats() (model.PlayerStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return model.PlayerStats{}, false
	}
	return *s.stats, true
}

func (s *PlayerStore) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.notifications)
}

func (s *PlayerStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, x := range s.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// Sequence increases with every local write to the profile.
func (s *PlayerStore) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Reset drops all cached player state.
func (s *PlayerStore) Reset() {
	s.mu.Lock()
	s.profile = nil
	s.stats = nil
	s.notifications = nil
	s.seq++
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicPlayer)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clamp64(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
