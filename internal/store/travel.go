package store

import (
	"context"
	"sync"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

// HeadquartersName is shown when the player is not in any region.
const HeadquartersName = "Headquarters"

const historyLimit = 20

type TravelAPI interface {
	GetAvailableRegions(ctx context.Context) (*api.Result[[]model.Region], error)
	GetCurrentRegion(ctx context.Context) (*api.Result[*model.Region], error)
	Travel(ctx context.Context, regionID string) (*api.Result[model.TravelResponse], error)
	GetHistory(ctx context.Context, limit int) (*api.Result[[]model.TravelAttempt], error)
}

type TravelStore struct {
	base
	api    TravelAPI
	player *PlayerStore

	mu        sync.RWMutex
	available []model.Region
	current   *model.Region
	history   []model.TravelAttempt
}

func NewTravelStore(a TravelAPI, player *PlayerStore, opts Options) *TravelStore {
	s := &TravelStore{api: a, player: player}
	s.setup(opts)
	return s
}

func (s *TravelStore) FetchAvailableRegions(ctx context.Context) error {
	return s.track(TopicTravel, "fetch available regions", func() error {
		res, err := s.api.GetAvailableRegions(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.available = res.Data
		s.mu.Unlock()
		return nil
	})
}

// FetchCurrentRegion loads the player's region; a null payload means the
// player is at headquarters.
func (s *TravelStore) FetchCurrentRegion(ctx context.Context) error {
	return s.track(TopicTravel, "fetch current region", func() error {
		res, err := s.api.GetCurrentRegion(ctx)
		if err != nil {
			return err
		}
		s.SetCurrentRegion(res.Data)
		return nil
	})
}

func (s *TravelStore) FetchHistory(ctx context.Context, limit int) error {
	return s.track(TopicTravel, "fetch travel history", func() error {
		res, err := s.api.GetHistory(ctx, limit)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.history = res.Data
		s.mu.Unlock()
		return nil
	})
}

// Travel moves the player to regionID. A police stop still costs the fine
// and heat even though the player stays put.
func (s *TravelStore) Travel(ctx context.Context, regionID string) (*api.Result[model.TravelResponse], error) {
	var out *api.Result[model.TravelResponse]
	err := s.track(TopicTravel, "travel", func() error {
		if regionID == "" {
			return ErrNoRegion
		}
		if s.IsInRegion(regionID) {
			return ErrAlreadyInRegion
		}
		res, err := s.api.Travel(ctx, regionID)
		if err != nil {
			return err
		}
		_ = s.player.Apply(res.Data.Delta())

		if res.Data.Success {
			r, ok := s.region(regionID)
			if !ok {
				r = model.Region{ID: regionID, Name: res.Data.RegionName}
			}
			if res.Data.RegionName != "" {
				r.Name = res.Data.RegionName
			}
			s.SetCurrentRegion(&r)
		}

		if h, err := s.api.GetHistory(ctx, historyLimit); err != nil {
			s.opts.Log.Warn().Err(err).Msg("refetch travel history failed")
		} else {
			s.mu.Lock()
			s.history = h.Data
			s.mu.Unlock()
		}
		out = res
		return nil
	})
	return out, err
}

// SetCurrentRegion records r as the player's region, nil for none, and
// mirrors it onto the profile.
func (s *TravelStore) SetCurrentRegion(r *model.Region) {
	s.mu.Lock()
	if r == nil {
		s.current = nil
	} else {
		cp := *r
		s.current = &cp
	}
	s.mu.Unlock()
	if r != nil {
		s.player.SetRegion(r.ID, r.Name)
	} else {
		s.player.SetRegion("", "")
	}
	s.notify(TopicTravel)
}

func (s *TravelStore) region(id string) (model.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.available {
		if r.ID == id {
			return r, true
		}
	}
	return model.Region{}, false
}

func (s *TravelStore) AvailableRegions() []model.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.available)
}

func (s *TravelStore) CurrentRegion() (model.Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.Region{}, false
	}
	return *s.current, true
}

func (s *TravelStore) CurrentLocationName() string {
	if r, ok := s.CurrentRegion(); ok && r.Name != "" {
		return r.Name
	}
	if p, ok := s.player.Profile(); ok && p.CurrentRegionName != "" {
		return p.CurrentRegionName
	}
	return HeadquartersName
}

// IsInRegion reports whether the player is in regionID, or in any region
// when regionID is empty.
func (s *TravelStore) IsInRegion(regionID string) bool {
	current := ""
	if r, ok := s.CurrentRegion(); ok {
		current = r.ID
	} else if p, ok := s.player.Profile(); ok {
		current = p.CurrentRegionID
	}
	if regionID == "" {
		return current != ""
	}
	return current == regionID
}

func (s *TravelStore) History() []model.TravelAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.history)
}

func (s *TravelStore) RecentAttempts(n int) []model.TravelAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.history) {
		n = len(s.history)
	}
	return clone(s.history[:n])
}

// Reset drops the cached regions and history. The profile's region fields
// are left to the player cache.
func (s *TravelStore) Reset() {
	s.mu.Lock()
	s.available, s.current, s.history = nil, nil, nil
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicTravel)
}
