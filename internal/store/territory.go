package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

type TerritoryAPI interface {
	GetRegions(ctx context.Context) (*api.Result[[]model.Region], error)
	GetDistricts(ctx context.Context, regionID string) (*api.Result[[]model.District], error)
	GetCities(ctx context.Context, districtID string) (*api.Result[[]model.City], error)
	GetHotspots(ctx context.Context, cityID string) (*api.Result[[]model.Hotspot], error)
	GetControlledHotspots(ctx context.Context) (*api.Result[[]model.Hotspot], error)
	GetHotspot(ctx context.Context, id string) (*api.Result[model.Hotspot], error)
	GetRecentActions(ctx context.Context) (*api.Result[[]model.TerritoryAction], error)
	PerformAction(ctx context.Context, action model.ActionType, req model.PerformActionRequest) (*api.Result[model.ActionResult], error)
	CollectHotspotIncome(ctx context.Context, id string) (*api.Result[model.CollectResponse], error)
	CollectAllHotspotIncome(ctx context.Context) (*api.Result[model.CollectAllResponse], error)
}

type TerritoryStore struct {
	base
	api    TerritoryAPI
	player *PlayerStore

	mu        sync.RWMutex
	regions   []model.Region
	districts []model.District
	cities    []model.City
	hotspots  []model.Hotspot
	actions   []model.TerritoryAction

	selectedRegion   string
	selectedDistrict string
	selectedCity     string
	selectedHotspot  string

	ticks atomic.Uint64
	timer *clock.Interval
}

func NewTerritoryStore(a TerritoryAPI, player *PlayerStore, opts Options) *TerritoryStore {
	s := &TerritoryStore{api: a, player: player}
	s.setup(opts)
	s.timer = clock.NewInterval(s.opts.Clock, s.opts.TickInterval, func() {
		s.ticks.Add(1)
		s.notify(TopicTerritoryTick)
	})
	return s
}

func (s *TerritoryStore) FetchRegions(ctx context.Context) error {
	return s.track(TopicTerritory, "fetch regions", func() error {
		res, err := s.api.GetRegions(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.regions = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *TerritoryStore) FetchDistricts(ctx context.Context, regionID string) error {
	return s.track(TopicTerritory, "fetch districts", func() error {
		res, err := s.api.GetDistricts(ctx, regionID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.districts = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *TerritoryStore) FetchCities(ctx context.Context, districtID string) error {
	return s.track(TopicTerritory, "fetch cities", func() error {
		res, err := s.api.GetCities(ctx, districtID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.cities = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *TerritoryStore) FetchHotspots(ctx context.Context, cityID string) error {
	return s.track(TopicTerritory, "fetch hotspots", func() error {
		res, err := s.api.GetHotspots(ctx, cityID)
		if err != nil {
			return err
		}
		hs := res.Data
		for i := range hs {
			hs[i].NormalizeTimes()
		}
		s.mu.Lock()
		s.hotspots = hs
		s.mu.Unlock()
		return nil
	})
}

// FetchTerritoryData loads the whole map. Each list is only replaced when
// its own request succeeds.
func (s *TerritoryStore) FetchTerritoryData(ctx context.Context) error {
	if err := s.FetchRegions(ctx); err != nil {
		return err
	}
	if err := s.FetchDistricts(ctx, ""); err != nil {
		return err
	}
	if err := s.FetchCities(ctx, ""); err != nil {
		return err
	}
	if err := s.FetchHotspots(ctx, ""); err != nil {
		return err
	}
	s.recomputePending()
	return nil
}

func (s *TerritoryStore) FetchControlledHotspots(ctx context.Context) error {
	return s.track(TopicTerritory, "fetch controlled hotspots", func() error {
		res, err := s.api.GetControlledHotspots(ctx)
		if err != nil {
			return err
		}
		s.UpsertHotspots(res.Data)
		return nil
	})
}

func (s *TerritoryStore) FetchRecentActions(ctx context.Context) error {
	return s.track(TopicTerritory, "fetch recent actions", func() error {
		res, err := s.api.GetRecentActions(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.actions = res.Data
		s.mu.Unlock()
		return nil
	})
}

// PerformAction commits resources against a hotspot. The player must hold
// what is committed.
func (s *TerritoryStore) PerformAction(ctx context.Context, action model.ActionType, hotspotID string, res model.ActionResources) (*api.Result[model.ActionResult], error) {
	var out *api.Result[model.ActionResult]
	err := s.track(TopicTerritory, "perform "+string(action), func() error {
		if _, ok := s.Hotspot(hotspotID); !ok {
			return ErrUnknownHotspot
		}
		p, ok := s.player.Profile()
		if !ok {
			return ErrNotLoaded
		}
		if p.Crew < res.Crew || p.Weapons < res.Weapons || p.Vehicles < res.Vehicles {
			return ErrInsufficientResources
		}

		r, err := s.api.PerformAction(ctx, action, model.PerformActionRequest{HotspotID: hotspotID, Resources: res})
		if err != nil {
			return err
		}
		result := r.Data
		_ = s.player.Apply(result.Delta())
		if result.Success && result.HotspotControlled && action == model.ActionTakeover {
			s.player.AdjustControlledHotspots(1)
		}

		s.mu.Lock()
		s.actions = prepend(s.actions, model.TerritoryAction{
			ID:        uuid.NewString(),
			PlayerID:  p.ID,
			Type:      action,
			HotspotID: hotspotID,
			Resources: res,
			Result:    &result,
			Timestamp: model.FormatTime(s.now()),
		})
		s.mu.Unlock()

		if h, err := s.api.GetHotspot(ctx, hotspotID); err != nil {
			s.opts.Log.Warn().Err(err).Str("hotspot", hotspotID).Msg("refetch after action failed")
		} else {
			s.replaceHotspot(h.Data)
		}
		out = r
		return nil
	})
	return out, err
}

func (s *TerritoryStore) CollectHotspotIncome(ctx context.Context, hotspotID string) (*api.Result[model.CollectResponse], error) {
	var out *api.Result[model.CollectResponse]
	err := s.track(TopicTerritory, "collect hotspot income", func() error {
		if _, ok := s.Hotspot(hotspotID); !ok {
			return ErrUnknownHotspot
		}
		r, err := s.api.CollectHotspotIncome(ctx, hotspotID)
		if err != nil {
			return err
		}
		now := model.FormatTime(s.now())
		s.mu.Lock()
		if i := s.indexLocked(hotspotID); i >= 0 {
			s.hotspots[i].PendingCollection = 0
			s.hotspots[i].LastCollectionTime = now
		}
		s.mu.Unlock()
		_ = s.player.Apply(model.ResourceDelta{Money: r.Data.CollectedAmount})
		s.recomputePending()
		out = r
		return nil
	})
	return out, err
}

func (s *TerritoryStore) CollectAllHotspotIncome(ctx context.Context) (*api.Result[model.CollectAllResponse], error) {
	var out *api.Result[model.CollectAllResponse]
	err := s.track(TopicTerritory, "collect all hotspot income", func() error {
		r, err := s.api.CollectAllHotspotIncome(ctx)
		if err != nil {
			return err
		}
		owner := s.player.PlayerID()
		now := model.FormatTime(s.now())
		s.mu.Lock()
		for i := range s.hotspots {
			if controlledBy(s.hotspots[i], owner) {
				s.hotspots[i].PendingCollection = 0
				s.hotspots[i].LastCollectionTime = now
			}
		}
		s.mu.Unlock()
		_ = s.player.Apply(model.ResourceDelta{Money: r.Data.CollectedAmount})
		s.player.SetPendingCollections(0)
		out = r
		return nil
	})
	return out, err
}

// ApplyIncome patches a known hotspot from an income push. Unknown ids are
// reported false and left alone. Timestamps absent from the push keep their
// cached values; a new lastIncomeTime without a next one re-derives next.
func (s *TerritoryStore) ApplyIncome(u model.IncomeUpdate) bool {
	s.mu.Lock()
	i := s.indexLocked(u.HotspotID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	h := &s.hotspots[i]
	h.PendingCollection = u.PendingCollection
	if u.LastIncomeTime != "" {
		h.LastIncomeTime = u.LastIncomeTime
		h.NextIncomeTime = ""
	}
	if u.NextIncomeTime != "" {
		h.NextIncomeTime = u.NextIncomeTime
	}
	h.NormalizeTimes()
	s.mu.Unlock()
	s.notify(TopicTerritory)
	return true
}

// UpsertHotspots replaces known hotspots in place. An unknown id is
// inserted only when the record is controlled, which is how the server
// signals a newly activated hotspot; other unknown ids are dropped.
func (s *TerritoryStore) UpsertHotspots(hs []model.Hotspot) (updated, inserted int) {
	s.mu.Lock()
	for _, h := range hs {
		h.NormalizeTimes()
		if i := s.indexLocked(h.ID); i >= 0 {
			s.hotspots[i] = h
			updated++
			continue
		}
		if h.Controller != "" {
			s.hotspots = append(s.hotspots, h)
			inserted++
		}
	}
	s.mu.Unlock()
	if updated+inserted > 0 {
		s.notify(TopicTerritory)
	}
	return updated, inserted
}

func (s *TerritoryStore) replaceHotspot(h model.Hotspot) {
	s.UpsertHotspots([]model.Hotspot{h})
}

// PendingTotal sums pendingCollection over hotspots controlled by owner,
// or over every controlled hotspot when owner is empty.
func (s *TerritoryStore) PendingTotal(owner string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, h := range s.hotspots {
		if controlledBy(h, owner) {
			total += h.PendingCollection
		}
	}
	return total
}

func (s *TerritoryStore) recomputePending() {
	if s.player == nil {
		return
	}
	s.player.SetPendingCollections(s.PendingTotal(s.player.PlayerID()))
}

func controlledBy(h model.Hotspot, owner string) bool {
	if owner == "" {
		return h.Controller != ""
	}
	return h.Controller == owner
}

func (s *TerritoryStore) indexLocked(id string) int {
	for i := range s.hotspots {
		if s.hotspots[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TerritoryStore) SelectRegion(id string) {
	s.mu.Lock()
	s.selectedRegion, s.selectedDistrict, s.selectedCity, s.selectedHotspot = id, "", "", ""
	s.mu.Unlock()
	s.notify(TopicTerritory)
}

func (s *TerritoryStore) SelectDistrict(id string) {
	s.mu.Lock()
	s.selectedDistrict, s.selectedCity, s.selectedHotspot = id, "", ""
	s.mu.Unlock()
	s.notify(TopicTerritory)
}

func (s *TerritoryStore) SelectCity(id string) {
	s.mu.Lock()
	s.selectedCity, s.selectedHotspot = id, ""
	s.mu.Unlock()
	s.notify(TopicTerritory)
}

func (s *TerritoryStore) SelectHotspot(id string) {
	s.mu.Lock()
	s.selectedHotspot = id
	s.mu.Unlock()
	s.notify(TopicTerritory)
}

func (s *TerritoryStore) SelectedHotspot() (model.Hotspot, bool) {
	s.mu.RLock()
	id := s.selectedHotspot
	s.mu.RUnlock()
	return s.Hotspot(id)
}

func (s *TerritoryStore) Regions() []model.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.regions)
}

func (s *TerritoryStore) Districts() []model.District {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.districts)
}

func (s *TerritoryStore) Cities() []model.City {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cities)
}

func (s *TerritoryStore) Hotspots() []model.Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.hotspots)
}

func (s *TerritoryStore) RecentActions() []model.TerritoryAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.actions)
}

func (s *TerritoryStore) Hotspot(id string) (model.Hotspot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.hotspots[i], true
	}
	return model.Hotspot{}, false
}

func (s *TerritoryStore) ControlledHotspots(owner string) []model.Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Hotspot
	for _, h := range s.hotspots {
		if controlledBy(h, owner) {
			out = append(out, h)
		}
	}
	return out
}

// FilteredHotspots narrows the hotspots by the most specific selection.
func (s *TerritoryStore) FilteredHotspots() []model.Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := map[string]bool{}
	switch {
	case s.selectedCity != "":
		cities[s.selectedCity] = true
	case s.selectedDistrict != "":
		for _, c := range s.cities {
			if c.DistrictID == s.selectedDistrict {
				cities[c.ID] = true
			}
		}
	case s.selectedRegion != "":
		districts := map[string]bool{}
		for _, d := range s.districts {
			if d.RegionID == s.selectedRegion {
				districts[d.ID] = true
			}
		}
		for _, c := range s.cities {
			if districts[c.DistrictID] {
				cities[c.ID] = true
			}
		}
	default:
		return clone(s.hotspots)
	}

	var out []model.Hotspot
	for _, h := range s.hotspots {
		if cities[h.CityID] {
			out = append(out, h)
		}
	}
	return out
}

func (s *TerritoryStore) StartTimer() { s.timer.Start() }

func (s *TerritoryStore) StopTimer() { s.timer.Stop() }

func (s *TerritoryStore) TimerRunning() bool { return s.timer.Running() }

// Ticks counts timer ticks since construction.
func (s *TerritoryStore) Ticks() uint64 { return s.ticks.Load() }

// TimeRemaining formats the time until the hotspot's next income tick.
func (s *TerritoryStore) TimeRemaining(hotspotID string) string {
	h, ok := s.Hotspot(hotspotID)
	if !ok || h.NextIncomeTime == "" {
		return model.CountdownUnknown
	}
	next, err := model.ParseTime(h.NextIncomeTime)
	if err != nil {
		return model.CountdownUnknown
	}
	return model.FormatDuration(model.Remaining(next, s.now()))
}

func (s *TerritoryStore) IsIncomeSoon(hotspotID string) bool {
	h, ok := s.Hotspot(hotspotID)
	if !ok || h.NextIncomeTime == "" {
		return false
	}
	next, err := model.ParseTime(h.NextIncomeTime)
	if err != nil {
		return false
	}
	return model.IsSoon(next, s.now())
}

// Reset empties the cache. The timer is left as is.
func (s *TerritoryStore) Reset() {
	s.mu.Lock()
	s.regions, s.districts, s.cities, s.hotspots, s.actions = nil, nil, nil, nil, nil
	s.selectedRegion, s.selectedDistrict, s.selectedCity, s.selectedHotspot = "", "", "", ""
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicTerritory)
}

func (s *TerritoryStore) Close() { s.StopTimer() }
