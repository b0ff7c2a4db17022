package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"
	"github.com/CRTOsp3ck/mwce/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Caches are the stores push events write into.
type Caches struct {
	Player     *store.PlayerStore
	Territory  *store.TerritoryStore
	Operations *store.OperationsStore
	Campaign   *store.CampaignStore
	Travel     *store.TravelStore
}

// Sync binds push events to cache mutations.
type Sync struct {
	caches Caches
	clock  clock.Clock
	log    zerolog.Logger
}

func NewSync(c Caches, clk clock.Clock, log zerolog.Logger) *Sync {
	if clk == nil {
		clk = clock.Real
	}
	return &Sync{caches: c, clock: clk, log: log}
}

// Register installs one handler per push event on d.
func (s *Sync) Register(d *Dispatcher) {
	d.Handle(model.EventIncomeGenerated, decode(s.incomeGenerated))
	d.Handle(model.EventHotspotUpdated, decode(s.hotspotUpdated))
	d.Handle(model.EventHotspotsUpdated, decode(s.hotspotsUpdated))
	d.Handle(model.EventNotification, decode(s.notification))
	d.Handle(model.EventPlayerRegionChanged, decode(s.regionChanged))
	d.Handle(model.EventCampaignActionTracked, decode(s.campaignActionTracked))
	d.Handle(model.EventCampaignChoiceUpdated, decode(s.campaignChoiceUpdated))
	d.Handle(model.EventCampaignPOIUpdated, decode(s.campaignPOIUpdated))
	d.Handle(model.EventCampaignOperationUpdated, decode(s.campaignOperationUpdated))
	d.Handle(model.EventOperationsRefreshed, decode(s.operationsRefreshed))
}

func decode[T any](apply func(ctx context.Context, p T) error) Handler {
	return func(ctx context.Context, ev model.StreamEvent) error {
		var p T
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		return apply(ctx, p)
	}
}

func (s *Sync) incomeGenerated(_ context.Context, p model.IncomeGeneratedPayload) error {
	skipped := 0
	for _, u := range p.Updates {
		u.LastIncomeTime = model.CanonicalTime(u.LastIncomeTime)
		u.NextIncomeTime = model.CanonicalTime(u.NextIncomeTime)
		if u.NextIncomeTime == "" {
			u.NextIncomeTime = model.DeriveNextIncome(u.LastIncomeTime)
		}
		if !s.caches.Territory.ApplyIncome(u) {
			skipped++
		}
	}
	if skipped > 0 {
		s.log.Debug().Int("skipped", skipped).Msg("income for unknown hotspots")
	}
	s.recomputePending()
	return nil
}

func (s *Sync) hotspotUpdated(_ context.Context, p model.HotspotUpdatedPayload) error {
	return s.upsert([]model.Hotspot{p.Hotspot})
}

func (s *Sync) hotspotsUpdated(_ context.Context, p model.HotspotsUpdatedPayload) error {
	return s.upsert(p.Hotspots)
}

func (s *Sync) upsert(hs []model.Hotspot) error {
	for _, h := range hs {
		if h.ID == "" {
			return errors.New("hotspot update without id")
		}
	}
	updated, inserted := s.caches.Territory.UpsertHotspots(hs)
	s.log.Debug().Int("updated", updated).Int("inserted", inserted).Int("dropped", len(hs)-updated-inserted).Msg("hotspots upserted")
	s.recomputePending()
	return nil
}

func (s *Sync) recomputePending() {
	p := s.caches.Player
	p.SetPendingCollections(s.caches.Territory.PendingTotal(p.PlayerID()))
}

func (s *Sync) notification(_ context.Context, p model.NotificationPayload) error {
	n := p.Notification
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp == "" {
		n.Timestamp = model.FormatTime(s.clock.Now())
	}
	s.caches.Player.AddNotification(n)
	return nil
}

type step struct {
	name string
	fn   func(context.Context) error
}

// regionChanged reloads every region-scoped cache. Fetches run one after
// another; a failed fetch is reported but does not stop the rest.
func (s *Sync) regionChanged(ctx context.Context, p model.RegionChangedPayload) error {
	c := s.caches
	c.Player.SetRegion(p.RegionID, p.RegionName)

	c.Territory.StopTimer()
	c.Operations.StopTimer()
	c.Territory.Reset()
	c.Operations.Reset()
	c.Travel.Reset()

	steps := []step{
		{"profile", c.Player.FetchProfile},
		{"current region", c.Travel.FetchCurrentRegion},
		{"available regions", c.Travel.FetchAvailableRegions},
		{"territory", c.Territory.FetchTerritoryData},
		{"recent actions", c.Territory.FetchRecentActions},
		{"available operations", c.Operations.FetchAvailable},
		{"current operations", c.Operations.FetchCurrent},
		{"refresh info", c.Operations.FetchRefreshInfo},
	}
	if c.Campaign != nil && c.Campaign.SelectedCampaignID() != "" {
		steps = append(steps, step{"campaign", c.Campaign.RefreshMission})
	}

	var errs []error
	for _, st := range steps {
		if err := st.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
		}
	}

	c.Territory.StartTimer()
	c.Operations.StartTimer()

	c.Player.AddNotification(model.Notification{
		ID:        uuid.NewString(),
		PlayerID:  p.PlayerID,
		Message:   fmt.Sprintf("You have arrived in %s.", p.RegionName),
		Type:      model.NotificationTravel,
		Timestamp: model.FormatTime(s.clock.Now()),
	})
	s.log.Info().Str("region", p.RegionID).Int("failed", len(errs)).Msg("region reloaded")
	return errors.Join(errs...)
}

func (s *Sync) campaignActionTracked(ctx context.Context, p model.CampaignActionTrackedPayload) error {
	if !p.ConditionCompleted && !p.MissionCompleted {
		return nil
	}
	return s.refreshCampaign(ctx)
}

func (s *Sync) campaignChoiceUpdated(ctx context.Context, p model.CampaignChoiceUpdatedPayload) error {
	s.caches.Campaign.UpsertChoice(p.MissionID, p.Choice)
	if !p.ConditionCompleted {
		return nil
	}
	return s.refreshCampaign(ctx)
}

func (s *Sync) refreshCampaign(ctx context.Context) error {
	if s.caches.Campaign.SelectedCampaignID() == "" {
		return nil
	}
	return s.caches.Campaign.RefreshMission(ctx)
}

func (s *Sync) campaignPOIUpdated(_ context.Context, p model.CampaignPOIUpdatedPayload) error {
	if p.POI.ID == "" {
		return errors.New("poi update without id")
	}
	s.caches.Campaign.UpsertPOI(p.POI)
	return nil
}

func (s *Sync) campaignOperationUpdated(_ context.Context, p model.CampaignOperationUpdatedPayload) error {
	if p.Operation.ID == "" {
		return errors.New("operation update without id")
	}
	s.caches.Campaign.UpsertOperation(p.Operation)
	return nil
}

func (s *Sync) operationsRefreshed(_ context.Context, p model.OperationsRefreshedPayload) error {
	s.caches.Operations.ReplaceCatalog(p.Operations, &p.RefreshInfo)
	return nil
}
