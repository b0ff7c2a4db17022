package store

import (
	"context"
	"sync"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

func reply[T any](v T) (*api.Result[T], error) {
	return &api.Result[T]{Data: v}, nil
}

type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(name string) {
	c.mu.Lock()
	c.log = append(c.log, name)
	c.mu.Unlock()
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, x := range c.log {
		if x == name {
			n++
		}
	}
	return n
}

type fakePlayerAPI struct {
	calls
	profile model.PlayerProfile
	notes   []model.Notification
}

func (f *fakePlayerAPI) GetProfile(context.Context) (*api.Result[model.PlayerProfile], error) {
	f.add("profile")
	return reply(f.profile)
}

func (f *fakePlayerAPI) GetStats(context.Context) (*api.Result[model.PlayerStats], error) {
	return reply(model.PlayerStats{})
}

func (f *fakePlayerAPI) GetNotifications(context.Context) (*api.Result[[]model.Notification], error) {
	return reply(f.notes)
}

func (f *fakePlayerAPI) MarkNotificationRead(context.Context, string) (*api.Result[struct{}], error) {
	return reply(struct{}{})
}

func (f *fakePlayerAPI) MarkAllNotificationsRead(context.Context) (*api.Result[struct{}], error) {
	return reply(struct{}{})
}

func (f *fakePlayerAPI) CollectAllPending(context.Context) (*api.Result[model.CollectAllResponse], error) {
	return reply(model.CollectAllResponse{CollectedAmount: 500, HotspotsCount: 2})
}

// loadedPlayer returns a player cache already holding p.
func loadedPlayer(p model.PlayerProfile) *PlayerStore {
	s := NewPlayerStore(&fakePlayerAPI{profile: p}, Options{})
	s.ReplaceProfile(p)
	return s
}

type fakeMarketAPI struct {
	calls
	listings map[model.ResourceType]model.MarketListing
}

func (f *fakeMarketAPI) GetListings(context.Context) (*api.Result[[]model.MarketListing], error) {
	var out []model.MarketListing
	for _, l := range f.listings {
		out = append(out, l)
	}
	return reply(out)
}

func (f *fakeMarketAPI) GetListing(_ context.Context, rt model.ResourceType) (*api.Result[model.MarketListing], error) {
	f.add("listing")
	return reply(f.listings[rt])
}

func (f *fakeMarketAPI) GetTransactions(context.Context) (*api.Result[[]model.MarketTransaction], error) {
	return reply([]model.MarketTransaction(nil))
}

func (f *fakeMarketAPI) GetHistory(context.Context, model.ResourceType) (*api.Result[[]model.MarketHistory], error) {
	return reply([]model.MarketHistory(nil))
}

func (f *fakeMarketAPI) Buy(_ context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	f.add("buy")
	l := f.listings[rt]
	return reply(model.MarketTransaction{ID: "tx-buy", ResourceType: rt, Quantity: qty, Price: l.Price, TotalCost: l.Price * int64(qty)})
}

func (f *fakeMarketAPI) Sell(_ context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	f.add("sell")
	l := f.listings[rt]
	return reply(model.MarketTransaction{ID: "tx-sell", ResourceType: rt, Quantity: qty, Price: l.Price, TotalCost: l.Price * int64(qty)})
}

type fakeTerritoryAPI struct {
	calls
	hotspots []model.Hotspot
	result   model.ActionResult
	down     error
}

func (f *fakeTerritoryAPI) GetRegions(context.Context) (*api.Result[[]model.Region], error) {
	return reply([]model.Region{{ID: "r1", Name: "Downtown"}})
}

func (f *fakeTerritoryAPI) GetDistricts(context.Context, string) (*api.Result[[]model.District], error) {
	return reply([]model.District{{ID: "d1", RegionID: "r1"}, {ID: "d2", RegionID: "r2"}})
}

func (f *fakeTerritoryAPI) GetCities(context.Context, string) (*api.Result[[]model.City], error) {
	return reply([]model.City{{ID: "c1", DistrictID: "d1"}, {ID: "c2", DistrictID: "d2"}})
}

func (f *fakeTerritoryAPI) GetHotspots(context.Context, string) (*api.Result[[]model.Hotspot], error) {
	f.add("hotspots")
	if f.down != nil {
		return nil, f.down
	}
	return reply(append([]model.Hotspot(nil), f.hotspots...))
}

func (f *fakeTerritoryAPI) GetControlledHotspots(context.Context) (*api.Result[[]model.Hotspot], error) {
	return reply([]model.Hotspot(nil))
}

func (f *fakeTerritoryAPI) GetHotspot(_ context.Context, id string) (*api.Result[model.Hotspot], error) {
	f.add("hotspot")
	for _, h := range f.hotspots {
		if h.ID == id {
			return reply(h)
		}
	}
	return nil, &api.Error{Status: 404, Code: "not_found", Message: "hotspot not found"}
}

func (f *fakeTerritoryAPI) GetRecentActions(context.Context) (*api.Result[[]model.TerritoryAction], error) {
	return reply([]model.TerritoryAction(nil))
}

func (f *fakeTerritoryAPI) PerformAction(context.Context, model.ActionType, model.PerformActionRequest) (*api.Result[model.ActionResult], error) {
	f.add("action")
	return reply(f.result)
}

func (f *fakeTerritoryAPI) CollectHotspotIncome(_ context.Context, id string) (*api.Result[model.CollectResponse], error) {
	return reply(model.CollectResponse{HotspotID: id, CollectedAmount: 250})
}

func (f *fakeTerritoryAPI) CollectAllHotspotIncome(context.Context) (*api.Result[model.CollectAllResponse], error) {
	return reply(model.CollectAllResponse{CollectedAmount: 400, HotspotsCount: 2})
}

type fakeOperationsAPI struct {
	calls
	ops    []model.Operation
	result model.OperationResult
	next   model.OperationAttempt
}

func (f *fakeOperationsAPI) GetAvailable(context.Context) (*api.Result[[]model.Operation], error) {
	return reply(f.ops)
}

func (f *fakeOperationsAPI) GetCurrent(context.Context) (*api.Result[[]model.OperationAttempt], error) {
	return reply([]model.OperationAttempt(nil))
}

func (f *fakeOperationsAPI) GetCompleted(context.Context) (*api.Result[[]model.OperationAttempt], error) {
	return reply([]model.OperationAttempt(nil))
}

func (f *fakeOperationsAPI) GetRefreshInfo(context.Context) (*api.Result[model.OperationsRefreshInfo], error) {
	return reply(model.OperationsRefreshInfo{RefreshInterval: 60})
}

func (f *fakeOperationsAPI) Start(_ context.Context, id string, res model.OperationResources) (*api.Result[model.OperationAttempt], error) {
	f.add("start")
	a := f.next
	a.OperationID = id
	return reply(a)
}

func (f *fakeOperationsAPI) Cancel(_ context.Context, id string) (*api.Result[model.OperationAttempt], error) {
	f.add("cancel")
	return reply(model.OperationAttempt{ID: id, Status: model.StatusCancelled})
}

func (f *fakeOperationsAPI) Collect(context.Context, string) (*api.Result[model.OperationResult], error) {
	f.add("collect")
	return reply(f.result)
}

type fakeCampaignAPI struct {
	calls
	progress model.PlayerCampaignProgress
	started  bool
	mission  model.Mission
	pois     []model.CampaignPOI
	ops      []model.MissionOperation
	tracked  model.TrackActionResponse
	gate     chan struct{}
}

func (f *fakeCampaignAPI) GetCampaigns(context.Context) (*api.Result[[]model.Campaign], error) {
	return reply([]model.Campaign{{ID: "camp1", Title: "Rise"}})
}

func (f *fakeCampaignAPI) GetCampaign(_ context.Context, id string) (*api.Result[model.Campaign], error) {
	f.add("campaign")
	return reply(model.Campaign{ID: id, Title: "Rise"})
}

func (f *fakeCampaignAPI) GetProgress(context.Context, string) (*api.Result[model.ProgressResponse], error) {
	f.add("progress")
	if !f.started {
		return reply(model.ProgressResponse{})
	}
	p := f.progress
	return reply(model.ProgressResponse{Started: true, Progress: &p})
}

func (f *fakeCampaignAPI) Start(context.Context, string) (*api.Result[model.PlayerCampaignProgress], error) {
	f.started = true
	return reply(f.progress)
}

func (f *fakeCampaignAPI) GetMission(context.Context, string) (*api.Result[model.Mission], error) {
	f.add("mission")
	return reply(f.mission)
}

func (f *fakeCampaignAPI) SelectChoice(_ context.Context, _, choiceID string) (*api.Result[model.PlayerCampaignProgress], error) {
	p := f.progress
	p.CurrentChoiceID = choiceID
	return reply(p)
}

func (f *fakeCampaignAPI) CompleteChoice(context.Context, string, string) (*api.Result[model.ChoiceCompleteResponse], error) {
	p := f.progress
	return reply(model.ChoiceCompleteResponse{Progress: &p, Rewards: &model.ResourceEffect{Money: 1000, Respect: 5}})
}

func (f *fakeCampaignAPI) GetChoicePOIs(context.Context, string) (*api.Result[[]model.CampaignPOI], error) {
	f.add("pois")
	return reply(append([]model.CampaignPOI(nil), f.pois...))
}

func (f *fakeCampaignAPI) GetChoiceOperations(context.Context, string) (*api.Result[[]model.MissionOperation], error) {
	f.add("operations")
	return reply(append([]model.MissionOperation(nil), f.ops...))
}

func (f *fakeCampaignAPI) InteractWithPOI(context.Context, string, model.InteractionType) (*api.Result[model.InteractResponse], error) {
	return reply(model.InteractResponse{Success: true, ResourceEffect: &model.ResourceEffect{Heat: 3, Money: -50}})
}

func (f *fakeCampaignAPI) CompletePOI(context.Context, string) (*api.Result[model.PlayerCampaignProgress], error) {
	return reply(f.progress)
}

func (f *fakeCampaignAPI) CompleteOperation(context.Context, string, string) (*api.Result[model.PlayerCampaignProgress], error) {
	return reply(f.progress)
}

func (f *fakeCampaignAPI) TrackAction(context.Context, model.TrackedAction) (*api.Result[model.TrackActionResponse], error) {
	f.add("track")
	if f.gate != nil {
		<-f.gate
	}
	return reply(f.tracked)
}

type fakeTravelAPI struct {
	calls
	regions []model.Region
	current *model.Region
	resp    model.TravelResponse
}

func (f *fakeTravelAPI) GetAvailableRegions(context.Context) (*api.Result[[]model.Region], error) {
	return reply(f.regions)
}

func (f *fakeTravelAPI) GetCurrentRegion(context.Context) (*api.Result[*model.Region], error) {
	return reply(f.current)
}

func (f *fakeTravelAPI) Travel(context.Context, string) (*api.Result[model.TravelResponse], error) {
	f.add("travel")
	return reply(f.resp)
}

func (f *fakeTravelAPI) GetHistory(context.Context, int) (*api.Result[[]model.TravelAttempt], error) {
	f.add("history")
	return reply([]model.TravelAttempt{{ID: "t1", ToRegionID: "r2", Success: f.resp.Success}})
}
