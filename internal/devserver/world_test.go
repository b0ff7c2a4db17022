package devserver

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	HashCost = bcrypt.MinCost
}

type sent struct {
	playerID string
	event    string
	data     any
}

type recorder struct {
	mu     sync.Mutex
	events []sent
}

func (r *recorder) SendToPlayer(playerID, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sent{playerID, event, data})
}

func (r *recorder) SendToAll(event string, data any) {
	r.SendToPlayer("", event, data)
}

func (r *recorder) named(event string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newWorld(t *testing.T) (*World, *clock.Manual, *recorder) {
	t.Helper()
	clk := clock.NewManual(start)
	rec := &recorder{}
	w := NewWorld(Options{Clock: clk, Seed: 7, IncomeInterval: time.Minute, Events: rec, Logger: zerolog.Nop()})
	if err := w.Seed(); err != nil {
		t.Fatal(err)
	}
	return w, clk, rec
}

func demo(t *testing.T, w *World) model.PlayerProfile {
	t.Helper()
	p, err := w.Login(model.LoginRequest{Email: DemoEmail, Password: DemoPassword})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSeedDemoAccount(t *testing.T) {
	w, _, _ := newWorld(t)
	p := demo(t, w)
	if p.CurrentRegionID != "r-north" || p.ControlledHotspots != 1 || p.PendingCollections != 400 {
		t.Fatalf("demo = %+v", p)
	}
	if p.HourlyRevenue != 400 || p.TotalHotspotCount != 5 {
		t.Fatalf("derived totals = %d/%d", p.HourlyRevenue, p.TotalHotspotCount)
	}
	if _, err := w.Login(model.LoginRequest{Email: DemoEmail, Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	w, _, _ := newWorld(t)
	if _, err := w.Register(model.RegisterRequest{Name: "x", Email: "x@y.z", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak password: %v", err)
	}
	if _, err := w.Register(model.RegisterRequest{Name: "x", Email: "not-an-email", Password: "long-enough"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email: %v", err)
	}
	if _, err := w.Register(model.RegisterRequest{Name: "x", Email: strings.ToUpper(DemoEmail), Password: "long-enough"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate: %v", err)
	}
	p, err := w.Register(model.RegisterRequest{Name: "Newcomer", Email: "new@mwce.dev", Password: "long-enough"})
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentRegionID != "" || p.Money != 10000 || p.Title != "Associate" {
		t.Fatalf("new player = %+v", p)
	}
	if n := w.Notifications(p.ID); len(n) != 1 {
		t.Fatalf("welcome notifications = %d", len(n))
	}
}

func TestTrade(t *testing.T) {
	w, _, _ := newWorld(t)
	p := demo(t, w)

	tx, err := w.Trade(p.ID, model.TransactionBuy, model.TradeRequest{ResourceType: model.ResourceCrew, Quantity: 3})
	if err != nil {
		t.Fatal(err)
	}
	if tx.TotalCost != 300 || tx.Price != 100 {
		t.Fatalf("tx = %+v", tx)
	}
	after, _ := w.Profile(p.ID)
	if after.Money != p.Money-300 || after.Crew != p.Crew+3 || after.Version <= p.Version {
		t.Fatalf("after buy = %+v", after)
	}
	if l, _ := w.Listing(model.ResourceCrew); l.Quantity != 497 {
		t.Fatalf("stock = %d", l.Quantity)
	}

	if _, err := w.Trade(p.ID, model.TransactionBuy, model.TradeRequest{ResourceType: model.ResourceVehicles, Quantity: 30}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expensive buy: %v", err)
	}
	if _, err := w.Trade(p.ID, model.TransactionBuy, model.TradeRequest{ResourceType: model.ResourceCrew, Quantity: 40}); !errors.Is(err, ErrCapacity) {
		t.Fatalf("over capacity: %v", err)
	}
	if _, err := w.Trade(p.ID, model.TransactionSell, model.TradeRequest{ResourceType: model.ResourceWeapons, Quantity: 99}); !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("oversell: %v", err)
	}
	if _, err := w.Trade(p.ID, model.TransactionBuy, model.TradeRequest{ResourceType: model.ResourceCrew}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero quantity: %v", err)
	}
	if got := w.Transactions(p.ID); len(got) != 1 {
		t.Fatalf("transactions = %d", len(got))
	}
}

func TestTakeoverAndIncome(t *testing.T) {
	w, clk, rec := newWorld(t)
	p := demo(t, w)

	res, err := w.PerformAction(p.ID, model.ActionTakeover, model.PerformActionRequest{
		HotspotID: "h-diner",
		Resources: model.ActionResources{Crew: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || !res.HotspotControlled {
		t.Fatalf("result = %+v", res)
	}
	h, _ := w.Hotspot("h-diner")
	if h.Controller != p.ID || h.DefenseStrength != 10 {
		t.Fatalf("hotspot = %+v", h)
	}
	if len(rec.named(model.EventHotspotUpdated)) != 1 {
		t.Fatal("takeover not broadcast")
	}
	after, _ := w.Profile(p.ID)
	if after.Crew != p.Crew-1 || after.ControlledHotspots != 2 {
		t.Fatalf("after takeover = %+v", after)
	}

	if _, err := w.PerformAction(p.ID, model.ActionTakeover, model.PerformActionRequest{HotspotID: "h-club", Resources: model.ActionResources{Crew: 1}}); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("out of region: %v", err)
	}

	clk.Advance(time.Minute)
	if n := w.GenerateIncome(); n != 1 {
		t.Fatalf("players credited = %d", n)
	}
	evs := rec.named(model.EventIncomeGenerated)
	if len(evs) != 1 {
		t.Fatalf("income events = %d", len(evs))
	}
	payload := evs[0].data.(model.IncomeGeneratedPayload)
	if evs[0].playerID != p.ID || payload.TotalPending != 800+300 || len(payload.Updates) != 2 {
		t.Fatalf("income payload = %+v", payload)
	}
	for _, u := range payload.Updates {
		if u.NextIncomeTime != "2024-01-01T12:02:00Z" {
			t.Fatalf("next income = %q", u.NextIncomeTime)
		}
	}

	got, err := w.CollectAll(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CollectedAmount != 1100 || got.HotspotsCount != 2 {
		t.Fatalf("collect all = %+v", got)
	}
	if _, err := w.CollectHotspot(p.ID, "h-bait"); !errors.Is(err, ErrConflict) {
		t.Fatalf("empty collect: %v", err)
	}
}

func TestFailedTakeoverCostsCrew(t *testing.T) {
	w, _, _ := newWorld(t)
	p := demo(t, w)
	w.mu.Lock()
	h, _ := w.hotspotByID("h-diner")
	h.DefenseStrength = 1000
	w.mu.Unlock()

	res, err := w.PerformAction(p.ID, model.ActionTakeover, model.PerformActionRequest{HotspotID: "h-diner", Resources: model.ActionResources{Crew: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.CrewLost != 2 {
		t.Fatalf("result = %+v", res)
	}
	if got := w.RecentActions(p.ID); len(got) != 1 || got[0].Result.Success {
		t.Fatalf("actions = %+v", got)
	}
}

func TestOperationLifecycle(t *testing.T) {
	w, clk, _ := newWorld(t)
	p := demo(t, w)

	a, err := w.StartOperation(p.ID, "op-recruit", model.OperationResources{Money: 800})
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != model.StatusInProgress {
		t.Fatalf("status = %s", a.Status)
	}
	if _, err := w.StartOperation(p.ID, "op-recruit", model.OperationResources{Money: 800}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate start: %v", err)
	}
	if _, err := w.StartOperation(p.ID, "op-bribe", model.OperationResources{Money: 3000}); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("foreign operation: %v", err)
	}
	if _, err := w.CollectOperation(p.ID, a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("early collect: %v", err)
	}

	clk.Advance(2 * time.Minute)
	before, _ := w.Profile(p.ID)
	res, err := w.CollectOperation(p.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := w.Profile(p.ID)
	if res.Success && after.Crew != before.Crew+4 {
		t.Fatalf("crew after success = %d", after.Crew)
	}
	if len(w.CurrentOperations(p.ID)) != 0 || len(w.CompletedOperations(p.ID)) != 1 {
		t.Fatal("attempt not moved to completed")
	}
	if _, err := w.CancelOperation(p.ID, a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("cancel finished: %v", err)
	}
}

func TestCancelKeepsCost(t *testing.T) {
	w, _, _ := newWorld(t)
	p := demo(t, w)
	a, err := w.StartOperation(p.ID, "op-carjack", model.OperationResources{Crew: 2, Weapons: 1})
	if err != nil {
		t.Fatal(err)
	}
	got, err := w.CancelOperation(p.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := w.Profile(p.ID)
	if got.Status != model.StatusCancelled || after.Crew != p.Crew-2 || after.Weapons != p.Weapons-1 {
		t.Fatalf("cancel = %+v, profile = %+v", got, after)
	}
}

func TestTravel(t *testing.T) {
	w, _, rec := newWorld(t)
	p, err := w.Register(model.RegisterRequest{Name: "Traveler", Email: "t@mwce.dev", Password: "long-enough"})
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := w.CurrentRegion(p.ID); r != nil {
		t.Fatalf("new player region = %+v", r)
	}

	resp, err := w.Travel(p.ID, "r-south")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.TravelCost != 750 || resp.RegionName != "South Side" {
		t.Fatalf("travel = %+v", resp)
	}
	after, _ := w.Profile(p.ID)
	if after.Money != 10000-750 || after.CurrentRegionID != "r-south" {
		t.Fatalf("after travel = %+v", after)
	}
	evs := rec.named(model.EventPlayerRegionChanged)
	if len(evs) != 1 || evs[0].playerID != p.ID {
		t.Fatalf("region events = %+v", evs)
	}
	if _, err := w.Travel(p.ID, "r-south"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("same region: %v", err)
	}
	if h := w.TravelHistory(p.ID, 10); len(h) != 1 || h[0].FromRegionID != "" || h[0].ToRegionID != "r-south" {
		t.Fatalf("history = %+v", h)
	}
	avail, _ := w.AvailableRegions(p.ID)
	if len(avail) != 1 || avail[0].ID != "r-north" {
		t.Fatalf("available = %+v", avail)
	}
}

func TestCampaignFlow(t *testing.T) {
	w, _, rec := newWorld(t)
	p := demo(t, w)

	if got, _ := w.Progress(p.ID, "cmp-rise"); got.Started {
		t.Fatal("started before start")
	}
	pr, err := w.StartCampaign(p.ID, "cmp-rise")
	if err != nil {
		t.Fatal(err)
	}
	if pr.CurrentMissionID != "m-arrival" {
		t.Fatalf("progress = %+v", pr)
	}
	if _, err := w.SelectChoice(p.ID, "m-arrival", "ch-muscle"); !errors.Is(err, ErrRequirementsNotMet) {
		t.Fatalf("gated choice: %v", err)
	}
	if _, err := w.SelectChoice(p.ID, "m-arrival", "ch-docks"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.CompleteChoice(p.ID, "m-arrival", "ch-docks"); !errors.Is(err, ErrConflict) {
		t.Fatalf("early complete: %v", err)
	}

	it, err := w.InteractWithPOI(p.ID, "poi-harbormaster", model.InteractionConvince)
	if err != nil {
		t.Fatal(err)
	}
	if it.Dialogue == nil || it.Dialogue.ID != "dl-2" || it.ResourceEffect.Respect != 1 {
		t.Fatalf("interact = %+v", it)
	}
	if _, err := w.CompletePOI(p.ID, "poi-harbormaster"); err != nil {
		t.Fatal(err)
	}
	tracked, err := w.TrackAction(p.ID, model.TrackedAction{ActionType: "goods_smuggling"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tracked.ConditionsCompleted) != 1 || tracked.ConditionsCompleted[0] != "mo-crates" {
		t.Fatalf("tracked = %+v", tracked)
	}
	choices := rec.named(model.EventCampaignChoiceUpdated)
	last := choices[len(choices)-1].data.(model.CampaignChoiceUpdatedPayload)
	if !last.ConditionCompleted {
		t.Fatal("choice not reported complete")
	}
	if len(rec.named(model.EventCampaignActionTracked)) != 1 {
		t.Fatal("action tracked not pushed")
	}

	before, _ := w.Profile(p.ID)
	done, err := w.CompleteChoice(p.ID, "m-arrival", "ch-docks")
	if err != nil {
		t.Fatal(err)
	}
	if done.NextMissionID != "m-payday" || done.Progress.CurrentChoiceID != "" || done.Rewards.Money != 2000 {
		t.Fatalf("complete = %+v", done)
	}
	after, _ := w.Profile(p.ID)
	if after.Money != before.Money+2000 {
		t.Fatalf("money = %d, want %d", after.Money, before.Money+2000)
	}
}

func TestTokens(t *testing.T) {
	clk := clock.NewManual(start)
	tokens := NewTokens("secret", clk)
	raw, err := tokens.Issue("p1", "Vito")
	if err != nil {
		t.Fatal(err)
	}
	id, name, err := tokens.Verify(raw)
	if err != nil || id != "p1" || name != "Vito" {
		t.Fatalf("verify = %q %q %v", id, name, err)
	}
	if _, _, err := NewTokens("other", clk).Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
	clk.Advance(tokenTTL + time.Second)
	if _, _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: %v", err)
	}
}

func TestBrokerRoutesByPlayer(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	go b.Run()
	defer b.Shutdown()

	alice := b.Subscribe("alice")
	bob := b.Subscribe("bob")
	b.SendToPlayer("alice", "notification", map[string]string{"msg": "hi"})
	b.SendToAll("operations_refreshed", map[string]int{"n": 1})

	select {
	case f := <-alice.Send:
		if string(f) != "event: notification\ndata: {\"msg\":\"hi\"}\n\n" {
			t.Fatalf("frame = %q", f)
		}
	case <-time.After(time.Second):
		t.Fatal("alice got nothing")
	}
	select {
	case f := <-bob.Send:
		if !strings.HasPrefix(string(f), "event: operations_refreshed\n") {
			t.Fatalf("bob frame = %q", f)
		}
	case <-time.After(time.Second):
		t.Fatal("bob got nothing")
	}
	if b.Count() != 2 {
		t.Fatalf("count = %d", b.Count())
	}
	b.Unsubscribe(bob)
	for range bob.Send {
	}
}
