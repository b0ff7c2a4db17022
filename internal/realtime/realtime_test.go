package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"
	"github.com/CRTOsp3ck/mwce/internal/service"
	"github.com/CRTOsp3ck/mwce/internal/store"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type fakeDialer struct {
	mu    sync.Mutex
	fail  int
	urls  []string
	conns chan *io.PipeWriter
}

func newFakeDialer(fail int) *fakeDialer {
	return &fakeDialer{fail: fail, conns: make(chan *io.PipeWriter, 16)}
}

func (d *fakeDialer) Dial(_ context.Context, u string) (io.ReadCloser, error) {
	d.mu.Lock()
	d.urls = append(d.urls, u)
	n := len(d.urls)
	d.mu.Unlock()
	if n <= d.fail {
		return nil, errors.New("connection refused")
	}
	pr, pw := io.Pipe()
	d.conns <- pw
	return pr, nil
}

func (d *fakeDialer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

func newClient(d Dialer, clk *clock.Manual, maxAttempts int, opts ...Option) *Client {
	opts = append([]Option{
		WithDialer(d),
		WithClock(clk),
		WithPolicy(NewPolicy(backoff.NewConstantBackOff(time.Second), maxAttempts)),
	}, opts...)
	return New("http://game.test/api/", staticToken("tok"), NewDispatcher(zerolog.Nop()), opts...)
}

func (c *Client) currentGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func TestStreamDecodesEvents(t *testing.T) {
	in := "event: heartbeat\r\ndata: {\"timestamp\":\"t\"}\r\n\r\n" +
		": keepalive\n\n" +
		"data: {\"type\":\"notification\"}\n\n" +
		"event: multi\ndata: a\ndata: b\nid: 7\n\n" +
		"event: partial\ndata: x"
	s := NewStream(strings.NewReader(in))

	want := []model.StreamEvent{
		{Type: "heartbeat", Data: json.RawMessage(`{"timestamp":"t"}`)},
		{Type: "notification", Data: json.RawMessage(`{"type":"notification"}`)},
		{Type: "multi", Data: json.RawMessage("a\nb")},
	}
	for i, w := range want {
		ev, err := s.Next()
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if ev.Type != w.Type || string(ev.Data) != string(w.Data) {
			t.Fatalf("event %d = %s %q, want %s %q", i, ev.Type, ev.Data, w.Type, w.Data)
		}
	}
	if _, err := s.Next(); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("err = %v, want ErrStreamClosed", err)
	}
}

func TestPolicyGivesUp(t *testing.T) {
	p := NewPolicy(backoff.NewConstantBackOff(time.Second), 2)
	for i := 0; i < 2; i++ {
		if d, ok := p.Next(); !ok || d != time.Second {
			t.Fatalf("attempt %d: %v %v", i, d, ok)
		}
	}
	if _, ok := p.Next(); ok {
		t.Fatal("policy should be exhausted")
	}
	p.Reset()
	if _, ok := p.Next(); !ok {
		t.Fatal("reset policy exhausted")
	}
}

func TestExponentialPolicyCapped(t *testing.T) {
	p := NewReconnectPolicy(PolicyConfig{Initial: time.Second, Max: 4 * time.Second, MaxAttempts: 0})
	var last time.Duration
	for i := 0; i < 8; i++ {
		d, ok := p.Next()
		if !ok {
			t.Fatal("unbounded policy gave up")
		}
		if d > 4*time.Second {
			t.Fatalf("delay %v above cap", d)
		}
		last = d
	}
	if last != 4*time.Second {
		t.Fatalf("last delay = %v, want cap", last)
	}
}

func TestConnectWithoutToken(t *testing.T) {
	d := newFakeDialer(0)
	c := New("http://game.test/api", staticToken(""), NewDispatcher(zerolog.Nop()), WithDialer(d))
	if err := c.Connect(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v", err)
	}
	if d.calls() != 0 {
		t.Fatal("dialed without token")
	}
	if st := c.State(); st.Reconnecting || !errors.Is(st.Err, ErrNoToken) {
		t.Fatalf("state = %+v", st)
	}
}

func TestReconnectScheduledOnce(t *testing.T) {
	clk := clock.NewManual(epoch)
	d := newFakeDialer(1)
	c := newClient(d, clk, 5)
	defer c.Wait()
	defer c.Disconnect()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first reconnect", func() bool { return clk.Pending() == 1 })
	if st := c.State(); st.Connected || !st.Reconnecting || st.Attempts != 1 {
		t.Fatalf("state = %+v", st)
	}

	c.fail(c.currentGen(), errors.New("second error"))
	if clk.Pending() != 1 {
		t.Fatalf("pending = %d after second error", clk.Pending())
	}

	clk.Advance(time.Second)
	waitFor(t, "open", func() bool { return c.State().Connected })
	if st := c.State(); st.Reconnecting || st.Err != nil || clk.Pending() != 0 {
		t.Fatalf("state = %+v pending = %d", st, clk.Pending())
	}
	if d.calls() != 2 || d.urls[1] != "http://game.test/api/sse?token=tok" {
		t.Fatalf("urls = %v", d.urls)
	}

	var pw *io.PipeWriter
	select {
	case pw = <-d.conns:
	case <-time.After(time.Second):
		t.Fatal("no connection")
	}
	pw.Close()
	waitFor(t, "reschedule after EOF", func() bool { return clk.Pending() == 1 })
	if st := c.State(); !errors.Is(st.Err, ErrStreamClosed) || !st.Reconnecting {
		t.Fatalf("state = %+v", st)
	}

	c.Disconnect()
	if clk.Pending() != 0 {
		t.Fatal("disconnect left a reconnect pending")
	}
}

func TestTimerAfterDisconnectDoesNotRedial(t *testing.T) {
	clk := clock.NewManual(epoch)
	d := newFakeDialer(1)
	c := newClient(d, clk, 5)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first reconnect", func() bool { return clk.Pending() == 1 })
	gen := c.currentGen()

	c.Disconnect()
	// The timer fired before Disconnect could stop it.
	c.reconnect(gen)
	c.Wait()

	if d.calls() != 1 {
		t.Fatalf("dial calls after disconnect = %d", d.calls())
	}
	if st := c.State(); st.Connected || st.Reconnecting || st.Err != nil || clk.Pending() != 0 {
		t.Fatalf("state = %+v pending = %d", st, clk.Pending())
	}
}

type gatedDialer struct {
	*fakeDialer
	gate chan struct{}
}

func (g gatedDialer) Dial(ctx context.Context, u string) (io.ReadCloser, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.fakeDialer.Dial(ctx, u)
}

func TestConnectWhileConnectedClearsConnected(t *testing.T) {
	clk := clock.NewManual(epoch)
	d := gatedDialer{fakeDialer: newFakeDialer(0), gate: make(chan struct{}, 1)}
	c := newClient(d, clk, 5)
	defer c.Wait()
	defer c.Disconnect()

	d.gate <- struct{}{}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "open", func() bool { return c.State().Connected })

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.State().Connected {
		t.Fatal("still connected while the new stream is dialing")
	}
	d.gate <- struct{}{}
	waitFor(t, "reopen", func() bool { return c.State().Connected })
	if d.calls() != 2 || clk.Pending() != 0 {
		t.Fatalf("calls = %d pending = %d", d.calls(), clk.Pending())
	}
}

func TestReconnectingUntilOpen(t *testing.T) {
	clk := clock.NewManual(epoch)
	d := newFakeDialer(2)
	c := newClient(d, clk, 5)
	defer c.Wait()
	defer c.Disconnect()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first failure", func() bool { return clk.Pending() == 1 })
	clk.Advance(time.Second)
	waitFor(t, "second failure", func() bool { return d.calls() == 2 && clk.Pending() == 1 })
	if st := c.State(); !st.Reconnecting || st.Connected {
		t.Fatalf("state after second failure = %+v", st)
	}
	clk.Advance(time.Second)
	waitFor(t, "open", func() bool { return c.State().Connected })
	if c.State().Reconnecting {
		t.Fatal("still reconnecting after open")
	}
}

func TestGiveUpPublishes(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()
	sub := hub.Subscribe("test", 4)

	clk := clock.NewManual(epoch)
	d := newFakeDialer(100)
	c := newClient(d, clk, 2, WithHub(hub))
	defer c.Wait()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 2; i++ {
		waitFor(t, "scheduled retry", func() bool { return clk.Pending() == 1 })
		clk.Advance(time.Second)
	}
	waitFor(t, "give up", func() bool { return c.State().GaveUp })
	if st := c.State(); st.Reconnecting || d.calls() != 3 || clk.Pending() != 0 {
		t.Fatalf("state = %+v calls = %d", st, d.calls())
	}

	select {
	case u := <-sub.C():
		if u.Topic != TopicGaveUp {
			t.Fatalf("topic = %q", u.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("no give-up update")
	}
}

func TestStreamEventsReachHandlers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()
	sub := hub.Subscribe("test", 8)

	clk := clock.NewManual(epoch)
	d := newFakeDialer(0)
	c := newClient(d, clk, 5, WithHub(hub))
	defer c.Wait()
	defer c.Disconnect()

	got := make(chan string, 4)
	c.dispatch.Handle("ping", func(_ context.Context, ev model.StreamEvent) error {
		got <- string(ev.Data)
		return nil
	})
	c.dispatch.Handle("boom", func(context.Context, model.StreamEvent) error {
		panic("handler bug")
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	pw := <-d.conns
	go func() {
		_, _ = io.WriteString(pw, "event: boom\ndata: {}\n\nevent: heartbeat\ndata: {}\n\nevent: ping\ndata: 1\n\n")
	}()

	select {
	case v := <-got:
		if v != "1" {
			t.Fatalf("data = %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ping not dispatched after panicking handler")
	}
	if !c.State().Connected {
		t.Fatal("stream dropped after handler panic")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-sub.C():
			if u.Topic == TopicEvent {
				if u.Event != "ping" {
					t.Fatalf("published %q", u.Event)
				}
				return
			}
		case <-deadline:
			t.Fatal("no event update on hub")
		}
	}
}

func TestStaleStreamIgnored(t *testing.T) {
	clk := clock.NewManual(epoch)
	d := newFakeDialer(0)
	c := newClient(d, clk, 5)
	defer c.Wait()
	defer c.Disconnect()

	var mu sync.Mutex
	var seen []string
	c.dispatch.Handle("ping", func(_ context.Context, ev model.StreamEvent) error {
		mu.Lock()
		seen = append(seen, string(ev.Data))
		mu.Unlock()
		return nil
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := <-d.conns
	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := <-d.conns

	go func() { _, _ = io.WriteString(first, "event: ping\ndata: old\n\n") }()
	go func() { _, _ = io.WriteString(second, "event: ping\ndata: new\n\n") }()
	waitFor(t, "new event", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	if seen[0] != "new" {
		t.Fatalf("seen = %v", seen)
	}
	if clk.Pending() != 0 {
		t.Fatal("superseded stream scheduled a reconnect")
	}
}

type caches struct {
	Caches
	clk *clock.Manual
}

func newCaches(t *testing.T, client *api.Client) caches {
	t.Helper()
	clk := clock.NewManual(epoch)
	opts := store.Options{Clock: clk}
	player := store.NewPlayerStore(service.NewPlayerService(client), opts)
	player.ReplaceProfile(model.PlayerProfile{ID: "p1", CurrentRegionID: "r1", CurrentRegionName: "Downtown"})
	c := caches{
		Caches: Caches{
			Player:     player,
			Territory:  store.NewTerritoryStore(service.NewTerritoryService(client), player, opts),
			Operations: store.NewOperationsStore(service.NewOperationsService(client), player, opts),
			Campaign:   store.NewCampaignStore(service.NewCampaignService(client), player, opts),
			Travel:     store.NewTravelStore(service.NewTravelService(client), player, opts),
		},
		clk: clk,
	}
	t.Cleanup(func() {
		c.Territory.Close()
		c.Operations.Close()
	})
	return c
}

func event(t *testing.T, name string, payload any) model.StreamEvent {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return model.StreamEvent{Type: name, Data: b}
}

func TestRegionChangeCascade(t *testing.T) {
	type request struct {
		path          string
		region        string
		timersRunning bool
	}
	var (
		mu       sync.Mutex
		requests []request
		c        caches
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := c.Player.Profile()
		mu.Lock()
		requests = append(requests, request{
			path:          r.URL.Path,
			region:        p.CurrentRegionID,
			timersRunning: c.Territory.TimerRunning() || c.Operations.TimerRunning(),
		})
		mu.Unlock()

		var data any
		switch r.URL.Path {
		case "/player/profile":
			data = model.PlayerProfile{ID: "p1", CurrentRegionID: "r2", CurrentRegionName: "Harbor"}
		case "/travel/current":
			data = model.Region{ID: "r2", Name: "Harbor"}
		case "/territory/hotspots":
			data = []model.Hotspot{{ID: "h9", CityID: "c9", Controller: "p1", PendingCollection: 40, LastIncomeTime: "2024-01-01T00:00:00Z"}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}))
	defer srv.Close()

	c = newCaches(t, api.New(srv.URL, nil))
	c.Territory.UpsertHotspots([]model.Hotspot{{ID: "old", Controller: "p1"}})
	c.Territory.StartTimer()
	c.Operations.StartTimer()

	d := NewDispatcher(zerolog.Nop())
	NewSync(c.Caches, c.clk, zerolog.Nop()).Register(d)
	ok := d.Dispatch(context.Background(), event(t, model.EventPlayerRegionChanged, model.RegionChangedPayload{
		Event: "player_region_changed", PlayerID: "p1", RegionID: "r2", RegionName: "Harbor",
	}))
	if !ok {
		t.Fatal("cascade reported failure")
	}

	wantPaths := []string{
		"/player/profile",
		"/travel/current",
		"/travel/available",
		"/territory/regions",
		"/territory/districts",
		"/territory/cities",
		"/territory/hotspots",
		"/territory/actions",
		"/operations",
		"/operations/current",
		"/operations/refresh-info",
	}
	mu.Lock()
	defer mu.Unlock()
	if len(requests) != len(wantPaths) {
		t.Fatalf("requests = %+v", requests)
	}
	for i, r := range requests {
		if r.path != wantPaths[i] {
			t.Fatalf("request %d = %s, want %s", i, r.path, wantPaths[i])
		}
		if r.region != "r2" {
			t.Fatalf("request %d saw region %q", i, r.region)
		}
		if r.timersRunning {
			t.Fatalf("timers running during request %d", i)
		}
	}

	if !c.Territory.TimerRunning() || !c.Operations.TimerRunning() {
		t.Fatal("timers not restarted")
	}
	if _, ok := c.Territory.Hotspot("old"); ok {
		t.Fatal("territory cache not reset")
	}
	if h, _ := c.Territory.Hotspot("h9"); h.NextIncomeTime != "2024-01-01T01:00:00Z" {
		t.Fatalf("next income = %q", h.NextIncomeTime)
	}
	n := c.Player.Notifications()
	if len(n) != 1 || n[0].Message != "You have arrived in Harbor." || n[0].Type != model.NotificationTravel || n[0].ID == "" {
		t.Fatalf("notifications = %+v", n)
	}
	if c.Travel.CurrentLocationName() != "Harbor" {
		t.Fatalf("location = %q", c.Travel.CurrentLocationName())
	}
}

func TestIncomeAndHotspotEvents(t *testing.T) {
	c := newCaches(t, api.New("http://127.0.0.1:0", nil))
	d := NewDispatcher(zerolog.Nop())
	NewSync(c.Caches, c.clk, zerolog.Nop()).Register(d)
	ctx := context.Background()

	c.Territory.UpsertHotspots([]model.Hotspot{{ID: "h1", Controller: "p1", PendingCollection: 10}})

	if !d.Dispatch(ctx, event(t, model.EventIncomeGenerated, model.IncomeGeneratedPayload{
		Updates: []model.IncomeUpdate{
			{HotspotID: "h1", PendingCollection: 60, LastIncomeTime: "2024-01-01T02:00:00+02:00"},
			{HotspotID: "ghost", PendingCollection: 999},
		},
	})) {
		t.Fatal("income dispatch failed")
	}
	h, _ := c.Territory.Hotspot("h1")
	if h.LastIncomeTime != "2024-01-01T00:00:00Z" || h.NextIncomeTime != "2024-01-01T01:00:00Z" {
		t.Fatalf("times = %q %q", h.LastIncomeTime, h.NextIncomeTime)
	}
	if _, ok := c.Territory.Hotspot("ghost"); ok {
		t.Fatal("income created a hotspot")
	}
	if p, _ := c.Player.Profile(); p.PendingCollections != 60 {
		t.Fatalf("pending = %d", p.PendingCollections)
	}

	single := model.Hotspot{ID: "h2", Controller: "p1", PendingCollection: 5}
	d.Dispatch(ctx, event(t, model.EventHotspotUpdated, model.HotspotUpdatedPayload{Hotspot: single}))
	d.Dispatch(ctx, event(t, model.EventHotspotsUpdated, model.HotspotsUpdatedPayload{Hotspots: []model.Hotspot{
		{ID: "h3", Controller: "p1", PendingCollection: 7},
		{ID: "h4"},
	}}))
	if _, ok := c.Territory.Hotspot("h2"); !ok {
		t.Fatal("activated hotspot not inserted by single update")
	}
	if _, ok := c.Territory.Hotspot("h3"); !ok {
		t.Fatal("activated hotspot not inserted by bulk update")
	}
	if _, ok := c.Territory.Hotspot("h4"); ok {
		t.Fatal("inactive unknown hotspot inserted")
	}
	if p, _ := c.Player.Profile(); p.PendingCollections != 72 {
		t.Fatalf("pending = %d", p.PendingCollections)
	}
}

func TestHotspotUpdatesReplaceKnownHotspots(t *testing.T) {
	c := newCaches(t, api.New("http://127.0.0.1:0", nil))
	d := NewDispatcher(zerolog.Nop())
	NewSync(c.Caches, c.clk, zerolog.Nop()).Register(d)
	ctx := context.Background()

	c.Territory.UpsertHotspots([]model.Hotspot{{ID: "h1", Controller: "p1", PendingCollection: 10}})

	if !d.Dispatch(ctx, event(t, model.EventHotspotUpdated, model.HotspotUpdatedPayload{Hotspot: model.Hotspot{
		ID: "h1", Controller: "p1", PendingCollection: 25, LastIncomeTime: "2024-01-01T00:00:00Z",
	}})) {
		t.Fatal("hotspot_updated failed")
	}
	h, _ := c.Territory.Hotspot("h1")
	if h.PendingCollection != 25 || h.NextIncomeTime != "2024-01-01T01:00:00Z" {
		t.Fatalf("h1 = %+v", h)
	}

	if !d.Dispatch(ctx, event(t, model.EventHotspotsUpdated, model.HotspotsUpdatedPayload{Hotspots: []model.Hotspot{
		{ID: "h5", Controller: "p1", PendingCollection: 3},
		{ID: "h1", Controller: "p2", PendingCollection: 0},
	}})) {
		t.Fatal("hotspots_updated failed")
	}
	if h, _ := c.Territory.Hotspot("h1"); h.Controller != "p2" || h.PendingCollection != 0 {
		t.Fatalf("h1 after bulk = %+v", h)
	}
	if _, ok := c.Territory.Hotspot("h5"); !ok {
		t.Fatal("activated hotspot before a known one not inserted")
	}
	if p, _ := c.Player.Profile(); p.PendingCollections != 3 {
		t.Fatalf("pending = %d", p.PendingCollections)
	}
}

func TestMalformedPayloadIsolated(t *testing.T) {
	c := newCaches(t, api.New("http://127.0.0.1:0", nil))
	d := NewDispatcher(zerolog.Nop())
	NewSync(c.Caches, c.clk, zerolog.Nop()).Register(d)
	ctx := context.Background()

	if d.Dispatch(ctx, model.StreamEvent{Type: model.EventNotification, Data: json.RawMessage(`{not json`)}) {
		t.Fatal("malformed payload reported success")
	}
	if !d.Dispatch(ctx, event(t, model.EventNotification, model.NotificationPayload{
		Notification: model.Notification{Message: "Your crew is back", Type: model.NotificationOperation},
	})) {
		t.Fatal("valid notification failed")
	}
	n := c.Player.Notifications()
	if len(n) != 1 || n[0].ID == "" || n[0].Timestamp == "" {
		t.Fatalf("notifications = %+v", n)
	}
	if d.Dispatch(ctx, model.StreamEvent{Type: "unknown_event"}) {
		t.Fatal("unknown event reported success")
	}
}

func TestOperationsRefreshedReplacesCatalog(t *testing.T) {
	c := newCaches(t, api.New("http://127.0.0.1:0", nil))
	d := NewDispatcher(zerolog.Nop())
	NewSync(c.Caches, c.clk, zerolog.Nop()).Register(d)

	d.Dispatch(context.Background(), event(t, model.EventOperationsRefreshed, model.OperationsRefreshedPayload{
		Operations:  []model.Operation{{ID: "op1"}, {ID: "op2", IsSpecial: true}},
		RefreshInfo: model.OperationsRefreshInfo{NextRefreshTime: "2024-01-01T00:10:00Z"},
	}))
	if len(c.Operations.Available()) != 2 || len(c.Operations.Special()) != 1 {
		t.Fatalf("catalog = %+v", c.Operations.Available())
	}
	if got := c.Operations.NextRefreshIn(); got != "10m 0s" {
		t.Fatalf("next refresh = %q", got)
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()
	slow := hub.Subscribe("slow", 1)
	waitFor(t, "subscribe", func() bool { return hub.Count() == 1 })

	hub.Publish(Update{Topic: "a"})
	hub.Publish(Update{Topic: "b"})
	waitFor(t, "drop", func() bool { return hub.Count() == 0 })

	if u, ok := <-slow.C(); !ok || u.Topic != "a" {
		t.Fatalf("first update = %+v %v", u, ok)
	}
	if _, ok := <-slow.C(); ok {
		t.Fatal("channel should be closed after drop")
	}
}
