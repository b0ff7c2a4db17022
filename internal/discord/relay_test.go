package discord

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"
	"github.com/CRTOsp3ck/mwce/internal/realtime"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*discordgo.WebhookParams
	err  error
}

func (f *fakeSender) Send(p *discordgo.WebhookParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return f.err
}

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func event(t *testing.T, name string, payload any) realtime.Update {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return realtime.Update{Topic: realtime.TopicEvent, Event: name, Payload: raw}
}

func run(t *testing.T, sender Sender, updates ...realtime.Update) {
	t.Helper()
	ch := make(chan realtime.Update, len(updates))
	for _, u := range updates {
		ch <- u
	}
	close(ch)
	NewRelay(sender, clock.NewManual(start), zerolog.Nop()).Run(context.Background(), ch)
}

func TestRelayFormatsEvents(t *testing.T) {
	sender := &fakeSender{}
	run(t, sender,
		event(t, model.EventNotification, model.NotificationPayload{
			Notification: model.Notification{ID: "n1", Message: "Police raided the docks.", Type: model.NotificationHeat},
		}),
		event(t, model.EventHeartbeat, model.HeartbeatPayload{Timestamp: "x"}),
		event(t, model.EventIncomeGenerated, model.IncomeGeneratedPayload{
			Updates:      []model.IncomeUpdate{{HotspotID: "h1", HotspotName: "Bait Shop", NewIncome: 400, PendingCollection: 1500}},
			TotalPending: 1500,
		}),
		event(t, model.EventPlayerRegionChanged, model.RegionChangedPayload{RegionID: "r2", RegionName: "South Side"}),
		realtime.Update{Topic: realtime.TopicGaveUp},
		realtime.Update{Topic: realtime.TopicConnected},
	)

	if len(sender.sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sender.sent))
	}
	note := sender.sent[0].Embeds[0]
	if note.Description != "Police raided the docks." || note.Color != colorRed || note.Title != "Notification: heat" {
		t.Errorf("notification embed = %+v", note)
	}
	if note.Timestamp != "2024-01-01T12:00:00Z" {
		t.Errorf("timestamp = %q", note.Timestamp)
	}
	income := sender.sent[1].Embeds[0]
	if income.Description != "$1,500 waiting to be collected." {
		t.Errorf("income description = %q", income.Description)
	}
	if len(income.Fields) != 1 || income.Fields[0].Value != "+$400 (pending $1,500)" {
		t.Errorf("income fields = %+v", income.Fields)
	}
	if got := sender.sent[2].Embeds[0].Title; got != "Arrived in South Side" {
		t.Errorf("region title = %q", got)
	}
	if got := sender.sent[3].Embeds[0].Color; got != colorRed {
		t.Errorf("gave up color = %x", got)
	}
	if sender.sent[0].Username != username {
		t.Errorf("username = %q", sender.sent[0].Username)
	}
}

func TestRelaySkipsBadPayloadsAndSurvivesSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("discord down")}
	run(t, sender,
		realtime.Update{Topic: realtime.TopicEvent, Event: model.EventNotification, Payload: json.RawMessage(`not json`)},
		event(t, model.EventIncomeGenerated, model.IncomeGeneratedPayload{}),
		realtime.Update{Topic: realtime.TopicSessionExpired},
		realtime.Update{Topic: realtime.TopicGaveUp},
	)
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
}

func TestRelayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRelay(&fakeSender{}, nil, zerolog.Nop()).Run(ctx, make(chan realtime.Update))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := ParseWebhookURL("https://discord.com/api/webhooks/1234/abc-DEF")
	if err != nil || id != "1234" || token != "abc-DEF" {
		t.Errorf("got %q %q %v", id, token, err)
	}
	for _, bad := range []string{"", "not a url", "https://discord.com/api/channels/1", "https://discord.com/api/webhooks/1234"} {
		if _, _, err := ParseWebhookURL(bad); !errors.Is(err, ErrBadWebhookURL) {
			t.Errorf("%q: err = %v", bad, err)
		}
	}
}
