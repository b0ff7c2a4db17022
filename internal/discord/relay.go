package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"
	"github.com/CRTOsp3ck/mwce/internal/realtime"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const username = "MWCE Family Ledger"

const (
	colorBlue   = 0x3498DB
	colorGreen  = 0x2ECC71
	colorRed    = 0xE74C3C
	colorGold   = 0xF1C40F
	colorOrange = 0xE67E22
	colorPurple = 0x9B59B6
)

var notificationColors = map[model.NotificationType]int{
	model.NotificationTerritory:  colorPurple,
	model.NotificationOperation:  colorBlue,
	model.NotificationCollection: colorGreen,
	model.NotificationHeat:       colorRed,
	model.NotificationTravel:     colorGold,
}

// Relay posts selected hub updates as webhook embeds.
type Relay struct {
	sender Sender
	clock  clock.Clock
	log    zerolog.Logger
}

func NewRelay(sender Sender, clk clock.Clock, log zerolog.Logger) *Relay {
	if clk == nil {
		clk = clock.Real
	}
	return &Relay{sender: sender, clock: clk, log: log}
}

// Run relays updates until ctx ends or the channel closes. Send failures
// are logged and do not stop the relay.
func (r *Relay) Run(ctx context.Context, updates <-chan realtime.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, open := <-updates:
			if !open {
				return
			}
			embed, ok := r.embed(u)
			if !ok {
				continue
			}
			if err := r.sender.Send(&discordgo.WebhookParams{
				Username: username,
				Embeds:   []*discordgo.MessageEmbed{embed},
			}); err != nil {
				r.log.Warn().Err(err).Str("event", u.Event).Msg("relay to discord failed")
			}
		}
	}
}

// embed renders u, reporting false for updates that are not relayed.
func (r *Relay) embed(u realtime.Update) (*discordgo.MessageEmbed, bool) {
	e := &discordgo.MessageEmbed{
		Timestamp: r.clock.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: username},
	}
	switch u.Topic {
	case realtime.TopicGaveUp:
		e.Title = "Lost contact with the family"
		e.Description = "The realtime connection gave up reconnecting."
		e.Color = colorRed
		return e, true
	case realtime.TopicSessionExpired:
		e.Title = "Session expired"
		e.Description = "Sign in again to keep receiving updates."
		e.Color = colorOrange
		return e, true
	case realtime.TopicEvent:
	default:
		return nil, false
	}

	switch u.Event {
	case model.EventNotification:
		var p model.NotificationPayload
		if !r.decode(u, &p) || p.Notification.Message == "" {
			return nil, false
		}
		e.Title = "Notification"
		if p.Notification.Type != "" {
			e.Title = fmt.Sprintf("Notification: %s", p.Notification.Type)
		}
		e.Description = p.Notification.Message
		e.Color = colorBlue
		if c, ok := notificationColors[p.Notification.Type]; ok {
			e.Color = c
		}
	case model.EventPlayerRegionChanged:
		var p model.RegionChangedPayload
		if !r.decode(u, &p) {
			return nil, false
		}
		e.Title = fmt.Sprintf("Arrived in %s", p.RegionName)
		e.Color = colorGold
	case model.EventIncomeGenerated:
		var p model.IncomeGeneratedPayload
		if !r.decode(u, &p) || len(p.Updates) == 0 {
			return nil, false
		}
		e.Title = "Income generated"
		e.Description = fmt.Sprintf("%s waiting to be collected.", model.FormatMoney(p.TotalPending))
		e.Color = colorGreen
		for _, up := range p.Updates {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
				Name:   up.HotspotName,
				Value:  fmt.Sprintf("+%s (pending %s)", model.FormatMoney(up.NewIncome), model.FormatMoney(up.PendingCollection)),
				Inline: true,
			})
		}
	default:
		return nil, false
	}
	return e, true
}

func (r *Relay) decode(u realtime.Update, v any) bool {
	if err := json.Unmarshal(u.Payload, v); err != nil {
		r.log.Debug().Err(err).Str("event", u.Event).Msg("skip undecodable update")
		return false
	}
	return true
}
