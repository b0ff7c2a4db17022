// Package discord relays game notifications to a Discord channel webhook.
package discord

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var ErrBadWebhookURL = errors.New("discord: webhook url must look like https://discord.com/api/webhooks/{id}/{token}")

// Sender delivers one webhook message.
type Sender interface {
	Send(params *discordgo.WebhookParams) error
}

// Webhook executes a channel webhook through a token-less discordgo
// session.
type Webhook struct {
	session *discordgo.Session
	id      string
	token   string
}

func NewWebhook(rawURL string) (*Webhook, error) {
	id, token, err := ParseWebhookURL(rawURL)
	if err != nil {
		return nil, err
	}
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Webhook{session: s, id: id, token: token}, nil
}

func (w *Webhook) Send(params *discordgo.WebhookParams) error {
	if _, err := w.session.WebhookExecute(w.id, w.token, false, params); err != nil {
		return fmt.Errorf("execute webhook: %w", err)
	}
	return nil
}

// ParseWebhookURL splits a webhook URL into its id and token.
func ParseWebhookURL(rawURL string) (id, token string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", ErrBadWebhookURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", ErrBadWebhookURL
}
