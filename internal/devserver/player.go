package devserver

import (
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/model"
)

func (w *World) Profile(playerID string) (model.PlayerProfile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.PlayerProfile{}, err
	}
	return w.profileLocked(p), nil
}

func (w *World) Stats(playerID string) (model.PlayerStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.stats[playerID]
	if !ok {
		return model.PlayerStats{}, ErrNotFound
	}
	out := *s
	for _, h := range w.hotspots {
		if h.Controller == playerID {
			out.TotalHotspotsControlled++
		}
	}
	return out, nil
}

func (w *World) Notifications(playerID string) []model.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return limit(w.notifications[playerID], 50)
}

func (w *World) MarkNotificationRead(playerID, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	list := w.notifications[playerID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("%w: notification %s", ErrNotFound, id)
}

func (w *World) MarkAllNotificationsRead(playerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	list := w.notifications[playerID]
	for i := range list {
		list[i].Read = true
	}
}

// Announce pushes a system notification to one player, or to every player
// when PlayerID is empty. It returns how many players were notified.
func (w *World) Announce(a model.Announcement) (int, error) {
	if a.Message == "" {
		return 0, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if a.Type == "" {
		a.Type = model.NotificationSystem
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if a.PlayerID != "" {
		if _, err := w.player(a.PlayerID); err != nil {
			return 0, err
		}
		w.notifyLocked(a.PlayerID, a.Type, a.Message)
		return 1, nil
	}
	for id := range w.players {
		w.notifyLocked(id, a.Type, a.Message)
	}
	return len(w.players), nil
}

// PlayerCount is the number of registered players.
func (w *World) PlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.players)
}
