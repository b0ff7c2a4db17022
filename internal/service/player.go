package service

import (
	"context"
	"net/url"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type PlayerService struct {
	api *api.Client
}

func NewPlayerService(c *api.Client) *PlayerService {
	return &PlayerService{api: c}
}

func (s *PlayerService) GetProfile(ctx context.Context) (*api.Result[model.PlayerProfile], error) {
	return api.Get[model.PlayerProfile](ctx, s.api, "/player/profile", nil)
}

func (s *PlayerService) GetStats(ctx context.Context) (*api.Result[model.PlayerStats], error) {
	return api.Get[model.PlayerStats](ctx, s.api, "/player/stats", nil)
}

func (s *PlayerService) GetNotifications(ctx context.Context) (*api.Result[[]model.Notification], error) {
	return api.Get[[]model.Notification](ctx, s.api, "/player/notifications", nil)
}

func (s *PlayerService) MarkNotificationRead(ctx context.Context, id string) (*api.Result[struct{}], error) {
	return api.Put[struct{}](ctx, s.api, "/player/notifications/"+url.PathEscape(id)+"/read", nil)
}

func (s *PlayerService) MarkAllNotificationsRead(ctx context.Context) (*api.Result[struct{}], error) {
	return api.Put[struct{}](ctx, s.api, "/player/notifications/read-all", nil)
}

func (s *PlayerService) CollectAllPending(ctx context.Context) (*api.Result[model.CollectAllResponse], error) {
	return api.Post[model.CollectAllResponse](ctx, s.api, "/player/collect-all", nil)
}
