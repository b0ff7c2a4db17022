package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type TravelService struct {
	api *api.Client
}

func NewTravelService(c *api.Client) *TravelService {
	return &TravelService{api: c}
}

func (s *TravelService) GetAvailableRegions(ctx context.Context) (*api.Result[[]model.Region], error) {
	return api.Get[[]model.Region](ctx, s.api, "/travel/available", nil)
}

// GetCurrentRegion returns a nil Data pointer when the player is not in any region.
func (s *TravelService) GetCurrentRegion(ctx context.Context) (*api.Result[*model.Region], error) {
	return api.Get[*model.Region](ctx, s.api, "/travel/current", nil)
}

func (s *TravelService) Travel(ctx context.Context, regionID string) (*api.Result[model.TravelResponse], error) {
	return api.Post[model.TravelResponse](ctx, s.api, "/travel", model.TravelRequest{RegionID: regionID})
}

func (s *TravelService) GetHistory(ctx context.Context, limit int) (*api.Result[[]model.TravelAttempt], error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	return api.Get[[]model.TravelAttempt](ctx, s.api, "/travel/history", q)
}
