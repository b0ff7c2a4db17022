package service

import (
	"context"
	"net/url"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type TerritoryService struct {
	api *api.Client
}

func NewTerritoryService(c *api.Client) *TerritoryService {
	return &TerritoryService{api: c}
}

func parentQuery(parentID string) url.Values {
	if parentID == "" {
		return nil
	}
	return url.Values{"parentId": {parentID}}
}

func (s *TerritoryService) GetRegions(ctx context.Context) (*api.Result[[]model.Region], error) {
	return api.Get[[]model.Region](ctx, s.api, "/territory/regions", nil)
}

func (s *TerritoryService) GetDistricts(ctx context.Context, regionID string) (*api.Result[[]model.District], error) {
	return api.Get[[]model.District](ctx, s.api, "/territory/districts", parentQuery(regionID))
}

func (s *TerritoryService) GetCities(ctx context.Context, districtID string) (*api.Result[[]model.City], error) {
	return api.Get[[]model.City](ctx, s.api, "/territory/cities", parentQuery(districtID))
}

func (s *TerritoryService) GetHotspots(ctx context.Context, cityID string) (*api.Result[[]model.Hotspot], error) {
	return api.Get[[]model.Hotspot](ctx, s.api, "/territory/hotspots", parentQuery(cityID))
}

func (s *TerritoryService) GetControlledHotspots(ctx context.Context) (*api.Result[[]model.Hotspot], error) {
	return api.Get[[]model.Hotspot](ctx, s.api, "/territory/hotspots/controlled", nil)
}

func (s *TerritoryService) GetHotspot(ctx context.Context, id string) (*api.Result[model.Hotspot], error) {
	return api.Get[model.Hotspot](ctx, s.api, "/territory/hotspots/"+url.PathEscape(id), nil)
}

func (s *TerritoryService) GetRecentActions(ctx context.Context) (*api.Result[[]model.TerritoryAction], error) {
	return api.Get[[]model.TerritoryAction](ctx, s.api, "/territory/actions", nil)
}

func (s *TerritoryService) PerformAction(ctx context.Context, action model.ActionType, req model.PerformActionRequest) (*api.Result[model.ActionResult], error) {
	return api.Post[model.ActionResult](ctx, s.api, "/territory/actions/"+url.PathEscape(string(action)), req)
}

func (s *TerritoryService) CollectHotspotIncome(ctx context.Context, id string) (*api.Result[model.CollectResponse], error) {
	return api.Post[model.CollectResponse](ctx, s.api, "/territory/hotspots/"+url.PathEscape(id)+"/collect", nil)
}

func (s *TerritoryService) CollectAllHotspotIncome(ctx context.Context) (*api.Result[model.CollectAllResponse], error) {
	return api.Post[model.CollectAllResponse](ctx, s.api, "/territory/hotspots/collect-all", nil)
}
