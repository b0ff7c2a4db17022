package service

import (
	"context"
	"net/url"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type MarketService struct {
	api *api.Client
}

func NewMarketService(c *api.Client) *MarketService {
	return &MarketService{api: c}
}

func (s *MarketService) GetListings(ctx context.Context) (*api.Result[[]model.MarketListing], error) {
	return api.Get[[]model.MarketListing](ctx, s.api, "/market/listings", nil)
}

func (s *MarketService) GetListing(ctx context.Context, rt model.ResourceType) (*api.Result[model.MarketListing], error) {
	return api.Get[model.MarketListing](ctx, s.api, "/market/listings/"+url.PathEscape(string(rt)), nil)
}

func (s *MarketService) GetTransactions(ctx context.Context) (*api.Result[[]model.MarketTransaction], error) {
	return api.Get[[]model.MarketTransaction](ctx, s.api, "/market/transactions", nil)
}

// GetHistory returns price history for rt, or for every resource when rt is empty.
func (s *MarketService) GetHistory(ctx context.Context, rt model.ResourceType) (*api.Result[[]model.MarketHistory], error) {
	path := "/market/history"
	if rt != "" {
		path += "/" + url.PathEscape(string(rt))
	}
	return api.Get[[]model.MarketHistory](ctx, s.api, path, nil)
}

func (s *MarketService) Buy(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	return api.Post[model.MarketTransaction](ctx, s.api, "/market/buy", model.TradeRequest{ResourceType: rt, Quantity: qty})
}

func (s *MarketService) Sell(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	return api.Post[model.MarketTransaction](ctx, s.api, "/market/sell", model.TradeRequest{ResourceType: rt, Quantity: qty})
}
