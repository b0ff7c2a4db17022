package store

import (
	"context"
	"sort"
	"sync"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

type MarketAPI interface {
	GetListings(ctx context.Context) (*api.Result[[]model.MarketListing], error)
	GetListing(ctx context.Context, rt model.ResourceType) (*api.Result[model.MarketListing], error)
	GetTransactions(ctx context.Context) (*api.Result[[]model.MarketTransaction], error)
	GetHistory(ctx context.Context, rt model.ResourceType) (*api.Result[[]model.MarketHistory], error)
	Buy(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error)
	Sell(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error)
}

type MarketStore struct {
	base
	api    MarketAPI
	player *PlayerStore

	mu           sync.RWMutex
	listings     []model.MarketListing
	transactions []model.MarketTransaction
	history      []model.MarketHistory
}

func NewMarketStore(a MarketAPI, player *PlayerStore, opts Options) *MarketStore {
	s := &MarketStore{api: a, player: player}
	s.setup(opts)
	return s
}

func (s *MarketStore) FetchMarketData(ctx context.Context) error {
	if err := s.FetchListings(ctx); err != nil {
		return err
	}
	if err := s.FetchTransactions(ctx); err != nil {
		return err
	}
	return s.FetchHistory(ctx, "")
}

func (s *MarketStore) FetchListings(ctx context.Context) error {
	return s.track(TopicMarket, "fetch listings", func() error {
		res, err := s.api.GetListings(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.listings = res.Data
		s.mu.Unlock()
		return nil
	})
}

// FetchListing refreshes the quote for one resource type.
func (s *MarketStore) FetchListing(ctx context.Context, rt model.ResourceType) error {
	return s.track(TopicMarket, "fetch listing", func() error {
		res, err := s.api.GetListing(ctx, rt)
		if err != nil {
			return err
		}
		s.putListing(res.Data)
		return nil
	})
}

func (s *MarketStore) FetchTransactions(ctx context.Context) error {
	return s.track(TopicMarket, "fetch transactions", func() error {
		res, err := s.api.GetTransactions(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.transactions = res.Data
		s.mu.Unlock()
		return nil
	})
}

// FetchHistory loads price history for rt, or all types when rt is empty.
// A per-type fetch only replaces that type's points.
func (s *MarketStore) FetchHistory(ctx context.Context, rt model.ResourceType) error {
	return s.track(TopicMarket, "fetch history", func() error {
		res, err := s.api.GetHistory(ctx, rt)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if rt == "" {
			s.history = res.Data
		} else {
			kept := s.history[:0:0]
			for _, h := range s.history {
				if h.ResourceType != rt {
					kept = append(kept, h)
				}
			}
			s.history = append(kept, res.Data...)
		}
		s.mu.Unlock()
		return nil
	})
}

// Buy purchases qty units at the cached listing price.
func (s *MarketStore) Buy(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	return s.trade(ctx, model.TransactionBuy, rt, qty)
}

// Sell sells qty units at the cached listing price.
func (s *MarketStore) Sell(ctx context.Context, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	return s.trade(ctx, model.TransactionSell, rt, qty)
}

func (s *MarketStore) trade(ctx context.Context, kind model.TransactionType, rt model.ResourceType, qty int) (*api.Result[model.MarketTransaction], error) {
	var out *api.Result[model.MarketTransaction]
	err := s.track(TopicMarket, string(kind)+" "+string(rt), func() error {
		if qty <= 0 {
			return ErrInvalidQuantity
		}
		listing, ok := s.Listing(rt)
		if !ok {
			return ErrListingNotFound
		}
		p, ok := s.player.Profile()
		if !ok {
			return ErrNotLoaded
		}
		total := listing.Price * int64(qty)
		switch kind {
		case model.TransactionBuy:
			if p.Money < total {
				return ErrInsufficientFunds
			}
		case model.TransactionSell:
			if rt.Held(p) < qty {
				return ErrInsufficientResources
			}
		}

		call := s.api.Buy
		if kind == model.TransactionSell {
			call = s.api.Sell
		}
		res, err := call(ctx, rt, qty)
		if err != nil {
			return err
		}

		tx := res.Data
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.Quantity == 0 {
			tx.Quantity = qty
		}
		if tx.TotalCost == 0 {
			tx.TotalCost = total
		}
		if tx.ResourceType == "" {
			tx.ResourceType = rt
		}
		tx.TransactionType = kind
		if tx.Timestamp == "" {
			tx.Timestamp = model.FormatTime(s.now())
		}
		res.Data = tx

		delta := model.ResourceDelta{Money: -tx.TotalCost}.Add(rt.Delta(tx.Quantity))
		if kind == model.TransactionSell {
			delta = model.ResourceDelta{Money: tx.TotalCost}.Add(rt.Delta(-tx.Quantity))
		}
		_ = s.player.Apply(delta)

		s.mu.Lock()
		s.transactions = prepend(s.transactions, tx)
		s.mu.Unlock()

		if l, err := s.api.GetListing(ctx, rt); err != nil {
			s.opts.Log.Warn().Err(err).Str("type", string(rt)).Msg("refetch listing failed")
		} else {
			s.putListing(l.Data)
		}
		out = res
		return nil
	})
	return out, err
}

func (s *MarketStore) putListing(l model.MarketListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.listings {
		if s.listings[i].Type == l.Type {
			s.listings[i] = l
			return
		}
	}
	s.listings = append(s.listings, l)
}

func (s *MarketStore) Listings() []model.MarketListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.listings)
}

func (s *MarketStore) Listing(rt model.ResourceType) (model.MarketListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.Type == rt {
			return l, true
		}
	}
	return model.MarketListing{}, false
}

func (s *MarketStore) Transactions() []model.MarketTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.transactions)
}

// RecentTransactions returns at most n transactions, newest first.
func (s *MarketStore) RecentTransactions(n int) []model.MarketTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.transactions) {
		n = len(s.transactions)
	}
	return clone(s.transactions[:n])
}

// History returns the points for rt sorted by date, oldest first.
func (s *MarketStore) History(rt model.ResourceType) []model.MarketHistory {
	s.mu.RLock()
	var out []model.MarketHistory
	for _, h := range s.history {
		if rt == "" || h.ResourceType == rt {
			out = append(out, h)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *MarketStore) Reset() {
	s.mu.Lock()
	s.listings, s.transactions, s.history = nil, nil, nil
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicMarket)
}
