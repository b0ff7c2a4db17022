package devserver

import (
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

var resourceOrder = []model.ResourceType{model.ResourceCrew, model.ResourceWeapons, model.ResourceVehicles}

func (w *World) Listings() []model.MarketListing {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.MarketListing, 0, len(w.listings))
	for _, rt := range resourceOrder {
		if l, ok := w.listings[rt]; ok {
			out = append(out, *l)
		}
	}
	return out
}

func (w *World) Listing(rt model.ResourceType) (model.MarketListing, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.listings[rt]
	if !ok {
		return model.MarketListing{}, fmt.Errorf("%w: no listing for %q", ErrNotFound, rt)
	}
	return *l, nil
}

func (w *World) Transactions(playerID string) []model.MarketTransaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return limit(w.transactions[playerID], 50)
}

// PriceHistory returns the daily history of one resource, or of all when
// rt is empty.
func (w *World) PriceHistory(rt model.ResourceType) []model.MarketHistory {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.MarketHistory
	for _, h := range w.priceHistory {
		if rt == "" || h.ResourceType == rt {
			out = append(out, h)
		}
	}
	return out
}

func capacity(p *model.PlayerProfile, rt model.ResourceType) int {
	switch rt {
	case model.ResourceCrew:
		return p.MaxCrew
	case model.ResourceWeapons:
		return p.MaxWeapons
	case model.ResourceVehicles:
		return p.MaxVehicles
	}
	return 0
}

// Trade buys or sells at the listing price.
func (w *World) Trade(playerID string, kind model.TransactionType, req model.TradeRequest) (model.MarketTransaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.MarketTransaction{}, err
	}
	if !req.ResourceType.Valid() {
		return model.MarketTransaction{}, fmt.Errorf("%w: invalid resource type %q", ErrInvalidInput, req.ResourceType)
	}
	if req.Quantity <= 0 {
		return model.MarketTransaction{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	l, ok := w.listings[req.ResourceType]
	if !ok {
		return model.MarketTransaction{}, fmt.Errorf("%w: no listing for %q", ErrNotFound, req.ResourceType)
	}
	total := l.Price * int64(req.Quantity)
	held := req.ResourceType.Held(*p)

	var delta model.ResourceDelta
	switch kind {
	case model.TransactionBuy:
		if req.Quantity > l.Quantity {
			return model.MarketTransaction{}, fmt.Errorf("%w: only %d available", ErrInvalidInput, l.Quantity)
		}
		if p.Money < total {
			return model.MarketTransaction{}, ErrInsufficientFunds
		}
		if held+req.Quantity > capacity(p, req.ResourceType) {
			return model.MarketTransaction{}, ErrCapacity
		}
		l.Quantity -= req.Quantity
		delta = model.ResourceDelta{Money: -total}.Add(req.ResourceType.Delta(req.Quantity))
	case model.TransactionSell:
		if held < req.Quantity {
			return model.MarketTransaction{}, ErrInsufficientResources
		}
		l.Quantity += req.Quantity
		delta = model.ResourceDelta{Money: total}.Add(req.ResourceType.Delta(-req.Quantity))
	default:
		return model.MarketTransaction{}, fmt.Errorf("%w: unknown transaction %q", ErrInvalidInput, kind)
	}
	w.applyLocked(p, delta)

	tx := model.MarketTransaction{
		ID:              uuid.NewString(),
		PlayerID:        p.ID,
		ResourceType:    req.ResourceType,
		Quantity:        req.Quantity,
		Price:           l.Price,
		TotalCost:       total,
		Timestamp:       w.now(),
		TransactionType: kind,
	}
	w.transactions[p.ID] = prepend(w.transactions[p.ID], tx)
	verb := "Purchased"
	if kind == model.TransactionSell {
		verb = "Sold"
	}
	w.notifyLocked(p.ID, model.NotificationSystem,
		fmt.Sprintf("%s %d %s for %s.", verb, req.Quantity, req.ResourceType, model.FormatMoney(total)))
	w.trackLocked(p.ID, string(kind)+"_"+string(req.ResourceType))
	return tx, nil
}
