package devserver

import (
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

const (
	travelHeatReduction = 5
	policeHeatIncrease  = 5
)

// CurrentRegion returns nil when the player is at headquarters.
func (w *World) CurrentRegion(playerID string) (*model.Region, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return nil, err
	}
	if p.CurrentRegionID == "" {
		return nil, nil
	}
	r, ok := w.regionByID(p.CurrentRegionID)
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// AvailableRegions lists every region except the current one.
func (w *World) AvailableRegions(playerID string) ([]model.Region, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return nil, err
	}
	var out []model.Region
	for _, r := range w.regions {
		if r.ID != p.CurrentRegionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (w *World) TravelHistory(playerID string, n int) []model.TravelAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return limit(w.travels[playerID], n)
}

// Travel moves the player. The chance of being stopped by the police is
// half the player's heat, in percent; a stopped player pays a fine and
// stays put.
func (w *World) Travel(playerID, regionID string) (model.TravelResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.TravelResponse{}, err
	}
	dest, ok := w.regionByID(regionID)
	if !ok {
		return model.TravelResponse{}, fmt.Errorf("%w: region %s", ErrNotFound, regionID)
	}
	if p.CurrentRegionID == dest.ID {
		return model.TravelResponse{}, fmt.Errorf("%w: already in %s", ErrInvalidInput, dest.Name)
	}
	if p.Money < dest.TravelCost {
		return model.TravelResponse{}, ErrInsufficientFunds
	}

	attempt := model.TravelAttempt{
		ID:           uuid.NewString(),
		PlayerID:     p.ID,
		FromRegionID: p.CurrentRegionID,
		ToRegionID:   dest.ID,
		Timestamp:    w.now(),
	}
	var resp model.TravelResponse
	if w.roll(p.Heat / 2) {
		fine := min(dest.TravelCost*2, p.Money)
		resp = model.TravelResponse{
			TravelCost:     dest.TravelCost,
			CaughtByPolice: true,
			FineAmount:     fine,
			HeatIncrease:   policeHeatIncrease,
			Message:        fmt.Sprintf("Stopped by the police on the way to %s. You paid a %s fine.", dest.Name, model.FormatMoney(fine)),
		}
		attempt.CaughtByPolice = true
		attempt.FineAmount = fine
		attempt.HeatChange = policeHeatIncrease
	} else {
		reduction := min(travelHeatReduction, p.Heat)
		resp = model.TravelResponse{
			Success:       true,
			RegionID:      dest.ID,
			RegionName:    dest.Name,
			TravelCost:    dest.TravelCost,
			HeatReduction: reduction,
			Message:       fmt.Sprintf("You arrived in %s.", dest.Name),
		}
		attempt.Success = true
		attempt.HeatChange = -reduction
		p.CurrentRegionID, p.CurrentRegionName = dest.ID, dest.Name
	}
	w.applyLocked(p, resp.Delta())
	w.travels[p.ID] = prepend(w.travels[p.ID], attempt)

	if resp.Success {
		w.events.SendToPlayer(p.ID, model.EventPlayerRegionChanged, model.RegionChangedPayload{
			Event:      model.EventPlayerRegionChanged,
			PlayerID:   p.ID,
			RegionID:   dest.ID,
			RegionName: dest.Name,
			Timestamp:  attempt.Timestamp,
		})
	} else {
		w.notifyLocked(p.ID, model.NotificationHeat, resp.Message)
	}
	return resp, nil
}
