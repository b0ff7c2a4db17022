package devserver

import (
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

// strength is the defensive value of a committed force.
func strength(r model.ActionResources) int {
	return r.Crew*10 + r.Weapons*15 + r.Vehicles*20
}

func (w *World) Regions() []model.Region {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Region(nil), w.regions...)
}

func (w *World) Districts(regionID string) []model.District {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.District
	for _, d := range w.districts {
		if regionID == "" || d.RegionID == regionID {
			out = append(out, d)
		}
	}
	return out
}

func (w *World) Cities(districtID string) []model.City {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.City
	for _, c := range w.cities {
		if districtID == "" || c.DistrictID == districtID {
			out = append(out, c)
		}
	}
	return out
}

func (w *World) Hotspots(cityID string) []model.Hotspot {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.Hotspot
	for _, h := range w.hotspots {
		if cityID == "" || h.CityID == cityID {
			out = append(out, *h)
		}
	}
	return out
}

func (w *World) ControlledHotspots(playerID string) []model.Hotspot {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.Hotspot
	for _, h := range w.hotspots {
		if h.Controller == playerID {
			out = append(out, *h)
		}
	}
	return out
}

func (w *World) Hotspot(id string) (model.Hotspot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.hotspotByID(id)
	if !ok {
		return model.Hotspot{}, fmt.Errorf("%w: hotspot %s", ErrNotFound, id)
	}
	return *h, nil
}

func (w *World) RecentActions(playerID string) []model.TerritoryAction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return limit(w.actions[playerID], 20)
}

// PerformAction resolves a territory action. Outcomes are deterministic:
// the committed force is compared against the hotspot's defense.
func (w *World) PerformAction(playerID string, typ model.ActionType, req model.PerformActionRequest) (model.ActionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.ActionResult{}, err
	}
	res := req.Resources
	if res.Crew < 0 || res.Weapons < 0 || res.Vehicles < 0 {
		return model.ActionResult{}, fmt.Errorf("%w: negative resources", ErrInvalidInput)
	}
	if p.Crew < res.Crew || p.Weapons < res.Weapons || p.Vehicles < res.Vehicles {
		return model.ActionResult{}, ErrInsufficientResources
	}
	h, ok := w.hotspotByID(req.HotspotID)
	if !ok {
		return model.ActionResult{}, fmt.Errorf("%w: hotspot %s", ErrNotFound, req.HotspotID)
	}
	if p.CurrentRegionID == "" || w.regionOfHotspot(h) != p.CurrentRegionID {
		return model.ActionResult{}, fmt.Errorf("%w: hotspot is outside your region", ErrNoRegion)
	}

	var result model.ActionResult
	switch typ {
	case model.ActionExtortion:
		result, err = w.extortLocked(p, h, res)
	case model.ActionTakeover:
		result, err = w.takeoverLocked(p, h, res)
	case model.ActionCollection:
		result, err = w.collectLocked(p, h)
	case model.ActionDefend:
		result, err = w.defendLocked(p, h, res)
	default:
		return model.ActionResult{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, typ)
	}
	if err != nil {
		return model.ActionResult{}, err
	}

	w.applyLocked(p, result.Delta())
	if s := w.stats[p.ID]; s != nil && typ == model.ActionTakeover {
		if result.Success {
			s.SuccessfulTakeovers++
		} else {
			s.FailedTakeovers++
		}
	}
	r := result
	w.actions[p.ID] = prepend(w.actions[p.ID], model.TerritoryAction{
		ID:        uuid.NewString(),
		PlayerID:  p.ID,
		Type:      typ,
		HotspotID: h.ID,
		Resources: res,
		Result:    &r,
		Timestamp: w.now(),
	})
	w.trackLocked(p.ID, string(typ))
	return result, nil
}

func (w *World) extortLocked(p *model.PlayerProfile, h *model.Hotspot, res model.ActionResources) (model.ActionResult, error) {
	if h.IsLegal {
		return model.ActionResult{}, fmt.Errorf("%w: only illegal businesses can be extorted", ErrInvalidInput)
	}
	if h.Controller == p.ID {
		return model.ActionResult{}, fmt.Errorf("%w: you already control this business", ErrConflict)
	}
	if res.Crew < 1 {
		return model.ActionResult{}, fmt.Errorf("%w: extortion needs at least one crew member", ErrInvalidInput)
	}
	if strength(res) >= h.DefenseStrength {
		return model.ActionResult{
			Success:       true,
			MoneyGained:   h.Income / 2,
			RespectGained: 2,
			HeatGenerated: 3,
			Message:       fmt.Sprintf("%s paid up %s.", h.Name, model.FormatMoney(h.Income/2)),
		}, nil
	}
	return model.ActionResult{
		CrewLost:      1,
		HeatGenerated: 2,
		Message:       fmt.Sprintf("%s refused to pay.", h.Name),
	}, nil
}

func (w *World) takeoverLocked(p *model.PlayerProfile, h *model.Hotspot, res model.ActionResources) (model.ActionResult, error) {
	if !h.IsLegal {
		return model.ActionResult{}, fmt.Errorf("%w: cannot take over illegal businesses", ErrInvalidInput)
	}
	if h.Controller == p.ID {
		return model.ActionResult{}, fmt.Errorf("%w: you already control this business", ErrConflict)
	}
	if res.Crew < 1 {
		return model.ActionResult{}, fmt.Errorf("%w: takeover needs at least one crew member", ErrInvalidInput)
	}
	force := strength(res)
	if force <= h.DefenseStrength {
		lost := max(res.Crew/2, 1)
		return model.ActionResult{
			CrewLost:      lost,
			HeatGenerated: 3,
			Message:       fmt.Sprintf("Takeover of %s failed. You lost %d crew.", h.Name, lost),
		}, nil
	}

	previous := h.Controller
	now := w.now()
	h.Controller, h.ControllerName = p.ID, p.Name
	h.Crew, h.Weapons, h.Vehicles = res.Crew, res.Weapons, res.Vehicles
	h.DefenseStrength = force
	h.PendingCollection = 0
	h.LastIncomeTime = now
	h.NextIncomeTime = model.FormatTime(w.clock.Now().Add(w.incomeEvery))
	if previous != "" {
		if _, isPlayer := w.players[previous]; isPlayer {
			w.notifyLocked(previous, model.NotificationTerritory, fmt.Sprintf("Your business %s has been taken over by %s!", h.Name, p.Name))
		}
	}
	w.events.SendToAll(model.EventHotspotUpdated, model.HotspotUpdatedPayload{Hotspot: *h})

	return model.ActionResult{
		Success:           true,
		CrewLost:          res.Crew,
		WeaponsLost:       res.Weapons,
		VehiclesLost:      res.Vehicles,
		RespectGained:     4,
		InfluenceGained:   3,
		HeatGenerated:     5,
		HotspotControlled: true,
		Message:           fmt.Sprintf("Takeover successful! You now control %s.", h.Name),
	}, nil
}

func (w *World) defendLocked(p *model.PlayerProfile, h *model.Hotspot, res model.ActionResources) (model.ActionResult, error) {
	if h.Controller != p.ID {
		return model.ActionResult{}, fmt.Errorf("%w: you do not control this business", ErrConflict)
	}
	h.Crew += res.Crew
	h.Weapons += res.Weapons
	h.Vehicles += res.Vehicles
	h.DefenseStrength += strength(res)
	w.events.SendToAll(model.EventHotspotUpdated, model.HotspotUpdatedPayload{Hotspot: *h})
	return model.ActionResult{
		Success:      true,
		CrewLost:     res.Crew,
		WeaponsLost:  res.Weapons,
		VehiclesLost: res.Vehicles,
		Message:      fmt.Sprintf("%s is now defended with strength %d.", h.Name, h.DefenseStrength),
	}, nil
}

func (w *World) collectLocked(p *model.PlayerProfile, h *model.Hotspot) (model.ActionResult, error) {
	amount, err := w.takePendingLocked(p, h)
	if err != nil {
		return model.ActionResult{}, err
	}
	return model.ActionResult{
		Success:     true,
		MoneyGained: amount,
		Message:     fmt.Sprintf("Collected %s from %s.", model.FormatMoney(amount), h.Name),
	}, nil
}

// takePendingLocked empties the hotspot's pending income. The caller
// credits the player.
func (w *World) takePendingLocked(p *model.PlayerProfile, h *model.Hotspot) (int64, error) {
	if h.Controller != p.ID {
		return 0, fmt.Errorf("%w: you do not control this hotspot", ErrConflict)
	}
	if h.PendingCollection <= 0 {
		return 0, fmt.Errorf("%w: nothing to collect at %s", ErrConflict, h.Name)
	}
	amount := h.PendingCollection
	h.PendingCollection = 0
	h.LastCollectionTime = w.now()
	return amount, nil
}

func (w *World) CollectHotspot(playerID, hotspotID string) (model.CollectResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.CollectResponse{}, err
	}
	h, ok := w.hotspotByID(hotspotID)
	if !ok {
		return model.CollectResponse{}, fmt.Errorf("%w: hotspot %s", ErrNotFound, hotspotID)
	}
	amount, err := w.takePendingLocked(p, h)
	if err != nil {
		return model.CollectResponse{}, err
	}
	w.applyLocked(p, model.ResourceDelta{Money: amount})
	msg := fmt.Sprintf("Successfully collected %s from %s.", model.FormatMoney(amount), h.Name)
	w.notifyLocked(p.ID, model.NotificationCollection, msg)
	return model.CollectResponse{HotspotID: h.ID, CollectedAmount: amount, Message: msg}, nil
}

// CollectAll empties every hotspot the player controls.
func (w *World) CollectAll(playerID string) (model.CollectAllResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.CollectAllResponse{}, err
	}
	var out model.CollectAllResponse
	for _, h := range w.hotspots {
		if h.Controller != p.ID || h.PendingCollection <= 0 {
			continue
		}
		amount, _ := w.takePendingLocked(p, h)
		out.CollectedAmount += amount
		out.HotspotsCount++
	}
	if out.HotspotsCount == 0 {
		out.Message = "Nothing to collect."
		return out, nil
	}
	w.applyLocked(p, model.ResourceDelta{Money: out.CollectedAmount})
	out.Message = fmt.Sprintf("Collected %s from %d businesses.", model.FormatMoney(out.CollectedAmount), out.HotspotsCount)
	w.notifyLocked(p.ID, model.NotificationCollection, out.Message)
	return out, nil
}

// GenerateIncome credits every controlled legal hotspot with one period of
// income and pushes the changes to each owner.
func (w *World) GenerateIncome() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	last, next := model.FormatTime(now), model.FormatTime(now.Add(w.incomeEvery))

	updates := map[string][]model.IncomeUpdate{}
	for _, h := range w.hotspots {
		if h.Controller == "" || !h.IsLegal {
			continue
		}
		h.PendingCollection += h.Income
		h.LastIncomeTime, h.NextIncomeTime = last, next
		if _, isPlayer := w.players[h.Controller]; !isPlayer {
			continue
		}
		updates[h.Controller] = append(updates[h.Controller], model.IncomeUpdate{
			HotspotID:         h.ID,
			HotspotName:       h.Name,
			NewIncome:         h.Income,
			PendingCollection: h.PendingCollection,
			LastIncomeTime:    last,
			NextIncomeTime:    next,
		})
		if h.Income > 1000 {
			w.notifyLocked(h.Controller, model.NotificationCollection,
				fmt.Sprintf("%s is ready for collection at %s.", model.FormatMoney(h.Income), h.Name))
		}
	}
	for playerID, us := range updates {
		var total int64
		for _, h := range w.hotspots {
			if h.Controller == playerID {
				total += h.PendingCollection
			}
		}
		w.events.SendToPlayer(playerID, model.EventIncomeGenerated, model.IncomeGeneratedPayload{
			Updates:      us,
			TotalPending: total,
			Timestamp:    last,
		})
	}
	return len(updates)
}
