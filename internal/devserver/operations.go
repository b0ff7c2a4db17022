package devserver

import (
	"fmt"
	"slices"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

// AvailableOperations lists the catalog entries offered in the player's
// region. Operations without a region are offered everywhere.
func (w *World) AvailableOperations(playerID string) ([]model.Operation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return nil, err
	}
	var out []model.Operation
	for _, op := range w.operations {
		if op.RegionID == "" || op.RegionID == p.CurrentRegionID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (w *World) attemptsWhere(playerID string, keep func(model.OperationStatus) bool) []model.OperationAttempt {
	var out []model.OperationAttempt
	for _, a := range w.attempts[playerID] {
		if keep(a.Status) {
			out = append(out, *a)
		}
	}
	return out
}

func (w *World) CurrentOperations(playerID string) []model.OperationAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attemptsWhere(playerID, func(s model.OperationStatus) bool { return s == model.StatusInProgress })
}

func (w *World) CompletedOperations(playerID string) []model.OperationAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attemptsWhere(playerID, model.OperationStatus.Terminal)
}

func (w *World) RefreshInfo() model.OperationsRefreshInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refresh
}

func (w *World) operationLocked(id string) (model.Operation, bool) {
	i := slices.IndexFunc(w.operations, func(o model.Operation) bool { return o.ID == id })
	if i < 0 {
		return model.Operation{}, false
	}
	return w.operations[i], true
}

func meetsRequirements(p *model.PlayerProfile, r model.OperationRequirements) bool {
	if p.Crew < r.MinCrew || p.Weapons < r.MinWeapons || p.Vehicles < r.MinVehicles {
		return false
	}
	if p.Respect < r.MinRespect || p.Influence < r.MinInfluence {
		return false
	}
	return r.MaxHeat == 0 || p.Heat <= r.MaxHeat
}

func (w *World) StartOperation(playerID, operationID string, res model.OperationResources) (model.OperationAttempt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.OperationAttempt{}, err
	}
	op, ok := w.operationLocked(operationID)
	if !ok {
		return model.OperationAttempt{}, fmt.Errorf("%w: operation %s", ErrNotFound, operationID)
	}
	if op.RegionID != "" && op.RegionID != p.CurrentRegionID {
		return model.OperationAttempt{}, fmt.Errorf("%w: %s is not offered here", ErrNoRegion, op.Name)
	}
	if !meetsRequirements(p, op.Requirements) {
		return model.OperationAttempt{}, ErrRequirementsNotMet
	}
	if res.Crew < 0 || res.Weapons < 0 || res.Vehicles < 0 || res.Money < 0 {
		return model.OperationAttempt{}, fmt.Errorf("%w: negative resources", ErrInvalidInput)
	}
	if p.Crew < res.Crew || p.Weapons < res.Weapons || p.Vehicles < res.Vehicles {
		return model.OperationAttempt{}, ErrInsufficientResources
	}
	if p.Money < res.Money {
		return model.OperationAttempt{}, ErrInsufficientFunds
	}
	for _, a := range w.attempts[p.ID] {
		if a.OperationID == op.ID && a.Status == model.StatusInProgress {
			return model.OperationAttempt{}, fmt.Errorf("%w: %s is already running", ErrConflict, op.Name)
		}
	}

	w.applyLocked(p, res.Cost())
	a := &model.OperationAttempt{
		ID:          uuid.NewString(),
		OperationID: op.ID,
		PlayerID:    p.ID,
		Timestamp:   w.now(),
		Resources:   res,
		Status:      model.StatusInProgress,
	}
	w.attempts[p.ID] = append(w.attempts[p.ID], a)
	return *a, nil
}

func (w *World) attemptLocked(playerID, attemptID string) (*model.OperationAttempt, error) {
	for _, a := range w.attempts[playerID] {
		if a.ID == attemptID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: attempt %s", ErrNotFound, attemptID)
}

// CancelOperation abandons a running attempt. Committed resources are
// not returned.
func (w *World) CancelOperation(playerID, attemptID string) (model.OperationAttempt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, err := w.attemptLocked(playerID, attemptID)
	if err != nil {
		return model.OperationAttempt{}, err
	}
	if err := a.Status.Transition(model.StatusCancelled); err != nil {
		return model.OperationAttempt{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	a.Status = model.StatusCancelled
	a.CompletionTime = w.now()
	return *a, nil
}

// CollectOperation resolves a finished attempt against the seeded RNG.
func (w *World) CollectOperation(playerID, attemptID string) (model.OperationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.OperationResult{}, err
	}
	a, err := w.attemptLocked(playerID, attemptID)
	if err != nil {
		return model.OperationResult{}, err
	}
	if a.Status != model.StatusInProgress {
		return model.OperationResult{}, fmt.Errorf("%w: attempt is %s", ErrConflict, a.Status)
	}
	op, ok := w.operationLocked(a.OperationID)
	if !ok {
		return model.OperationResult{}, fmt.Errorf("%w: operation %s", ErrNotFound, a.OperationID)
	}
	started, err := model.ParseTime(a.Timestamp)
	if err != nil {
		return model.OperationResult{}, err
	}
	if w.clock.Now().Before(started.Add(op.DurationTime())) {
		return model.OperationResult{}, fmt.Errorf("%w: %s is not finished yet", ErrConflict, op.Name)
	}

	var result model.OperationResult
	if w.roll(op.SuccessRate) {
		result = model.OperationResult{
			Success:         true,
			MoneyGained:     op.Rewards.Money,
			CrewGained:      op.Rewards.Crew,
			WeaponsGained:   op.Rewards.Weapons,
			VehiclesGained:  op.Rewards.Vehicles,
			RespectGained:   op.Rewards.Respect,
			InfluenceGained: op.Rewards.Influence,
			HeatReduced:     op.Rewards.HeatReduction,
			Message:         fmt.Sprintf("Operation successful! %s went off without a hitch.", op.Name),
		}
		a.Status = model.StatusCompleted
		if s := w.stats[p.ID]; s != nil {
			s.TotalOperationsCompleted++
		}
	} else {
		result = model.OperationResult{
			CrewLost:      op.Risks.CrewLoss,
			WeaponsLost:   op.Risks.WeaponsLoss,
			VehiclesLost:  op.Risks.VehiclesLoss,
			MoneyLost:     op.Risks.MoneyLoss,
			RespectLost:   op.Risks.RespectLoss,
			HeatIncreased: op.Risks.HeatIncrease,
			Message:       fmt.Sprintf("Operation failed. %s went sideways.", op.Name),
		}
		a.Status = model.StatusFailed
	}
	a.Result = &result
	a.CompletionTime = w.now()
	w.applyLocked(p, result.Delta())
	w.notifyLocked(p.ID, model.NotificationOperation, result.Message)
	if result.Success {
		w.trackLocked(p.ID, op.Type)
	}
	return result, nil
}

// RefreshOperations rotates the catalog window and pushes the new catalog
// to every connected player.
func (w *World) RefreshOperations() model.OperationsRefreshedPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	interval := operationsRefreshInterval
	w.refresh = model.OperationsRefreshInfo{
		RefreshInterval: int(interval.Seconds()),
		LastRefreshTime: model.FormatTime(now),
		NextRefreshTime: model.FormatTime(now.Add(interval)),
	}
	for i := range w.operations {
		if w.operations[i].IsSpecial {
			w.operations[i].AvailableUntil = w.refresh.NextRefreshTime
		}
	}
	payload := model.OperationsRefreshedPayload{
		Operations:  append([]model.Operation(nil), w.operations...),
		Timestamp:   w.refresh.LastRefreshTime,
		RefreshInfo: w.refresh,
	}
	w.events.SendToAll(model.EventOperationsRefreshed, payload)
	return payload
}
