package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

type OperationsAPI interface {
	GetAvailable(ctx context.Context) (*api.Result[[]model.Operation], error)
	GetCurrent(ctx context.Context) (*api.Result[[]model.OperationAttempt], error)
	GetCompleted(ctx context.Context) (*api.Result[[]model.OperationAttempt], error)
	GetRefreshInfo(ctx context.Context) (*api.Result[model.OperationsRefreshInfo], error)
	Start(ctx context.Context, operationID string, res model.OperationResources) (*api.Result[model.OperationAttempt], error)
	Cancel(ctx context.Context, attemptID string) (*api.Result[model.OperationAttempt], error)
	Collect(ctx context.Context, attemptID string) (*api.Result[model.OperationResult], error)
}

type OperationsStore struct {
	base
	api    OperationsAPI
	player *PlayerStore

	mu          sync.RWMutex
	available   []model.Operation
	current     []model.OperationAttempt
	completed   []model.OperationAttempt
	refreshInfo *model.OperationsRefreshInfo
	selected    string

	ticks atomic.Uint64
	timer *clock.Interval
}

func NewOperationsStore(a OperationsAPI, player *PlayerStore, opts Options) *OperationsStore {
	s := &OperationsStore{api: a, player: player}
	s.setup(opts)
	s.timer = clock.NewInterval(s.opts.Clock, s.opts.TickInterval, func() {
		s.ticks.Add(1)
		s.notify(TopicOperationsTick)
	})
	return s
}

func (s *OperationsStore) FetchAvailable(ctx context.Context) error {
	return s.track(TopicOperations, "fetch available operations", func() error {
		res, err := s.api.GetAvailable(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.available = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *OperationsStore) FetchCurrent(ctx context.Context) error {
	return s.track(TopicOperations, "fetch current operations", func() error {
		res, err := s.api.GetCurrent(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.current = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *OperationsStore) FetchCompleted(ctx context.Context) error {
	return s.track(TopicOperations, "fetch completed operations", func() error {
		res, err := s.api.GetCompleted(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.completed = res.Data
		s.mu.Unlock()
		return nil
	})
}

// FetchPlayerOperations loads current then completed attempts.
func (s *OperationsStore) FetchPlayerOperations(ctx context.Context) error {
	if err := s.FetchCurrent(ctx); err != nil {
		return err
	}
	return s.FetchCompleted(ctx)
}

func (s *OperationsStore) FetchRefreshInfo(ctx context.Context) error {
	return s.track(TopicOperations, "fetch refresh info", func() error {
		res, err := s.api.GetRefreshInfo(ctx)
		if err != nil {
			return err
		}
		info := res.Data
		s.mu.Lock()
		s.refreshInfo = &info
		s.mu.Unlock()
		return nil
	})
}

// ReplaceCatalog swaps the available operations wholesale.
func (s *OperationsStore) ReplaceCatalog(ops []model.Operation, info *model.OperationsRefreshInfo) {
	s.mu.Lock()
	s.available = clone(ops)
	if info != nil {
		cp := *info
		s.refreshInfo = &cp
	}
	s.mu.Unlock()
	s.notify(TopicOperations)
}

// Start commits res to operationID. The committed resources must meet the
// operation's minimums and be held by the player.
func (s *OperationsStore) Start(ctx context.Context, operationID string, res model.OperationResources) (*api.Result[model.OperationAttempt], error) {
	var out *api.Result[model.OperationAttempt]
	err := s.track(TopicOperations, "start operation", func() error {
		op, ok := s.Operation(operationID)
		if !ok {
			return ErrUnknownOperation
		}
		p, ok := s.player.Profile()
		if !ok {
			return ErrNotLoaded
		}
		if err := checkRequirements(op.Requirements, res, p); err != nil {
			return err
		}
		if p.Crew < res.Crew || p.Weapons < res.Weapons || p.Vehicles < res.Vehicles || p.Money < res.Money {
			return ErrInsufficientResources
		}

		r, err := s.api.Start(ctx, operationID, res)
		if err != nil {
			return err
		}
		attempt := r.Data
		if attempt.ID == "" {
			attempt.ID = uuid.NewString()
		}
		if attempt.OperationID == "" {
			attempt.OperationID = operationID
		}
		if attempt.Status == "" {
			attempt.Status = model.StatusInProgress
		}
		if attempt.Timestamp == "" {
			attempt.Timestamp = model.FormatTime(s.now())
		}
		attempt.Resources = res
		r.Data = attempt

		_ = s.player.Apply(res.Cost())
		s.mu.Lock()
		s.current = append(s.current, attempt)
		s.mu.Unlock()

		if !s.timer.Running() {
			s.timer.Start()
		}
		out = r
		return nil
	})
	return out, err
}

func checkRequirements(req model.OperationRequirements, res model.OperationResources, p model.PlayerProfile) error {
	switch {
	case res.Crew < req.MinCrew:
		return fmt.Errorf("%w: needs %d crew", ErrRequirementsNotMet, req.MinCrew)
	case res.Weapons < req.MinWeapons:
		return fmt.Errorf("%w: needs %d weapons", ErrRequirementsNotMet, req.MinWeapons)
	case res.Vehicles < req.MinVehicles:
		return fmt.Errorf("%w: needs %d vehicles", ErrRequirementsNotMet, req.MinVehicles)
	case p.Respect < req.MinRespect:
		return fmt.Errorf("%w: needs %d respect", ErrRequirementsNotMet, req.MinRespect)
	case p.Influence < req.MinInfluence:
		return fmt.Errorf("%w: needs %d influence", ErrRequirementsNotMet, req.MinInfluence)
	case req.MaxHeat > 0 && p.Heat > req.MaxHeat:
		return fmt.Errorf("%w: heat above %d", ErrRequirementsNotMet, req.MaxHeat)
	}
	return nil
}

// Cancel moves an in-progress attempt to cancelled.
func (s *OperationsStore) Cancel(ctx context.Context, attemptID string) (*api.Result[model.OperationAttempt], error) {
	var out *api.Result[model.OperationAttempt]
	err := s.track(TopicOperations, "cancel operation", func() error {
		a, ok := s.currentAttempt(attemptID)
		if !ok {
			return ErrUnknownAttempt
		}
		if err := a.Status.Transition(model.StatusCancelled); err != nil {
			return err
		}
		r, err := s.api.Cancel(ctx, attemptID)
		if err != nil {
			return err
		}
		a.Status = model.StatusCancelled
		a.CompletionTime = model.FormatTime(s.now())
		s.finish(a)
		r.Data = a
		out = r
		return nil
	})
	return out, err
}

// Collect resolves an in-progress attempt. This is the only path to
// completed or failed; expiry of the countdown never collects.
func (s *OperationsStore) Collect(ctx context.Context, attemptID string) (*api.Result[model.OperationResult], error) {
	var out *api.Result[model.OperationResult]
	err := s.track(TopicOperations, "collect operation", func() error {
		a, ok := s.currentAttempt(attemptID)
		if !ok {
			return ErrUnknownAttempt
		}
		if err := a.Status.Transition(model.StatusCompleted); err != nil {
			return err
		}
		r, err := s.api.Collect(ctx, attemptID)
		if err != nil {
			return err
		}
		result := r.Data
		a.Result = &result
		a.Status = model.StatusFailed
		if result.Success {
			a.Status = model.StatusCompleted
		}
		a.CompletionTime = model.FormatTime(s.now())
		s.finish(a)
		_ = s.player.Apply(result.Delta())
		out = r
		return nil
	})
	return out, err
}

// finish removes a from the current list and prepends it to completed.
func (s *OperationsStore) finish(a model.OperationAttempt) {
	s.mu.Lock()
	for i := range s.current {
		if s.current[i].ID == a.ID {
			s.current = append(s.current[:i:i], s.current[i+1:]...)
			break
		}
	}
	s.completed = prepend(s.completed, a)
	s.mu.Unlock()
}

func (s *OperationsStore) currentAttempt(id string) (model.OperationAttempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.current {
		if a.ID == id {
			return a, true
		}
	}
	return model.OperationAttempt{}, false
}

func (s *OperationsStore) Operation(id string) (model.Operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.available {
		if o.ID == id {
			return o, true
		}
	}
	return model.Operation{}, false
}

func (s *OperationsStore) Select(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.notify(TopicOperations)
}

func (s *OperationsStore) Selected() (model.Operation, bool) {
	s.mu.RLock()
	id := s.selected
	s.mu.RUnlock()
	return s.Operation(id)
}

func (s *OperationsStore) Available() []model.Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.available)
}

// Special returns the available operations flagged special.
func (s *OperationsStore) Special() []model.Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Operation
	for _, o := range s.available {
		if o.IsSpecial {
			out = append(out, o)
		}
	}
	return out
}

func (s *OperationsStore) Current() []model.OperationAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

func (s *OperationsStore) Completed() []model.OperationAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.completed)
}

func (s *OperationsStore) RefreshInfo() (model.OperationsRefreshInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.refreshInfo == nil {
		return model.OperationsRefreshInfo{}, false
	}
	return *s.refreshInfo, true
}

// NextRefreshIn formats the time until the catalog rotates.
func (s *OperationsStore) NextRefreshIn() string {
	info, ok := s.RefreshInfo()
	if !ok || info.NextRefreshTime == "" {
		return model.CountdownUnknown
	}
	t, err := model.ParseTime(info.NextRefreshTime)
	if err != nil {
		return model.CountdownUnknown
	}
	return model.FormatDuration(model.Remaining(t, s.now()))
}

// CompletionTime joins the attempt with its catalog entry:
// attempt.timestamp + operation.duration.
func (s *OperationsStore) CompletionTime(attemptID string) (time.Time, bool) {
	a, ok := s.currentAttempt(attemptID)
	if !ok {
		return time.Time{}, false
	}
	op, ok := s.Operation(a.OperationID)
	if !ok {
		return time.Time{}, false
	}
	start, err := model.ParseTime(a.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return start.Add(op.DurationTime()), true
}

func (s *OperationsStore) TimeRemaining(attemptID string) string {
	a, ok := s.currentAttempt(attemptID)
	if !ok || a.Status != model.StatusInProgress {
		return model.CountdownCompleted
	}
	end, ok := s.CompletionTime(attemptID)
	if !ok {
		return model.CountdownUnknown
	}
	left := model.Remaining(end, s.now())
	if left == 0 {
		return model.CountdownReady
	}
	return model.FormatDuration(left)
}

func (s *OperationsStore) IsCompletionSoon(attemptID string) bool {
	a, ok := s.currentAttempt(attemptID)
	if !ok || a.Status != model.StatusInProgress {
		return false
	}
	end, ok := s.CompletionTime(attemptID)
	if !ok {
		return false
	}
	return model.IsSoon(end, s.now())
}

func (s *OperationsStore) StartTimer() { s.timer.Start() }

func (s *OperationsStore) StopTimer() { s.timer.Stop() }

func (s *OperationsStore) TimerRunning() bool { return s.timer.Running() }

func (s *OperationsStore) Ticks() uint64 { return s.ticks.Load() }

func (s *OperationsStore) Reset() {
	s.mu.Lock()
	s.available, s.current, s.completed = nil, nil, nil
	s.refreshInfo = nil
	s.selected = ""
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicOperations)
}

func (s *OperationsStore) Close() { s.StopTimer() }
