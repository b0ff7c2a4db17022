package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"golang.org/x/sync/errgroup"
)

type CampaignAPI interface {
	GetCampaigns(ctx context.Context) (*api.Result[[]model.Campaign], error)
	GetCampaign(ctx context.Context, id string) (*api.Result[model.Campaign], error)
	GetProgress(ctx context.Context, campaignID string) (*api.Result[model.ProgressResponse], error)
	Start(ctx context.Context, campaignID string) (*api.Result[model.PlayerCampaignProgress], error)
	GetMission(ctx context.Context, missionID string) (*api.Result[model.Mission], error)
	SelectChoice(ctx context.Context, missionID, choiceID string) (*api.Result[model.PlayerCampaignProgress], error)
	CompleteChoice(ctx context.Context, missionID, choiceID string) (*api.Result[model.ChoiceCompleteResponse], error)
	GetChoicePOIs(ctx context.Context, choiceID string) (*api.Result[[]model.CampaignPOI], error)
	GetChoiceOperations(ctx context.Context, choiceID string) (*api.Result[[]model.MissionOperation], error)
	InteractWithPOI(ctx context.Context, poiID string, it model.InteractionType) (*api.Result[model.InteractResponse], error)
	CompletePOI(ctx context.Context, poiID string) (*api.Result[model.PlayerCampaignProgress], error)
	CompleteOperation(ctx context.Context, operationID, attemptID string) (*api.Result[model.PlayerCampaignProgress], error)
	TrackAction(ctx context.Context, action model.TrackedAction) (*api.Result[model.TrackActionResponse], error)
}

// CampaignStore follows one selected campaign: its progress, the current
// mission and the POIs and operations of the chosen branch.
type CampaignStore struct {
	base
	api    CampaignAPI
	player *PlayerStore

	mu              sync.RWMutex
	campaigns       []model.Campaign
	campaign        *model.Campaign
	progress        *model.PlayerCampaignProgress
	missionProgress []model.PlayerMissionProgress
	mission         *model.Mission
	choiceID        string
	pois            []model.CampaignPOI
	operations      []model.MissionOperation

	tracking atomic.Bool
}

func NewCampaignStore(a CampaignAPI, player *PlayerStore, opts Options) *CampaignStore {
	s := &CampaignStore{api: a, player: player}
	s.setup(opts)
	return s
}

func (s *CampaignStore) FetchCampaigns(ctx context.Context) error {
	return s.track(TopicCampaign, "fetch campaigns", func() error {
		res, err := s.api.GetCampaigns(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.campaigns = res.Data
		s.mu.Unlock()
		return nil
	})
}

func (s *CampaignStore) FetchCampaign(ctx context.Context, id string) error {
	return s.track(TopicCampaign, "fetch campaign", func() error {
		return s.loadCampaign(ctx, id)
	})
}

func (s *CampaignStore) loadCampaign(ctx context.Context, id string) error {
	res, err := s.api.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	c := res.Data
	s.mu.Lock()
	if s.campaign == nil || s.campaign.ID != c.ID {
		s.progress, s.missionProgress, s.mission = nil, nil, nil
		s.clearChoiceLocked()
	}
	s.campaign = &c
	s.mu.Unlock()
	return nil
}

// SelectCampaign loads the campaign, the player's progress in it and, when
// started, the current mission.
func (s *CampaignStore) SelectCampaign(ctx context.Context, id string) error {
	return s.track(TopicCampaign, "select campaign", func() error {
		if err := s.loadCampaign(ctx, id); err != nil {
			return err
		}
		if err := s.loadProgress(ctx, id); err != nil {
			return err
		}
		return s.loadMission(ctx)
	})
}

func (s *CampaignStore) FetchProgress(ctx context.Context, campaignID string) error {
	return s.track(TopicCampaign, "fetch campaign progress", func() error {
		return s.loadProgress(ctx, campaignID)
	})
}

func (s *CampaignStore) loadProgress(ctx context.Context, campaignID string) error {
	res, err := s.api.GetProgress(ctx, campaignID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if res.Data.Started && res.Data.Progress != nil {
		p := *res.Data.Progress
		s.progress = &p
	} else {
		s.progress = nil
	}
	s.missionProgress = res.Data.MissionProgress
	s.mu.Unlock()
	return nil
}

func (s *CampaignStore) StartCampaign(ctx context.Context, id string) error {
	return s.track(TopicCampaign, "start campaign", func() error {
		res, err := s.api.Start(ctx, id)
		if err != nil {
			return err
		}
		s.setProgress(res.Data)
		return s.loadMission(ctx)
	})
}

// FetchCurrentMission loads the mission the progress points at, plus the
// branch details when a choice is already selected.
func (s *CampaignStore) FetchCurrentMission(ctx context.Context) error {
	return s.track(TopicCampaign, "fetch current mission", func() error {
		return s.loadMission(ctx)
	})
}

func (s *CampaignStore) loadMission(ctx context.Context) error {
	s.mu.RLock()
	var missionID, choiceID string
	if s.progress != nil {
		missionID, choiceID = s.progress.CurrentMissionID, s.progress.CurrentChoiceID
	}
	s.mu.RUnlock()
	if missionID == "" {
		s.mu.Lock()
		s.mission = nil
		s.clearChoiceLocked()
		s.mu.Unlock()
		return nil
	}

	res, err := s.api.GetMission(ctx, missionID)
	if err != nil {
		return err
	}
	m := res.Data
	s.mu.Lock()
	s.mission = &m
	s.mu.Unlock()

	if choiceID == "" {
		s.mu.Lock()
		s.clearChoiceLocked()
		s.mu.Unlock()
		return nil
	}
	return s.loadChoice(ctx, choiceID)
}

// loadChoice fetches a branch's POIs and operations concurrently.
func (s *CampaignStore) loadChoice(ctx context.Context, choiceID string) error {
	var (
		pois []model.CampaignPOI
		ops  []model.MissionOperation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.api.GetChoicePOIs(gctx, choiceID)
		if err != nil {
			return err
		}
		pois = res.Data
		return nil
	})
	g.Go(func() error {
		res, err := s.api.GetChoiceOperations(gctx, choiceID)
		if err != nil {
			return err
		}
		ops = res.Data
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.choiceID = choiceID
	s.pois = pois
	s.operations = ops
	s.mu.Unlock()
	return nil
}

func (s *CampaignStore) SelectChoice(ctx context.Context, missionID, choiceID string) error {
	return s.track(TopicCampaign, "select choice", func() error {
		res, err := s.api.SelectChoice(ctx, missionID, choiceID)
		if err != nil {
			return err
		}
		s.setProgress(res.Data)
		return s.loadChoice(ctx, choiceID)
	})
}

// CompleteChoice finishes the selected branch, credits its rewards and
// moves on to the next mission.
func (s *CampaignStore) CompleteChoice(ctx context.Context, missionID, choiceID string) (*api.Result[model.ChoiceCompleteResponse], error) {
	var out *api.Result[model.ChoiceCompleteResponse]
	err := s.track(TopicCampaign, "complete choice", func() error {
		res, err := s.api.CompleteChoice(ctx, missionID, choiceID)
		if err != nil {
			return err
		}
		if res.Data.Rewards != nil {
			_ = s.player.Apply(res.Data.Rewards.Delta())
		}
		if res.Data.Progress != nil {
			s.setProgress(*res.Data.Progress)
		}
		s.mu.Lock()
		s.clearChoiceLocked()
		s.mu.Unlock()
		out = res
		return s.loadMission(ctx)
	})
	return out, err
}

func (s *CampaignStore) InteractWithPOI(ctx context.Context, poiID string, it model.InteractionType) (*api.Result[model.InteractResponse], error) {
	var out *api.Result[model.InteractResponse]
	err := s.track(TopicCampaign, "interact with poi", func() error {
		if it == "" {
			it = model.InteractionNeutral
		}
		res, err := s.api.InteractWithPOI(ctx, poiID, it)
		if err != nil {
			return err
		}
		if res.Data.ResourceEffect != nil {
			_ = s.player.Apply(res.Data.ResourceEffect.Delta())
		}
		if d := res.Data.Dialogue; d != nil {
			s.mu.Lock()
			for i := range s.pois {
				if s.pois[i].ID == poiID {
					s.pois[i].Dialogues = append(s.pois[i].Dialogues, *d)
				}
			}
			s.mu.Unlock()
		}
		out = res
		return nil
	})
	return out, err
}

func (s *CampaignStore) CompletePOI(ctx context.Context, poiID string) error {
	return s.track(TopicCampaign, "complete poi", func() error {
		res, err := s.api.CompletePOI(ctx, poiID)
		if err != nil {
			return err
		}
		s.setProgress(res.Data)
		s.mu.Lock()
		for i := range s.pois {
			if s.pois[i].ID == poiID {
				s.pois[i].IsCompleted = true
			}
		}
		s.mu.Unlock()
		return nil
	})
}

func (s *CampaignStore) CompleteOperation(ctx context.Context, operationID, attemptID string) error {
	return s.track(TopicCampaign, "complete campaign operation", func() error {
		res, err := s.api.CompleteOperation(ctx, operationID, attemptID)
		if err != nil {
			return err
		}
		s.setProgress(res.Data)
		s.mu.Lock()
		for i := range s.operations {
			if s.operations[i].ID == operationID {
				s.operations[i].IsCompleted = true
			}
		}
		s.mu.Unlock()
		return nil
	})
}

// TrackAction reports a gameplay action toward the current mission's
// conditions. Only one report may be in flight.
func (s *CampaignStore) TrackAction(ctx context.Context, action model.TrackedAction) (*api.Result[model.TrackActionResponse], error) {
	if !s.tracking.CompareAndSwap(false, true) {
		return nil, ErrTrackingInProgress
	}
	defer s.tracking.Store(false)

	var out *api.Result[model.TrackActionResponse]
	err := s.track(TopicCampaign, "track action", func() error {
		res, err := s.api.TrackAction(ctx, action)
		if err != nil {
			return err
		}
		out = res
		if len(res.Data.ConditionsCompleted) == 0 && !res.Data.MissionCompleted {
			return nil
		}
		return s.refresh(ctx)
	})
	return out, err
}

// RefreshMission reloads progress and the current mission of the selected
// campaign.
func (s *CampaignStore) RefreshMission(ctx context.Context) error {
	return s.track(TopicCampaign, "refresh mission", func() error {
		return s.refresh(ctx)
	})
}

func (s *CampaignStore) refresh(ctx context.Context) error {
	id := s.SelectedCampaignID()
	if id == "" {
		return ErrNoCampaignSelected
	}
	if err := s.loadProgress(ctx, id); err != nil {
		return err
	}
	return s.loadMission(ctx)
}

// UpsertPOI replaces the POI with the same id or appends it when it
// belongs to the selected choice.
func (s *CampaignStore) UpsertPOI(poi model.CampaignPOI) {
	s.mu.Lock()
	if i := slices.IndexFunc(s.pois, func(p model.CampaignPOI) bool { return p.ID == poi.ID }); i >= 0 {
		s.pois[i] = poi
	} else if s.choiceID != "" && poi.ChoiceID == s.choiceID {
		s.pois = append(s.pois, poi)
	}
	s.mu.Unlock()
	s.notify(TopicCampaign)
}

func (s *CampaignStore) UpsertOperation(op model.MissionOperation) {
	s.mu.Lock()
	if i := slices.IndexFunc(s.operations, func(o model.MissionOperation) bool { return o.ID == op.ID }); i >= 0 {
		s.operations[i] = op
	} else if s.choiceID != "" && op.ChoiceID == s.choiceID {
		s.operations = append(s.operations, op)
	}
	s.mu.Unlock()
	s.notify(TopicCampaign)
}

// UpsertChoice patches a choice of the current mission. Updates for other
// missions are ignored.
func (s *CampaignStore) UpsertChoice(missionID string, choice model.MissionChoice) bool {
	s.mu.Lock()
	if s.mission == nil || s.mission.ID != missionID {
		s.mu.Unlock()
		return false
	}
	m := *s.mission
	m.Choices = clone(m.Choices)
	if i := slices.IndexFunc(m.Choices, func(c model.MissionChoice) bool { return c.ID == choice.ID }); i >= 0 {
		m.Choices[i] = choice
	} else {
		m.Choices = append(m.Choices, choice)
	}
	s.mission = &m
	s.mu.Unlock()
	s.notify(TopicCampaign)
	return true
}

func (s *CampaignStore) setProgress(p model.PlayerCampaignProgress) {
	s.mu.Lock()
	s.progress = &p
	s.mu.Unlock()
}

func (s *CampaignStore) clearChoiceLocked() {
	s.choiceID = ""
	s.pois = nil
	s.operations = nil
}

func (s *CampaignStore) Campaigns() []model.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.campaigns)
}

func (s *CampaignStore) Campaign() (model.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.campaign == nil {
		return model.Campaign{}, false
	}
	return *s.campaign, true
}

func (s *CampaignStore) SelectedCampaignID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.campaign == nil {
		return ""
	}
	return s.campaign.ID
}

// Progress reports false when the selected campaign was never started.
func (s *CampaignStore) Progress() (model.PlayerCampaignProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.progress == nil {
		return model.PlayerCampaignProgress{}, false
	}
	return *s.progress, true
}

func (s *CampaignStore) MissionProgress() []model.PlayerMissionProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.missionProgress)
}

func (s *CampaignStore) CurrentMission() (model.Mission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mission == nil {
		return model.Mission{}, false
	}
	return *s.mission, true
}

func (s *CampaignStore) SelectedChoiceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.choiceID
}

func (s *CampaignStore) POIs() []model.CampaignPOI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.pois)
}

func (s *CampaignStore) Operations() []model.MissionOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.operations)
}

func (s *CampaignStore) IncompletePOIs() []model.CampaignPOI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.CampaignPOI
	for _, p := range s.pois {
		if !p.IsCompleted {
			out = append(out, p)
		}
	}
	return out
}

func (s *CampaignStore) IncompleteOperations() []model.MissionOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.MissionOperation
	for _, o := range s.operations {
		if !o.IsCompleted {
			out = append(out, o)
		}
	}
	return out
}

// IsChoiceComplete is true once a choice is selected and every POI and
// operation of it is done.
func (s *CampaignStore) IsChoiceComplete() bool {
	if s.SelectedChoiceID() == "" {
		return false
	}
	return len(s.IncompletePOIs()) == 0 && len(s.IncompleteOperations()) == 0
}

func (s *CampaignStore) Reset() {
	s.mu.Lock()
	s.campaigns = nil
	s.campaign = nil
	s.progress, s.missionProgress, s.mission = nil, nil, nil
	s.clearChoiceLocked()
	s.mu.Unlock()
	s.ClearErr()
	s.notify(TopicCampaign)
}
