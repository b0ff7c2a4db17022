package devserver

import (
	"fmt"
	"slices"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/google/uuid"
)

func (w *World) Campaigns() []model.Campaign {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Campaign, 0, len(w.campaigns))
	for _, c := range w.campaigns {
		c.Chapters = nil
		out = append(out, c)
	}
	return out
}

func (w *World) Campaign(id string) (model.Campaign, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Campaign{}, fmt.Errorf("%w: campaign %s", ErrNotFound, id)
}

func (w *World) campaignLocked(id string) (*model.Campaign, bool) {
	for i := range w.campaigns {
		if w.campaigns[i].ID == id {
			return &w.campaigns[i], true
		}
	}
	return nil, false
}

// missionLocked finds a mission and the campaign it belongs to.
func (w *World) missionLocked(id string) (*model.Mission, string, bool) {
	for ci := range w.campaigns {
		for chi := range w.campaigns[ci].Chapters {
			ch := &w.campaigns[ci].Chapters[chi]
			for mi := range ch.Missions {
				if ch.Missions[mi].ID == id {
					return &ch.Missions[mi], w.campaigns[ci].ID, true
				}
			}
		}
	}
	return nil, "", false
}

func (w *World) choiceLocked(id string) (*model.MissionChoice, string, bool) {
	for ci := range w.campaigns {
		for chi := range w.campaigns[ci].Chapters {
			ch := &w.campaigns[ci].Chapters[chi]
			for mi := range ch.Missions {
				for k := range ch.Missions[mi].Choices {
					if ch.Missions[mi].Choices[k].ID == id {
						return &ch.Missions[mi].Choices[k], w.campaigns[ci].ID, true
					}
				}
			}
		}
	}
	return nil, "", false
}

func (w *World) progressLocked(playerID, campaignID string) *model.PlayerCampaignProgress {
	return w.progress[playerID][campaignID]
}

// activeProgressLocked returns the progress whose current choice is set.
func (w *World) activeProgressLocked(playerID string) *model.PlayerCampaignProgress {
	for _, pr := range w.progress[playerID] {
		if pr.CurrentChoiceID != "" {
			return pr
		}
	}
	return nil
}

func (w *World) Progress(playerID, campaignID string) (model.ProgressResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.campaignLocked(campaignID); !ok {
		return model.ProgressResponse{}, fmt.Errorf("%w: campaign %s", ErrNotFound, campaignID)
	}
	pr := w.progressLocked(playerID, campaignID)
	if pr == nil {
		return model.ProgressResponse{Started: false}, nil
	}
	cp := *pr
	return model.ProgressResponse{Started: true, Progress: &cp}, nil
}

// StartCampaign begins a campaign at its first mission. Starting twice
// returns the existing progress.
func (w *World) StartCampaign(playerID, campaignID string) (model.PlayerCampaignProgress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.player(playerID); err != nil {
		return model.PlayerCampaignProgress{}, err
	}
	c, ok := w.campaignLocked(campaignID)
	if !ok {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: campaign %s", ErrNotFound, campaignID)
	}
	if pr := w.progressLocked(playerID, campaignID); pr != nil {
		return *pr, nil
	}
	if len(c.Chapters) == 0 || len(c.Chapters[0].Missions) == 0 {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: campaign has no missions", ErrConflict)
	}
	now := w.now()
	pr := &model.PlayerCampaignProgress{
		ID:                    uuid.NewString(),
		PlayerID:              playerID,
		CampaignID:            c.ID,
		CurrentChapterID:      c.Chapters[0].ID,
		CurrentMissionID:      c.Chapters[0].Missions[0].ID,
		CompletedMissionIDs:   []string{},
		CompletedChoiceIDs:    []string{},
		CompletedPOIIDs:       []string{},
		CompletedOperationIDs: []string{},
		StartedAt:             now,
		LastUpdated:           now,
	}
	if w.progress[playerID] == nil {
		w.progress[playerID] = map[string]*model.PlayerCampaignProgress{}
	}
	w.progress[playerID][c.ID] = pr
	return *pr, nil
}

// Mission returns the mission with completion flags for the player.
func (w *World) Mission(playerID, missionID string) (model.Mission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, campaignID, ok := w.missionLocked(missionID)
	if !ok {
		return model.Mission{}, fmt.Errorf("%w: mission %s", ErrNotFound, missionID)
	}
	pr := w.progressLocked(playerID, campaignID)
	out := *m
	out.Choices = make([]model.MissionChoice, len(m.Choices))
	for i, ch := range m.Choices {
		out.Choices[i] = decorateChoice(ch, pr)
	}
	return out, nil
}

func decorateChoice(ch model.MissionChoice, pr *model.PlayerCampaignProgress) model.MissionChoice {
	ch.POIs = decoratePOIs(ch.POIs, pr)
	ch.Operations = decorateOperations(ch.Operations, pr)
	return ch
}

func decoratePOIs(list []model.CampaignPOI, pr *model.PlayerCampaignProgress) []model.CampaignPOI {
	out := append([]model.CampaignPOI(nil), list...)
	for i := range out {
		out[i].IsCompleted = pr != nil && slices.Contains(pr.CompletedPOIIDs, out[i].ID)
	}
	return out
}

func decorateOperations(list []model.MissionOperation, pr *model.PlayerCampaignProgress) []model.MissionOperation {
	out := append([]model.MissionOperation(nil), list...)
	for i := range out {
		out[i].IsCompleted = pr != nil && slices.Contains(pr.CompletedOperationIDs, out[i].ID)
	}
	return out
}

func (w *World) SelectChoice(playerID, missionID, choiceID string) (model.PlayerCampaignProgress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.PlayerCampaignProgress{}, err
	}
	m, campaignID, ok := w.missionLocked(missionID)
	if !ok {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: mission %s", ErrNotFound, missionID)
	}
	pr := w.progressLocked(playerID, campaignID)
	if pr == nil || pr.CurrentMissionID != m.ID {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: %s is not your current mission", ErrConflict, m.Title)
	}
	i := slices.IndexFunc(m.Choices, func(c model.MissionChoice) bool { return c.ID == choiceID })
	if i < 0 {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: choice %s", ErrNotFound, choiceID)
	}
	if req := m.Choices[i].Requirements; req != nil {
		if p.Respect < req.MinRespect || p.Influence < req.MinInfluence || (req.MaxHeat > 0 && p.Heat > req.MaxHeat) {
			return model.PlayerCampaignProgress{}, ErrRequirementsNotMet
		}
	}
	pr.CurrentChoiceID = choiceID
	pr.LastUpdated = w.now()
	return *pr, nil
}

func (w *World) ChoicePOIs(playerID, choiceID string) ([]model.CampaignPOI, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, campaignID, ok := w.choiceLocked(choiceID)
	if !ok {
		return nil, fmt.Errorf("%w: choice %s", ErrNotFound, choiceID)
	}
	return decoratePOIs(ch.POIs, w.progressLocked(playerID, campaignID)), nil
}

func (w *World) ChoiceOperations(playerID, choiceID string) ([]model.MissionOperation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, campaignID, ok := w.choiceLocked(choiceID)
	if !ok {
		return nil, fmt.Errorf("%w: choice %s", ErrNotFound, choiceID)
	}
	return decorateOperations(ch.Operations, w.progressLocked(playerID, campaignID)), nil
}

// poiLocked finds a POI of the player's active choice.
func (w *World) poiLocked(playerID, poiID string) (*model.CampaignPOI, *model.MissionChoice, *model.PlayerCampaignProgress, error) {
	pr := w.activeProgressLocked(playerID)
	if pr == nil {
		return nil, nil, nil, fmt.Errorf("%w: no choice selected", ErrConflict)
	}
	ch, _, ok := w.choiceLocked(pr.CurrentChoiceID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: choice %s", ErrNotFound, pr.CurrentChoiceID)
	}
	for i := range ch.POIs {
		if ch.POIs[i].ID == poiID {
			return &ch.POIs[i], ch, pr, nil
		}
	}
	return nil, nil, nil, fmt.Errorf("%w: poi %s", ErrNotFound, poiID)
}

var interactionEffects = map[model.InteractionType]model.ResourceEffect{
	model.InteractionConvince:   {Respect: 1},
	model.InteractionIntimidate: {Influence: 1, Heat: 2},
}

func (w *World) InteractWithPOI(playerID, poiID string, it model.InteractionType) (model.InteractResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.InteractResponse{}, err
	}
	poi, _, _, err := w.poiLocked(playerID, poiID)
	if err != nil {
		return model.InteractResponse{}, err
	}
	if it == "" {
		it = model.InteractionNeutral
	}
	resp := model.InteractResponse{Success: true}
	for _, d := range poi.Dialogues {
		if d.InteractionType == it {
			dl := d
			resp.Dialogue = &dl
			break
		}
	}
	if resp.Dialogue == nil {
		return model.InteractResponse{Success: false, Message: poi.Name + " has nothing to say."}, nil
	}
	if eff, ok := interactionEffects[it]; ok {
		resp.ResourceEffect = &eff
		w.applyLocked(p, eff.Delta())
	}
	return resp, nil
}

func (w *World) CompletePOI(playerID, poiID string) (model.PlayerCampaignProgress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	poi, ch, pr, err := w.poiLocked(playerID, poiID)
	if err != nil {
		return model.PlayerCampaignProgress{}, err
	}
	if !slices.Contains(pr.CompletedPOIIDs, poi.ID) {
		pr.CompletedPOIIDs = append(pr.CompletedPOIIDs, poi.ID)
		pr.LastUpdated = w.now()
		done := *poi
		done.IsCompleted = true
		w.events.SendToPlayer(playerID, model.EventCampaignPOIUpdated, model.CampaignPOIUpdatedPayload{POI: done})
		w.choiceProgressLocked(playerID, ch, pr)
	}
	return *pr, nil
}

func (w *World) CompleteMissionOperation(playerID, operationID string) (model.PlayerCampaignProgress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pr := w.activeProgressLocked(playerID)
	if pr == nil {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: no choice selected", ErrConflict)
	}
	ch, _, ok := w.choiceLocked(pr.CurrentChoiceID)
	if !ok {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: choice %s", ErrNotFound, pr.CurrentChoiceID)
	}
	i := slices.IndexFunc(ch.Operations, func(o model.MissionOperation) bool { return o.ID == operationID })
	if i < 0 {
		return model.PlayerCampaignProgress{}, fmt.Errorf("%w: operation %s", ErrNotFound, operationID)
	}
	w.completeOperationLocked(playerID, ch, pr, ch.Operations[i])
	return *pr, nil
}

func (w *World) completeOperationLocked(playerID string, ch *model.MissionChoice, pr *model.PlayerCampaignProgress, op model.MissionOperation) {
	if slices.Contains(pr.CompletedOperationIDs, op.ID) {
		return
	}
	pr.CompletedOperationIDs = append(pr.CompletedOperationIDs, op.ID)
	pr.LastUpdated = w.now()
	op.IsCompleted = true
	w.events.SendToPlayer(playerID, model.EventCampaignOperationUpdated, model.CampaignOperationUpdatedPayload{Operation: op})
	w.choiceProgressLocked(playerID, ch, pr)
}

func choiceDone(ch *model.MissionChoice, pr *model.PlayerCampaignProgress) bool {
	for _, poi := range ch.POIs {
		if !slices.Contains(pr.CompletedPOIIDs, poi.ID) {
			return false
		}
	}
	for _, op := range ch.Operations {
		if !slices.Contains(pr.CompletedOperationIDs, op.ID) {
			return false
		}
	}
	return true
}

// choiceProgressLocked pushes the choice state after one of its objectives
// changed.
func (w *World) choiceProgressLocked(playerID string, ch *model.MissionChoice, pr *model.PlayerCampaignProgress) {
	w.events.SendToPlayer(playerID, model.EventCampaignChoiceUpdated, model.CampaignChoiceUpdatedPayload{
		MissionID:          ch.MissionID,
		Choice:             decorateChoice(*ch, pr),
		ConditionCompleted: choiceDone(ch, pr),
	})
}

// CompleteChoice finishes the current mission through the chosen branch
// and advances to the next mission.
func (w *World) CompleteChoice(playerID, missionID, choiceID string) (model.ChoiceCompleteResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.player(playerID)
	if err != nil {
		return model.ChoiceCompleteResponse{}, err
	}
	m, campaignID, ok := w.missionLocked(missionID)
	if !ok {
		return model.ChoiceCompleteResponse{}, fmt.Errorf("%w: mission %s", ErrNotFound, missionID)
	}
	pr := w.progressLocked(playerID, campaignID)
	if pr == nil || pr.CurrentMissionID != m.ID || pr.CurrentChoiceID != choiceID {
		return model.ChoiceCompleteResponse{}, fmt.Errorf("%w: choice %s is not active", ErrConflict, choiceID)
	}
	ch, _, ok := w.choiceLocked(choiceID)
	if !ok {
		return model.ChoiceCompleteResponse{}, fmt.Errorf("%w: choice %s", ErrNotFound, choiceID)
	}
	if !choiceDone(ch, pr) {
		return model.ChoiceCompleteResponse{}, fmt.Errorf("%w: objectives are not complete", ErrConflict)
	}

	rewards := model.ResourceEffect{Money: m.MoneyReward, Respect: m.RespectReward, Influence: m.InfluenceReward}
	w.applyLocked(p, rewards.Delta())
	pr.CompletedChoiceIDs = append(pr.CompletedChoiceIDs, choiceID)
	pr.CompletedMissionIDs = append(pr.CompletedMissionIDs, m.ID)
	pr.CurrentMissionID = ch.NextMissionID
	pr.CurrentChoiceID = ""
	pr.LastUpdated = w.now()
	if next, _, ok := w.missionLocked(ch.NextMissionID); ok {
		pr.CurrentChapterID = next.ChapterID
	}
	w.notifyLocked(playerID, model.NotificationSystem, fmt.Sprintf("Mission complete: %s.", m.Title))
	cp := *pr
	return model.ChoiceCompleteResponse{Progress: &cp, NextMissionID: ch.NextMissionID, Rewards: &rewards}, nil
}

// TrackAction records a gameplay action against the active choice.
func (w *World) TrackAction(playerID string, action model.TrackedAction) (model.TrackActionResponse, error) {
	if action.ActionType == "" {
		return model.TrackActionResponse{}, fmt.Errorf("%w: actionType is required", ErrInvalidInput)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.player(playerID); err != nil {
		return model.TrackActionResponse{}, err
	}
	return w.trackLocked(playerID, action.ActionType), nil
}

// trackLocked completes every open mission operation of the active choice
// whose type matches actionType.
func (w *World) trackLocked(playerID, actionType string) model.TrackActionResponse {
	var resp model.TrackActionResponse
	pr := w.activeProgressLocked(playerID)
	if pr == nil {
		return resp
	}
	ch, _, ok := w.choiceLocked(pr.CurrentChoiceID)
	if !ok {
		return resp
	}
	for _, op := range ch.Operations {
		if op.OperationType != actionType || slices.Contains(pr.CompletedOperationIDs, op.ID) {
			continue
		}
		w.completeOperationLocked(playerID, ch, pr, op)
		resp.ConditionsCompleted = append(resp.ConditionsCompleted, op.ID)
	}
	if len(resp.ConditionsCompleted) > 0 {
		w.events.SendToPlayer(playerID, model.EventCampaignActionTracked, model.CampaignActionTrackedPayload{
			CampaignID:         pr.CampaignID,
			MissionID:          pr.CurrentMissionID,
			ActionType:         actionType,
			ConditionCompleted: true,
		})
	}
	return resp
}
