package service

import (
	"context"
	"net/url"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type CampaignService struct {
	api *api.Client
}

func NewCampaignService(c *api.Client) *CampaignService {
	return &CampaignService{api: c}
}

func (s *CampaignService) GetCampaigns(ctx context.Context) (*api.Result[[]model.Campaign], error) {
	return api.Get[[]model.Campaign](ctx, s.api, "/campaigns", nil)
}

func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*api.Result[model.Campaign], error) {
	return api.Get[model.Campaign](ctx, s.api, "/campaigns/"+url.PathEscape(id), nil)
}

func (s *CampaignService) GetProgress(ctx context.Context, campaignID string) (*api.Result[model.ProgressResponse], error) {
	return api.Get[model.ProgressResponse](ctx, s.api, "/campaigns/"+url.PathEscape(campaignID)+"/progress", nil)
}

func (s *CampaignService) Start(ctx context.Context, campaignID string) (*api.Result[model.PlayerCampaignProgress], error) {
	return api.Post[model.PlayerCampaignProgress](ctx, s.api, "/campaigns/"+url.PathEscape(campaignID)+"/start", nil)
}

func (s *CampaignService) GetMission(ctx context.Context, missionID string) (*api.Result[model.Mission], error) {
	return api.Get[model.Mission](ctx, s.api, "/campaigns/missions/"+url.PathEscape(missionID), nil)
}

func choicePath(missionID, choiceID, verb string) string {
	return "/campaigns/missions/" + url.PathEscape(missionID) + "/choices/" + url.PathEscape(choiceID) + "/" + verb
}

func (s *CampaignService) SelectChoice(ctx context.Context, missionID, choiceID string) (*api.Result[model.PlayerCampaignProgress], error) {
	return api.Post[model.PlayerCampaignProgress](ctx, s.api, choicePath(missionID, choiceID, "select"), nil)
}

func (s *CampaignService) CompleteChoice(ctx context.Context, missionID, choiceID string) (*api.Result[model.ChoiceCompleteResponse], error) {
	return api.Post[model.ChoiceCompleteResponse](ctx, s.api, choicePath(missionID, choiceID, "complete"), nil)
}

func (s *CampaignService) GetChoicePOIs(ctx context.Context, choiceID string) (*api.Result[[]model.CampaignPOI], error) {
	return api.Get[[]model.CampaignPOI](ctx, s.api, "/campaigns/choices/"+url.PathEscape(choiceID)+"/pois", nil)
}

func (s *CampaignService) GetChoiceOperations(ctx context.Context, choiceID string) (*api.Result[[]model.MissionOperation], error) {
	return api.Get[[]model.MissionOperation](ctx, s.api, "/campaigns/choices/"+url.PathEscape(choiceID)+"/operations", nil)
}

func (s *CampaignService) InteractWithPOI(ctx context.Context, poiID string, it model.InteractionType) (*api.Result[model.InteractResponse], error) {
	return api.Post[model.InteractResponse](ctx, s.api, "/campaigns/pois/"+url.PathEscape(poiID)+"/interact", model.InteractRequest{InteractionType: it})
}

func (s *CampaignService) CompletePOI(ctx context.Context, poiID string) (*api.Result[model.PlayerCampaignProgress], error) {
	return api.Post[model.PlayerCampaignProgress](ctx, s.api, "/campaigns/pois/"+url.PathEscape(poiID)+"/complete", nil)
}

func (s *CampaignService) CompleteOperation(ctx context.Context, operationID, attemptID string) (*api.Result[model.PlayerCampaignProgress], error) {
	return api.Post[model.PlayerCampaignProgress](ctx, s.api, "/campaigns/operations/"+url.PathEscape(operationID)+"/complete", model.CompleteOperationRequest{AttemptID: attemptID})
}

func (s *CampaignService) TrackAction(ctx context.Context, action model.TrackedAction) (*api.Result[model.TrackActionResponse], error) {
	return api.Post[model.TrackActionResponse](ctx, s.api, "/campaigns/actions/track", action)
}
