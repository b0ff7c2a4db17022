package service

import (
	"context"
	"net/url"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

type OperationsService struct {
	api *api.Client
}

func NewOperationsService(c *api.Client) *OperationsService {
	return &OperationsService{api: c}
}

func (s *OperationsService) GetAvailable(ctx context.Context) (*api.Result[[]model.Operation], error) {
	return api.Get[[]model.Operation](ctx, s.api, "/operations", nil)
}

func (s *OperationsService) GetCurrent(ctx context.Context) (*api.Result[[]model.OperationAttempt], error) {
	return api.Get[[]model.OperationAttempt](ctx, s.api, "/operations/current", nil)
}

func (s *OperationsService) GetCompleted(ctx context.Context) (*api.Result[[]model.OperationAttempt], error) {
	return api.Get[[]model.OperationAttempt](ctx, s.api, "/operations/completed", nil)
}

func (s *OperationsService) GetRefreshInfo(ctx context.Context) (*api.Result[model.OperationsRefreshInfo], error) {
	return api.Get[model.OperationsRefreshInfo](ctx, s.api, "/operations/refresh-info", nil)
}

func (s *OperationsService) Start(ctx context.Context, operationID string, res model.OperationResources) (*api.Result[model.OperationAttempt], error) {
	return api.Post[model.OperationAttempt](ctx, s.api, "/operations/"+url.PathEscape(operationID)+"/start", model.StartOperationRequest{Resources: res})
}

func (s *OperationsService) Cancel(ctx context.Context, attemptID string) (*api.Result[model.OperationAttempt], error) {
	return api.Post[model.OperationAttempt](ctx, s.api, "/operations/"+url.PathEscape(attemptID)+"/cancel", nil)
}

func (s *OperationsService) Collect(ctx context.Context, attemptID string) (*api.Result[model.OperationResult], error) {
	return api.Post[model.OperationResult](ctx, s.api, "/operations/"+url.PathEscape(attemptID)+"/collect", nil)
}
