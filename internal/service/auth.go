package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/model"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrEmptyToken         = errors.New("server returned an empty token")
)

type AuthService struct {
	api     *api.Client
	session *Session
}

func NewAuthService(c *api.Client, session *Session) *AuthService {
	return &AuthService{api: c, session: session}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	res, err := api.Post[model.AuthResponse](ctx, s.api, "/auth/login", model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.persist(ctx, &res.Data); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	res, err := api.Post[model.AuthResponse](ctx, s.api, "/auth/register", req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.persist(ctx, &res.Data); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (s *AuthService) Validate(ctx context.Context) (*model.ValidateResponse, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, ErrNoSession
	}
	res, err := api.Get[model.ValidateResponse](ctx, s.api, "/auth/validate", nil)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &res.Data, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx, nil)
}

func (s *AuthService) persist(ctx context.Context, resp *model.AuthResponse) error {
	if resp.Token == "" {
		return ErrEmptyToken
	}
	return s.session.Save(ctx, resp.Token)
}
