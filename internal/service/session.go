package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// TokenKey is the persisted-state key holding the bearer token.
const TokenKey = "auth_token"

var ErrNoSession = errors.New("no active session")

// TokenStore persists small string values by key.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session owns the persisted token. It is the token source for the API
// client and the stream client.
type Session struct {
	store TokenStore
	log   zerolog.Logger

	mu       sync.Mutex
	onLogout []func(reason error)
}

func NewSession(store TokenStore, log zerolog.Logger) *Session {
	return &Session{store: store, log: log}
}

func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Get(ctx, TokenKey)
}

func (s *Session) Save(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// OnLogout registers fn to run whenever the session ends.
func (s *Session) OnLogout(fn func(reason error)) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// Logout deletes the token and notifies listeners with reason (nil for a
// voluntary logout).
func (s *Session) Logout(ctx context.Context, reason error) error {
	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	s.mu.Lock()
	listeners := append([]func(error){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(reason)
	}
	return nil
}

// HandleUnauthorized forces a logout after the server rejected the token.
func (s *Session) HandleUnauthorized(err error) {
	s.log.Warn().Err(err).Msg("server rejected token, logging out")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if lerr := s.Logout(ctx, err); lerr != nil {
		s.log.Error().Err(lerr).Msg("forced logout failed")
	}
}

type Claims struct {
	PlayerID  string
	Name      string
	ExpiresAt time.Time
}

func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Claims decodes the stored token without verifying its signature. The
// server remains the authority; this only reads subject and expiry.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	raw, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoSession
	}
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("decode token: unexpected claims type")
	}
	out := &Claims{}
	out.PlayerID, _ = mc["sub"].(string)
	out.Name, _ = mc["name"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
