package devserver

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// HashCost is the bcrypt cost for new accounts.
var HashCost = bcrypt.DefaultCost

const tokenTTL = 24 * time.Hour

type account struct {
	playerID string
	email    string
	hash     []byte
}

// Register creates an account and a fresh player at headquarters.
func (w *World) Register(req model.RegisterRequest) (model.PlayerProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		return model.PlayerProfile{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.PlayerProfile{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(req.Password) < 8 {
		return model.PlayerProfile{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), HashCost)
	if err != nil {
		return model.PlayerProfile{}, fmt.Errorf("hash password: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.accounts[email]; ok {
		return model.PlayerProfile{}, ErrUserExists
	}
	now := w.now()
	p := &model.PlayerProfile{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Title:       titleFor(0),
		Money:       10000,
		Crew:        5,
		MaxCrew:     50,
		Weapons:     2,
		MaxWeapons:  30,
		Vehicles:    1,
		MaxVehicles: 10,
		CreatedAt:   now,
		LastActive:  now,
		Version:     1,
	}
	w.accounts[email] = &account{playerID: p.ID, email: email, hash: hash}
	w.players[p.ID] = p
	w.stats[p.ID] = &model.PlayerStats{DaysActive: 1}
	w.notifyLocked(p.ID, model.NotificationSystem, "Welcome to the family, "+p.Name+".")
	return w.profileLocked(p), nil
}

func (w *World) Login(req model.LoginRequest) (model.PlayerProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	w.mu.Lock()
	acc, ok := w.accounts[email]
	w.mu.Unlock()
	if !ok {
		return model.PlayerProfile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)); err != nil {
		return model.PlayerProfile{}, ErrInvalidCredentials
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.players[acc.playerID]
	p.LastActive = w.now()
	return w.profileLocked(p), nil
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	clock  clock.Clock
	ttl    time.Duration
}

func NewTokens(secret string, clk clock.Clock) *Tokens {
	if clk == nil {
		clk = clock.Real
	}
	return &Tokens{secret: []byte(secret), clock: clk, ttl: tokenTTL}
}

func (t *Tokens) Issue(playerID, name string) (string, error) {
	now := t.clock.Now()
	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the subject and display name of a valid token.
func (t *Tokens) Verify(raw string) (string, string, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now))
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	playerID, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if playerID == "" {
		return "", "", ErrInvalidToken
	}
	return playerID, name, nil
}
