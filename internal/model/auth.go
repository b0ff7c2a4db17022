package model

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string         `json:"token"`
	Player *PlayerProfile `json:"player"`
}

type ValidateResponse struct {
	Valid    bool   `json:"valid"`
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name,omitempty"`
}
