package model

import "encoding/json"

const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
	CodeRateLimited  = "rate_limited"
	CodeUnavailable  = "unavailable"
)

// Envelope is the wrapper every API response uses. Data holds the bare
// payload; there is no nested result object.
type Envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	Error       *ErrorInfo      `json:"error,omitempty"`
	GameMessage *GameMessage    `json:"gameMessage,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Failure builds an unsuccessful envelope.
func Failure(code, message string) Envelope {
	return Envelope{Error: &ErrorInfo{Code: code, Message: message}}
}

type GameMessageType string

const (
	GameMessageSuccess GameMessageType = "success"
	GameMessageFailure GameMessageType = "failure"
	GameMessageInfo    GameMessageType = "info"
	GameMessageWarning GameMessageType = "warning"
)

type GameMessage struct {
	Type    GameMessageType `json:"type"`
	Message string          `json:"message"`
}
