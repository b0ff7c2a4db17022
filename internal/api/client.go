package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const DefaultTimeout = 10 * time.Second

// TokenSource yields the bearer token for outbound requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	log            zerolog.Logger
	onUnauthorized func(err error)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUnauthorized installs the hook run after any 401 response.
func WithUnauthorized(fn func(err error)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetUnauthorizedHook replaces the 401 hook after construction.
func (c *Client) SetUnauthorizedHook(fn func(err error)) { c.onUnauthorized = fn }

// Result is a successfully unwrapped envelope.
type Result[T any] struct {
	Data        T
	GameMessage *model.GameMessage
}

// Message returns the game message text, or "" when the server sent none.
func (r *Result[T]) Message() string {
	if r == nil || r.GameMessage == nil {
		return ""
	}
	return r.GameMessage.Message
}

func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (*Result[T], error) {
	return Do[T](ctx, c, http.MethodGet, path, query, nil)
}

func Post[T any](ctx context.Context, c *Client, path string, body any) (*Result[T], error) {
	return Do[T](ctx, c, http.MethodPost, path, nil, body)
}

func Put[T any](ctx context.Context, c *Client, path string, body any) (*Result[T], error) {
	return Do[T](ctx, c, http.MethodPut, path, nil, body)
}

// Do issues the request and unwraps the envelope into T.
func Do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*Result[T], error) {
	env, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	res := &Result[T]{GameMessage: env.GameMessage}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &res.Data); err != nil {
			return nil, fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*model.Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: read token: %w", method, path, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	var env model.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := newError(resp.StatusCode, &env, raw)
		if c.onUnauthorized != nil {
			c.onUnauthorized(apiErr)
		}
		return nil, apiErr
	}
	if resp.StatusCode >= 400 || decodeErr != nil || !env.Success {
		if decodeErr != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("%s %s: decode envelope: %w", method, path, decodeErr)
		}
		return nil, newError(resp.StatusCode, &env, raw)
	}
	return &env, nil
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error is a failure reported by the server, either as a non-2xx status or
// as success=false inside the envelope.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Code == model.CodeUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == model.CodeNotFound
	}
	return false
}

func newError(status int, env *model.Envelope, raw []byte) *Error {
	e := &Error{Status: status}
	if env != nil && env.Error != nil {
		e.Code = env.Error.Code
		e.Message = env.Error.Message
	}
	if e.Message == "" {
		// Some middleware answers with a bare {"error": "..."} body.
		if msg := gjson.GetBytes(raw, "error"); msg.Type == gjson.String {
			e.Message = msg.String()
		} else if msg := gjson.GetBytes(raw, "message"); msg.Exists() {
			e.Message = msg.String()
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = "request failed"
	}
	return e
}

// Message extracts the most readable text from err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
