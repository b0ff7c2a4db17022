// Package realtime keeps one server-sent event stream open and applies the
// pushed events to the local caches.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	ErrNoToken   = errors.New("no auth token for event stream")
	ErrBadStatus = errors.New("unexpected event stream status")
)

// TopicEvent is the hub topic of every successfully applied push event.
const TopicEvent = "realtime.event"

// Dialer opens the event stream body.
type Dialer interface {
	Dial(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPDialer dials over plain HTTP. The client must not carry a timeout;
// the stream lives until its context is cancelled.
type HTTPDialer struct {
	Client *http.Client
}

func (d HTTPDialer) Dial(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	c := d.Client
	if c == nil {
		c = &http.Client{}
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dial event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return resp.Body, nil
}

// State is a snapshot of the connection.
type State struct {
	Connected    bool
	Reconnecting bool
	GaveUp       bool
	Attempts     int
	Err          error
	LastEventAt  time.Time
}

type Option func(*Client)

func WithDialer(d Dialer) Option { return func(c *Client) { c.dialer = d } }

func WithClock(clk clock.Clock) Option { return func(c *Client) { c.clock = clk } }

func WithPolicy(p *ReconnectPolicy) Option { return func(c *Client) { c.policy = p } }

func WithHub(h *Hub) Option { return func(c *Client) { c.hub = h } }

func WithLogger(log zerolog.Logger) Option { return func(c *Client) { c.log = log } }

// Client is the connection manager. At most one stream is live; events
// from a superseded stream are ignored.
type Client struct {
	baseURL  string
	tokens   api.TokenSource
	dialer   Dialer
	clock    clock.Clock
	policy   *ReconnectPolicy
	dispatch *Dispatcher
	hub      *Hub
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	pending clock.Timer
	wg      sync.WaitGroup
}

func New(baseURL string, tokens api.TokenSource, d *Dispatcher, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		dialer:   HTTPDialer{},
		clock:    clock.Real,
		dispatch: d,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.policy == nil {
		c.policy = NewReconnectPolicy(DefaultPolicyConfig())
	}
	return c
}

// Connect tears down any live stream or pending reconnect and opens a new
// stream. It returns ErrNoToken without dialing when no token is stored.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.stopPendingLocked()
	c.closeLocked()
	c.ctx = ctx
	c.policy.Reset()
	c.state.Connected = false
	c.state.GaveUp = false
	c.state.Attempts = 0
	gen := c.gen
	c.mu.Unlock()
	return c.connect(gen)
}

// connect dials a new stream unless Connect or Disconnect ran after the
// caller observed gen.
func (c *Client) connect(gen uint64) error {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := c.tokens.Token(ctx)
	if err == nil && token == "" {
		err = ErrNoToken
	}
	if err != nil {
		c.mu.Lock()
		if gen == c.gen {
			c.state.Connected = false
			c.state.Reconnecting = false
			c.state.Err = err
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen = c.gen
	sctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(sctx, gen, c.baseURL+"/sse?token="+url.QueryEscape(token))
	return nil
}

func (c *Client) run(ctx context.Context, gen uint64, u string) {
	defer c.wg.Done()

	body, err := c.dialer.Dial(ctx, u)
	if err != nil {
		c.fail(gen, err)
		return
	}
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()
	defer body.Close()

	c.opened(gen)
	stream := NewStream(body)
	for {
		ev, err := stream.Next()
		if err != nil {
			c.fail(gen, err)
			return
		}
		if !c.seen(gen, ev) {
			return
		}
		if ev.Type == model.EventConnected || ev.Type == model.EventHeartbeat {
			continue
		}
		if c.dispatch.Dispatch(ctx, ev) && c.hub != nil {
			c.hub.Publish(Update{Topic: TopicEvent, Event: ev.Type, Payload: ev.Data})
		}
	}
}

func (c *Client) opened(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.policy.Reset()
	c.state = State{Connected: true, LastEventAt: c.clock.Now()}
	c.mu.Unlock()

	c.log.Info().Msg("event stream open")
	if c.hub != nil {
		c.hub.Publish(Update{Topic: TopicConnected})
	}
}

// seen records liveness for ev and reports whether gen is still current.
func (c *Client) seen(gen uint64, ev model.StreamEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.state.LastEventAt = c.clock.Now()
	switch ev.Type {
	case model.EventHeartbeat:
		c.state.Connected = true
		c.log.Debug().Str("ts", gjson.GetBytes(ev.Data, "timestamp").String()).Msg("heartbeat")
	case model.EventConnected:
		c.state.Connected = true
		c.log.Debug().Str("message", gjson.GetBytes(ev.Data, "message").String()).Msg("stream acknowledged")
	}
	return true
}

// fail records a transport error of stream gen and schedules one
// reconnect unless one is already pending.
func (c *Client) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state.Connected = false
	c.state.Err = err
	if c.pending != nil {
		c.mu.Unlock()
		return
	}

	delay, ok := c.policy.Next()
	c.state.Attempts = c.policy.Attempts()
	if !ok {
		c.state.Reconnecting = false
		c.state.GaveUp = true
		attempts := c.state.Attempts
		c.mu.Unlock()
		c.log.Error().Err(err).Int("attempts", attempts).Msg("event stream gave up")
		if c.hub != nil {
			c.hub.Publish(Update{Topic: TopicGaveUp})
		}
		return
	}
	c.state.Reconnecting = true
	c.pending = c.clock.AfterFunc(delay, func() { c.reconnect(gen) })
	c.mu.Unlock()
	c.log.Warn().Err(err).Dur("retry_in", delay).Msg("event stream lost")
}

// reconnect is the timer body scheduled by fail for stream gen. It does
// nothing once Connect or Disconnect has moved past gen.
func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()
	if err := c.connect(gen); err != nil {
		c.log.Warn().Err(err).Msg("reconnect failed")
	}
}

// Disconnect closes the stream, cancels a pending reconnect and clears the
// state. It does not wait for the stream goroutine; see Wait.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopPendingLocked()
	c.closeLocked()
	c.state = State{}
	c.mu.Unlock()
}

// Wait blocks until every stream goroutine has exited.
func (c *Client) Wait() { c.wg.Wait() }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Client) closeLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
