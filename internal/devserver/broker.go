package devserver

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Frame renders one server-sent event.
func Frame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, payload), nil
}

// Subscriber is one open event stream.
type Subscriber struct {
	ID       string
	PlayerID string
	Send     chan []byte
}

type delivery struct {
	playerID string // empty for everyone
	frame    []byte
}

// Broker fans events out to the open streams of each player.
type Broker struct {
	clients    map[string]map[*Subscriber]struct{}
	register   chan *Subscriber
	unregister chan *Subscriber
	outbound   chan delivery
	mu         sync.RWMutex
	done       chan struct{}
	once       sync.Once
	log        zerolog.Logger
}

func NewBroker(log zerolog.Logger) *Broker {
	return &Broker{
		clients:    map[string]map[*Subscriber]struct{}{},
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		outbound:   make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (b *Broker) Run() {
	for {
		select {
		case s := <-b.register:
			b.mu.Lock()
			if b.clients[s.PlayerID] == nil {
				b.clients[s.PlayerID] = map[*Subscriber]struct{}{}
			}
			b.clients[s.PlayerID][s] = struct{}{}
			b.mu.Unlock()
			b.log.Info().Str("player", s.PlayerID).Str("client", s.ID).Int("online", b.Count()).Msg("stream opened")

		case s := <-b.unregister:
			b.remove(s)
			b.log.Info().Str("player", s.PlayerID).Str("client", s.ID).Int("online", b.Count()).Msg("stream closed")

		case d := <-b.outbound:
			b.mu.RLock()
			var slow []*Subscriber
			for playerID, subs := range b.clients {
				if d.playerID != "" && playerID != d.playerID {
					continue
				}
				for s := range subs {
					select {
					case s.Send <- d.frame:
					default:
						slow = append(slow, s)
					}
				}
			}
			b.mu.RUnlock()
			for _, s := range slow {
				b.log.Warn().Str("player", s.PlayerID).Str("client", s.ID).Msg("dropping slow stream")
				b.remove(s)
			}

		case <-b.done:
			b.mu.Lock()
			for _, subs := range b.clients {
				for s := range subs {
					close(s.Send)
				}
			}
			b.clients = map[string]map[*Subscriber]struct{}{}
			b.mu.Unlock()
			return
		}
	}
}

func (b *Broker) remove(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.clients[s.PlayerID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.Send)
	if len(subs) == 0 {
		delete(b.clients, s.PlayerID)
	}
}

func (b *Broker) Shutdown() {
	b.once.Do(func() { close(b.done) })
}

// Subscribe opens a stream for the player. It returns nil after Shutdown.
func (b *Broker) Subscribe(playerID string) *Subscriber {
	s := &Subscriber{ID: uuid.NewString(), PlayerID: playerID, Send: make(chan []byte, 64)}
	select {
	case b.register <- s:
		return s
	case <-b.done:
		return nil
	}
}

func (b *Broker) Unsubscribe(s *Subscriber) {
	select {
	case b.unregister <- s:
	case <-b.done:
	}
}

func (b *Broker) SendToPlayer(playerID, event string, data any) {
	b.send(playerID, event, data)
}

func (b *Broker) SendToAll(event string, data any) {
	b.send("", event, data)
}

// send never blocks; events are dropped when the queue is full.
func (b *Broker) send(playerID, event string, data any) {
	frame, err := Frame(event, data)
	if err != nil {
		b.log.Error().Err(err).Msg("encode event")
		return
	}
	select {
	case b.outbound <- delivery{playerID: playerID, frame: frame}:
	default:
		b.log.Warn().Str("event", event).Msg("event queue full, dropping")
	}
}

// Count is the number of open streams.
func (b *Broker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.clients {
		n += len(subs)
	}
	return n
}
