package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub topics published outside the event handlers.
const (
	TopicGaveUp         = "realtime.gave_up"
	TopicConnected      = "realtime.connected"
	TopicSessionExpired = "session.expired"
)

// Update is published after a push event has been applied to the caches.
type Update struct {
	Topic   string
	Event   string
	Payload json.RawMessage
}

type Subscriber struct {
	Name string
	send chan Update
}

// C delivers updates until the subscriber is dropped or the hub stops.
func (s *Subscriber) C() <-chan Update { return s.send }

// Hub fans updates out to local subscribers. A subscriber whose buffer is
// full is dropped so publishing never blocks the stream.
type Hub struct {
	subs       map[*Subscriber]bool
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan Update
	mu         sync.RWMutex
	done       chan struct{}
	once       sync.Once
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs:       make(map[*Subscriber]bool),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan Update, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.subs[s] = true
			n := len(h.subs)
			h.mu.Unlock()
			h.log.Debug().Str("subscriber", s.Name).Int("total", n).Msg("hub subscribe")

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.send)
			}
			h.mu.Unlock()

		case u := <-h.broadcast:
			h.mu.Lock()
			for s := range h.subs {
				select {
				case s.send <- u:
				default:
					h.log.Warn().Str("subscriber", s.Name).Msg("slow subscriber dropped")
					close(s.send)
					delete(h.subs, s)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for s := range h.subs {
				close(s.send)
				delete(h.subs, s)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Shutdown() {
	h.once.Do(func() { close(h.done) })
}

// Subscribe registers a subscriber with the given buffer size. It returns
// nil after Shutdown.
func (h *Hub) Subscribe(name string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	s := &Subscriber{Name: name, send: make(chan Update, buffer)}
	select {
	case h.register <- s:
		return s
	case <-h.done:
		return nil
	}
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish queues u for delivery. It drops u when the queue is full.
func (h *Hub) Publish(u Update) {
	select {
	case h.broadcast <- u:
	default:
		h.log.Warn().Str("topic", u.Topic).Msg("hub queue full, update dropped")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
