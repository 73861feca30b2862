package ws

import (
	"sync"

	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/infra/metrics"
)

var _ adapter.Pusher = (*Hub)(nil)

// Event is the wire shape of a live-update push.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub owns the registry of open live-update channels: user id -> set of
// clients, one per active session. Registration and removal are explicit;
// there is no ambient global state.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *zerolog.Logger
}

func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.LiveChannels.Inc()
	h.log.Debug().Str("user_id", c.userID).Msg("live channel registered")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
			metrics.LiveChannels.Dec()
			h.log.Debug().Str("user_id", c.userID).Msg("live channel unregistered")
		}
	}
	h.mu.Unlock()
}

// Push delivers the event to every open channel of one user, at most once
// per channel. A client that cannot keep up is dropped; it reconciles from
// the persisted notification list after reconnecting.
func (h *Hub) Push(userID, event string, payload interface{}) {
	h.mu.RLock()
	var stale []*Client
	for c := range h.clients[userID] {
		select {
		case c.send <- Event{Event: event, Payload: payload}:
			metrics.LivePushTotal.WithLabelValues("delivered").Inc()
		default:
			metrics.LivePushTotal.WithLabelValues("dropped").Inc()
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregister(c)
	}
}

// OpenChannels reports how many channels one user currently holds.
func (h *Hub) OpenChannels(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
