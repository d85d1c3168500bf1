package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/pkg/notify"
)

// Message is a frame pushed to connected clients
type Message struct {
	// Type is "notification.<event kind>", e.g. "notification.added"
	Type string `json:"type"`

	Notification *notify.Notification `json:"notification,omitempty"`

	// UnreadCount is the recipient's unread total after the event
	UnreadCount int `json:"unreadCount"`

	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	event notify.Event
}

// Hub maintains the set of active clients and pushes notification events
// to the clients allowed to see them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	events     chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	store  *notify.Store
	logger zerolog.Logger
}

// NewHub creates a new Hub fed by store
func NewHub(store *notify.Store, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		events:     make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		store:      store,
		logger:     logger,
	}
}

// Run subscribes to the store and serves registrations and events until
// ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	unsubscribe := h.store.Subscribe(h.enqueue)
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.events:
			h.deliver(d.event)
		}
	}
}

// enqueue is the store listener. It must not block the mutating goroutine.
func (h *Hub) enqueue(ev notify.Event) {
	select {
	case h.events <- delivery{event: ev}:
	default:
		h.logger.Warn().Str("kind", string(ev.Kind)).Msg("Hub event queue full, dropping event")
	}
}

// add hands a client to the running hub. It reports false once the hub
// has stopped.
func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("role", client.role).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) deliver(ev notify.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, set := range h.clients {
		for client := range set {
			if !wants(client.audience(), ev) {
				continue
			}
			msg := Message{
				Type:         "notification." + string(ev.Kind),
				Notification: ev.Notification,
				UnreadCount:  h.store.UnreadCount(client.audience()),
				Timestamp:    time.Now(),
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to marshal hub message")
				return
			}
			select {
			case client.send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}

	for _, client := range slow {
		h.logger.Warn().Int64("userID", client.userID).Msg("Dropping slow client")
		h.removeLocked(client)
	}
}

func wants(a notify.Audience, ev notify.Event) bool {
	if ev.Audience != notify.Everyone && ev.Audience != a {
		return false
	}
	if ev.Notification != nil {
		return ev.Notification.VisibleTo(a)
	}
	return true
}

// ClientCount returns the number of connections held for a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
