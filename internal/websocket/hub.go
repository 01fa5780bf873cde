package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/homestead/internal/invitation"
)

// Message is the JSON frame pushed to a connected person when one of their
// invitations changes.
type Message struct {
	Type         string    `json:"type"`
	HouseholdID  int64     `json:"household_id"`
	FromPersonID int64     `json:"from_person_id"`
	ToPersonID   int64     `json:"to_person_id"`
	ActorID      int64     `json:"actor_id"`
	At           time.Time `json:"at"`
}

// NewMessage converts an invitation event into its wire form.
func NewMessage(ev invitation.Event) Message {
	return Message{
		Type:         "invitation_" + string(ev.Type),
		HouseholdID:  ev.HouseholdID,
		FromPersonID: ev.FromPersonID,
		ToPersonID:   ev.ToPersonID,
		ActorID:      ev.ActorID,
		At:           ev.At,
	}
}

// Hub tracks the open connections of each person and routes invitation
// events to the sender and recipient.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

var _ invitation.Notifier = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.personID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.personID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.personID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.personID)
	}
}

// Notify delivers ev to every connection of its sender and recipient.
func (h *Hub) Notify(ctx context.Context, ev invitation.Event) {
	data, err := json.Marshal(NewMessage(ev))
	if err != nil {
		h.logger.ErrorContext(ctx, "marshal invitation event", "error", err)
		return
	}

	h.SendTo(data, ev.FromPersonID, ev.ToPersonID)
}

// SendTo queues data for the listed people, once per connection.
func (h *Hub) SendTo(data []byte, personIDs ...int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[int64]bool, len(personIDs))
	for _, id := range personIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		for c := range h.clients[id] {
			select {
			case c.send <- data:
			default:
				h.logger.Warn("dropping message for slow client", "person_id", id)
			}
		}
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
