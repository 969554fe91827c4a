package broadcast

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Publisher is what the service layer sees: fire-and-forget delivery of a
// committed-state event. Implementations must never block the caller or
// surface delivery failures to it.
type Publisher interface {
	Publish(event *Event)
}

// Hub fans committed mutations out to every connected subscriber. All
// bookkeeping happens on the Run goroutine; registration, teardown, and
// publishing communicate with it through channels, so in-flight mutations
// never contend with subscriber churn.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	count      atomic.Int64
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.logger.Info("subscriber connected", "client_id", client.ID, "subscribers", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.count.Store(int64(len(h.clients)))
				h.logger.Info("subscriber disconnected", "client_id", client.ID, "subscribers", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Subscriber can't keep up; drop it rather than
					// stalling delivery to everyone else.
					delete(h.clients, client)
					close(client.send)
					h.logger.Warn("dropping slow subscriber", "client_id", client.ID)
				}
			}
			h.count.Store(int64(len(h.clients)))

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.count.Store(0)
			return
		}
	}
}

// Register adds a subscriber to the fan-out group.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister detaches a subscriber. Safe to call for a client the hub has
// already dropped.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish delivers the event to all current subscribers, best effort and
// at most once each. The mutation that triggered it has already committed,
// so failures here are logged and swallowed.
func (h *Hub) Publish(event *Event) {
	data, err := event.ToJSON()
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, dropping event", "type", event.Type)
	}
}

// SubscriberCount reports the current number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	return int(h.count.Load())
}
