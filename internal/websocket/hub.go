package websocket

import (
	"encoding/json"
	"log/slog"

	"spaceship-manager/internal/event"
)

// Hub relays change events from the bus to connected websocket observers.
// Observers are read-only consumers; a slow one is disconnected rather than
// allowed to back up the broadcast.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// done is closed when Run exits; attach/detach select against it so no
	// caller blocks on a hub that stopped draining its channels.
	done chan struct{}

	bus event.Bus
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		bus:        bus,
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Run() {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case e, ok := <-events:
			if !ok {
				// Bus closed; drop all observers and stop.
				for client := range h.clients {
					close(client.send)
					delete(h.clients, client)
				}
				close(h.done)
				return
			}

			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
