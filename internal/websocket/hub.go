package websocket

import (
	"context"
	"sync"

	"github.com/isdelr/machine-monitor-be/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// done is closed when the current run of Serve returns; each run gets a new one.
	mu   sync.Mutex
	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Serve runs the hub's message loop until ctx is cancelled. On exit every
// client is told the server is going away and its send channel is closed so
// its write pump terminates. Serve may be called again after it returns.
func (h *Hub) Serve(ctx context.Context) error {
	h.start()
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case client := <-h.register:
			h.clients[client] = true
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			log.Info().Int("total_clients", len(h.clients)).Int64("user_id", client.UserID).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					log.Warn().Int64("user_id", client.UserID).Msg("Dropping slow websocket client")
					h.drop(client)
				}
			}
		}
	}
}

// String names the hub for the supervisor.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Register adds a client. It returns false if the hub is not running.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped():
		return false
	}
}

// Unregister removes a client. It is a no-op while the hub is not running.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped():
	}
}

// Publish sends message to every connected client. It returns false if the hub is not running.
func (h *Hub) Publish(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-h.stopped():
		return false
	}
}

// start opens a new run, replacing the done channel of a previous one.
func (h *Hub) start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		h.done = make(chan struct{})
	default:
	}
}

// stop disconnects every client and closes the run's done channel. It also
// runs when the loop panics, so a supervised restart starts from a clean hub.
func (h *Hub) stop() {
	shutdown := NewErrorMessage("server shutting down")
	for client := range h.clients {
		select {
		case client.Send <- shutdown:
		default:
		}
		h.drop(client)
	}

	h.mu.Lock()
	close(h.done)
	h.mu.Unlock()
}

func (h *Hub) stopped() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}
