package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"transitfare/internal/domain"
)

type Client struct {
	ID   string
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, bufferSize),
	}
}

// Enqueue queues msg without blocking. It reports false when the buffer is
// full or the client has been closed.
func (c *Client) Enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub fans catalog notifications out to connected rider clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger.With("component", "hub"),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client. Register and Unregister never block after Run returns.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.ID, "total", total)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.fanout(msg)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		client.close()
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type CatalogMessage struct {
	Type    string         `json:"type"`
	Payload CatalogPayload `json:"payload"`
}

type CatalogPayload struct {
	Version   string    `json:"version"`
	Routes    int       `json:"routes"`
	Transfers int       `json:"transfers"`
	LoadedAt  time.Time `json:"loadedAt"`
}

func NewCatalogMessage(c *domain.Catalog) CatalogMessage {
	return CatalogMessage{
		Type: "catalog",
		Payload: CatalogPayload{
			Version:   c.Version,
			Routes:    len(c.Routes),
			Transfers: len(c.Transfers),
			LoadedAt:  c.LoadedAt,
		},
	}
}

// BroadcastCatalog tells every client that a new catalog version is live.
// Its signature matches the catalog update hook.
func (h *Hub) BroadcastCatalog(_ context.Context, c *domain.Catalog) {
	data, err := json.Marshal(NewCatalogMessage(c))
	if err != nil {
		h.logger.Error("failed to encode catalog message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping catalog message", "version", c.Version)
	}
}

func (h *Hub) fanout(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.Enqueue(msg) {
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	client.close()
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]struct{})

	// registrations queued behind the shutdown
	for {
		select {
		case client := <-h.register:
			client.close()
		default:
			return
		}
	}
}
