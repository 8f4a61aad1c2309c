package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"challengeboard/internal/models"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Heartbeat interval for version updates (prevents request storm)
	// Frontend only refetches when the version changes, max once per heartbeat
	versionHeartbeatInterval = 2 * time.Second
)

// VersionSource exposes the cache's change counter; both the Redis and the
// in-memory cache implement it.
type VersionSource interface {
	Version(ctx context.Context) (int64, error)
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Board summaries queued for fan-out by the sweep
	boards chan []models.Leaderboard

	// Cache version source for the heartbeat
	versions VersionSource

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Last known version for change detection
	lastVersion int64
}

// VersionUpdate represents the version heartbeat message
type VersionUpdate struct {
	Type    string `json:"type"`
	Version int64  `json:"version"`
}

// BoardUpdate carries one recomputed board's summary page to clients
type BoardUpdate struct {
	Type        string             `json:"type"`
	BoardID     string             `json:"board_id"`
	Timestamp   string             `json:"timestamp"`
	Leaderboard models.Leaderboard `json:"leaderboard"`
}

// NewHub creates a new WebSocket hub
func NewHub(versions VersionSource) *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		boards:      make(chan []models.Leaderboard, 16),
		clients:     make(map[*Client]bool),
		versions:    versions,
		lastVersion: 0,
	}
}

// BroadcastBoards queues recomputed board summaries for fan-out. Non-blocking;
// when the queue is full the update is dropped and clients catch up via the
// version heartbeat.
func (h *Hub) BroadcastBoards(boards []models.Leaderboard) {
	if len(boards) == 0 {
		return
	}
	select {
	case h.boards <- boards:
	default:
		log.Printf("⚠️ Board update queue full, relying on version heartbeat")
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run(ctx context.Context) {
	log.Println("🚀 WebSocket Hub started")

	versionTicker := time.NewTicker(versionHeartbeatInterval)
	defer versionTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("✅ Client connected (Total: %d)", len(h.clients))

			// Send initial version to new client
			h.sendInitialVersion(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("❌ Client disconnected (Total: %d)", len(h.clients))

		case boards := <-h.boards:
			h.broadcastBoards(boards)

		case <-versionTicker.C:
			// Check if version changed and broadcast if necessary
			h.checkAndBroadcastVersion(ctx)

		case <-ctx.Done():
			log.Println("🛑 WebSocket Hub shutting down")
			return
		}
	}
}

// broadcastBoards pushes one BOARD_UPDATE message per recomputed board
func (h *Hub) broadcastBoards(boards []models.Leaderboard) {
	for _, board := range boards {
		update := BoardUpdate{
			Type:        "BOARD_UPDATE",
			BoardID:     board.BoardID,
			Timestamp:   board.Timestamp.Format(time.RFC3339),
			Leaderboard: board,
		}

		message, err := json.Marshal(update)
		if err != nil {
			log.Printf("❌ Failed to marshal board update: %v", err)
			continue
		}

		h.mu.RLock()
		for client := range h.clients {
			select {
			case client.send <- message:
			default:
				// Client's send buffer is full, skip this client
				log.Printf("⚠️ Client send buffer full, skipping")
			}
		}
		h.mu.RUnlock()
	}
}

// checkAndBroadcastVersion checks if the version has changed and broadcasts to all clients
func (h *Hub) checkAndBroadcastVersion(ctx context.Context) {
	currentVersion, err := h.versions.Version(ctx)
	if err != nil {
		log.Printf("❌ Failed to get leaderboard version: %v", err)
		return
	}

	// Only broadcast if version has changed
	if currentVersion != h.lastVersion {
		h.lastVersion = currentVersion

		update := VersionUpdate{
			Type:    "VERSION_UPDATE",
			Version: currentVersion,
		}

		message, err := json.Marshal(update)
		if err != nil {
			log.Printf("❌ Failed to marshal version update: %v", err)
			return
		}

		h.mu.RLock()
		for client := range h.clients {
			select {
			case client.send <- message:
			default:
				log.Printf("⚠️ Client send buffer full, skipping")
			}
		}
		h.mu.RUnlock()
	}
}

// sendInitialVersion sends the current version to a newly connected client
func (h *Hub) sendInitialVersion(client *Client) {
	ctx := context.Background()

	currentVersion, err := h.versions.Version(ctx)
	if err != nil {
		log.Printf("❌ Failed to get initial version: %v", err)
		return
	}

	// Update lastVersion if this is the first client
	if h.lastVersion == 0 {
		h.lastVersion = currentVersion
	}

	update := VersionUpdate{
		Type:    "VERSION_UPDATE",
		Version: currentVersion,
	}

	message, err := json.Marshal(update)
	if err != nil {
		log.Printf("❌ Failed to marshal initial version: %v", err)
		return
	}

	// Check if client is still registered before sending
	h.mu.RLock()
	_, exists := h.clients[client]
	h.mu.RUnlock()

	if !exists {
		log.Println("⚠️ Client disconnected before initial version could be sent")
		return
	}

	// Send to client with timeout to prevent blocking
	select {
	case client.send <- message:
	case <-time.After(2 * time.Second):
		log.Println("⚠️ Timeout sending initial version - client may be slow")
	}
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Don't set read deadline or limits for browser WebSocket clients
	// Browser WebSockets handle ping/pong automatically at the protocol level
	// and don't expose pong handling to JavaScript

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			// Client disconnected or error occurred
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket unexpected close: %v", err)
			}
			break
		}
		// We don't expect messages from clients, but if we receive any, just ignore them
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	// Don't use ping ticker for browser clients
	// Browser WebSockets handle keepalive at the protocol level
	defer func() {
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		}
	}
}

// ServeWS handles WebSocket requests from clients
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start write pump in goroutine
	go client.writePump()

	// Run read pump in current goroutine (blocks until disconnect)
	client.readPump()
}
