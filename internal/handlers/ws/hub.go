package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ErrOffline is returned when the target user has no live connection.
// Callers fall back to the persistent notification inbox.
var ErrOffline = errors.New("user not connected")

// ClientConnection wraps a WebSocket connection with metadata
type ClientConnection struct {
	Conn       *websocket.Conn
	UserID     uint
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMux sync.Mutex
}

// Hub manages all active WebSocket connections
type Hub struct {
	clients      map[uint]*ClientConnection
	clientsMux   sync.RWMutex
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	hub := &Hub{
		clients:      make(map[uint]*ClientConnection),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Register adds a client connection with health monitoring
func (h *Hub) Register(userID uint, conn *websocket.Conn) {
	clientConn := &ClientConnection{
		Conn:       conn,
		UserID:     userID,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.clientsMux.Lock()
		if client, exists := h.clients[userID]; exists {
			client.LastPong = time.Now()
		}
		h.clientsMux.Unlock()
		return nil
	})

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	h.clients[userID] = clientConn
	h.clientsMux.Unlock()

	go h.pingRoutine(clientConn)

	log.Printf("User %d connected to hub (total: %d)", userID, h.Count())
}

// Unregister removes a client connection
func (h *Hub) Unregister(userID uint) {
	h.clientsMux.Lock()
	if client, exists := h.clients[userID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
	}
	delete(h.clients, userID)
	count := len(h.clients)
	h.clientsMux.Unlock()
	log.Printf("User %d disconnected from hub (total: %d)", userID, count)
}

// IsOnline checks if a user is connected
func (h *Hub) IsOnline(userID uint) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// SendToUser delivers a JSON frame to a user's live connection.
func (h *Hub) SendToUser(userID uint, data interface{}) error {
	h.clientsMux.RLock()
	clientConn, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return ErrOffline
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling data for user %d: %v", userID, err)
		return err
	}

	clientConn.writeMux.Lock()
	err = clientConn.Conn.WriteMessage(websocket.TextMessage, jsonData)
	clientConn.writeMux.Unlock()
	if err != nil {
		log.Printf("Error sending message to user %d: %v", userID, err)
		// Connection may be dead; drop it so the health checker doesn't
		// have to wait for the pong timeout.
		h.Unregister(userID)
		return err
	}

	return nil
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			h.clientsMux.RLock()
			_, exists := h.clients[client.UserID]
			h.clientsMux.RUnlock()

			if !exists {
				return
			}

			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				h.Unregister(client.UserID)
				return
			}
		}
	}
}

// connectionHealthChecker monitors connection health and removes dead connections
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.clientsMux.RLock()
		deadConnections := make([]uint, 0)
		now := time.Now()

		for userID, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				deadConnections = append(deadConnections, userID)
			}
		}
		h.clientsMux.RUnlock()

		for _, userID := range deadConnections {
			log.Printf("Removing dead connection for user %d (no pong received)", userID)
			h.Unregister(userID)
		}
	}
}
