package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message types exchanged with clients
const (
	MessageTypeNotification = "notification"
	MessageTypeRead         = "read"
	MessageTypeUnreadCount  = "unread_count"
)

// Hub maintains the set of active clients and pushes messages to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	// Outbound messages addressed to one user
	push chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	listenersMu      sync.RWMutex
	messageListeners []chan *Message

	// Closed when Run returns
	done chan struct{}

	logger zerolog.Logger
}

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message: "notification", "read", "unread_count"
	Type string `json:"type"`

	// User the message is addressed to, or the sender for inbound messages
	UserID int64 `json:"userId"`

	// Notification this message refers to
	NotificationID int64 `json:"notificationId,omitempty"`

	// Payload carries the notification or count
	Payload interface{} `json:"payload,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		push:             make(chan *Message, 256),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		clients:          make(map[int64]map[*Client]bool),
		messageListeners: []chan *Message{},
		done:             make(chan struct{}),
		logger:           logger,
	}
}

// Run handles client registrations and pushes until ctx is done
func (h *Hub) Run(ctx context.Context) {
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

		case message := <-h.push:
			h.deliver(message)
		}
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
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

// deliver writes a message to every connection of its user
func (h *Hub) deliver(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.UserID]
	if !ok {
		h.logger.Debug().Int64("userID", message.UserID).Msg("No open connections for user")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", message.UserID).Msg("Failed to marshal message for push")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the connection
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("userID", message.UserID).
		Int("clientCount", len(clients)).
		Str("type", message.Type).
		Msg("Message pushed to user")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Push queues a message for a user. It never blocks; when the queue is full the message is dropped.
func (h *Hub) Push(userID int64, messageType string, payload interface{}) bool {
	msg := &Message{
		Type:      messageType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	select {
	case h.push <- msg:
		return true
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", messageType).Msg("Push queue full, message dropped")
		return false
	}
}

// GetClientsCount returns the number of open connections of a user
func (h *Hub) GetClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID])
}

// AddMessageListener registers a channel to receive inbound client messages
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}

func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		select {
		case listener <- message:
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}
