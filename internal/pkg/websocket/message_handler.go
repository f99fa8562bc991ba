package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReadMarker marks a user's notification as read
type ReadMarker interface {
	MarkAsReadForParent(ctx context.Context, parentID, notificationID int64) error
}

// MessageHandler applies read acknowledgements sent by clients
type MessageHandler struct {
	marker ReadMarker
	hub    *Hub
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(marker ReadMarker, hub *Hub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		marker: marker,
		hub:    hub,
		logger: logger,
	}
}

// Start consumes client messages until ctx is done
func (h *MessageHandler) Start(ctx context.Context) {
	messages := make(chan *Message, 64)
	h.hub.AddMessageListener(messages)

	go func() {
		defer h.hub.RemoveMessageListener(messages)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-messages:
				h.handle(ctx, msg)
			}
		}
	}()
}

func (h *MessageHandler) handle(ctx context.Context, msg *Message) {
	if msg.Type != MessageTypeRead || msg.NotificationID <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.marker.MarkAsReadForParent(ctx, msg.UserID, msg.NotificationID); err != nil {
		h.logger.Warn().
			Err(err).
			Int64("userID", msg.UserID).
			Int64("notificationID", msg.NotificationID).
			Msg("Failed to mark notification as read")
		return
	}

	h.logger.Debug().
		Int64("userID", msg.UserID).
		Int64("notificationID", msg.NotificationID).
		Msg("Notification marked as read over WebSocket")
}
