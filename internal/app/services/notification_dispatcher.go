package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/pkg/email"
	"github.com/eduhealth/schoolhealth/internal/pkg/websocket"
)

const dispatchQueueSize = 256

// Pusher sends a realtime message to a user's open connections
type Pusher interface {
	Push(userID int64, messageType string, payload interface{}) bool
}

// Dispatcher delivers stored notifications to their parent
type Dispatcher interface {
	Dispatch(n *models.Notification)
}

// NotificationDispatcher pushes notifications over websocket and email.
// Delivery is best-effort: the stored row stays the source of truth.
type NotificationDispatcher struct {
	pusher   Pusher
	mailer   email.EmailService
	users    UserStore
	queue    chan *models.Notification
	logger   zerolog.Logger
	linkPath string
}

// NewNotificationDispatcher creates a dispatcher; pusher and mailer may be nil
func NewNotificationDispatcher(pusher Pusher, mailer email.EmailService, users UserStore, logger zerolog.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		pusher:   pusher,
		mailer:   mailer,
		users:    users,
		queue:    make(chan *models.Notification, dispatchQueueSize),
		logger:   logger,
		linkPath: "/notifications",
	}
}

// Dispatch enqueues a notification without blocking. A full queue drops it.
func (d *NotificationDispatcher) Dispatch(n *models.Notification) {
	select {
	case d.queue <- n:
	default:
		d.logger.Warn().Int64("notificationID", n.ID).Msg("Dispatch queue full, notification not pushed")
	}
}

// Run delivers queued notifications until ctx is done
func (d *NotificationDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n *models.Notification) {
	if d.pusher != nil {
		if !d.pusher.Push(n.ParentID, websocket.MessageTypeNotification, n) {
			d.logger.Debug().Int64("parentID", n.ParentID).Msg("Parent has no open connection")
		}
	}

	if d.mailer == nil || d.users == nil {
		return
	}

	parent, err := d.users.GetByID(ctx, n.ParentID)
	if err != nil {
		d.logger.Warn().Err(err).Int64("parentID", n.ParentID).Msg("Could not load parent for notification email")
		return
	}

	link := fmt.Sprintf("%s/%d", d.linkPath, n.ID)
	if err := d.mailer.SendNotificationEmail(parent.Email, parent.FullName, n.Title, n.Content, link); err != nil {
		d.logger.Warn().Err(err).Int64("notificationID", n.ID).Msg("Failed to send notification email")
	}
}
