package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

// NotificationService records notifications and hands them to the dispatcher
type NotificationService struct {
	notificationRepo NotificationStore
	userRepo         UserStore
	studentRepo      StudentStore
	dispatcher       Dispatcher
	logger           zerolog.Logger
}

// NewNotificationService creates a new notification service; dispatcher may be nil
func NewNotificationService(
	notificationRepo NotificationStore,
	userRepo UserStore,
	studentRepo StudentStore,
	dispatcher Dispatcher,
	logger zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		studentRepo:      studentRepo,
		dispatcher:       dispatcher,
		logger:           logger,
	}
}

// Create validates the references and stores a notification
func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	parent, err := s.userRepo.GetByID(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrParentNotFound
		}
		return nil, err
	}
	if parent.RoleType != models.RoleParent {
		return nil, apperrors.ErrParentNotFound
	}

	if req.StudentID != nil {
		if _, err := s.studentRepo.GetByID(ctx, *req.StudentID); err != nil {
			return nil, err
		}
	}

	n := &models.Notification{
		ParentID:    req.ParentID,
		StudentID:   req.StudentID,
		Type:        models.NotificationType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Notes:       req.Notes,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Notify stores n and dispatches it. Callers that produce notifications as a
// side effect treat a failure here as non-fatal.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationGeneral
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Debug().
		Int64("notificationID", n.ID).
		Int64("parentID", n.ParentID).
		Str("type", string(n.Type)).
		Msg("Notification created")

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(n)
	}
	return nil
}

// GetAll lists every notification
func (s *NotificationService) GetAll(ctx context.Context) ([]*models.Notification, error) {
	return s.notificationRepo.ListAll(ctx)
}

// GetByID returns one notification; parents only see their own
func (s *NotificationService) GetByID(ctx context.Context, actor Actor, id int64) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() && n.ParentID != actor.UserID {
		return nil, apperrors.ErrNotificationNotFound
	}
	return n, nil
}

// GetByParent lists a parent's notifications, newest first
func (s *NotificationService) GetByParent(ctx context.Context, parentID int64, unreadOnly bool) ([]*models.Notification, error) {
	return s.notificationRepo.ListByParent(ctx, parentID, unreadOnly)
}

// GetByStudent lists the notifications about a student
func (s *NotificationService) GetByStudent(ctx context.Context, studentID int64) ([]*models.Notification, error) {
	return s.notificationRepo.ListByStudent(ctx, studentID)
}

// MarkAsRead sets isRead. Marking an already read notification succeeds.
func (s *NotificationService) MarkAsRead(ctx context.Context, actor Actor, id int64) (*models.Notification, error) {
	if actor.IsParent() {
		if _, err := s.GetByID(ctx, actor, id); err != nil {
			return nil, err
		}
	}
	return s.notificationRepo.MarkAsRead(ctx, id)
}

// MarkAsReadForParent marks a notification read on behalf of its parent.
// It backs the websocket read acknowledgement.
func (s *NotificationService) MarkAsReadForParent(ctx context.Context, parentID, notificationID int64) error {
	_, err := s.MarkAsRead(ctx, Actor{UserID: parentID, Role: models.RoleParent}, notificationID)
	return err
}

// MarkAllAsRead marks every unread notification of the parent
func (s *NotificationService) MarkAllAsRead(ctx context.Context, parentID int64) (int64, error) {
	return s.notificationRepo.MarkAllAsRead(ctx, parentID)
}

// CountUnread counts the parent's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, parentID int64) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, parentID)
}

// Delete removes a notification; parents may only delete their own
func (s *NotificationService) Delete(ctx context.Context, actor Actor, id int64) error {
	if actor.IsParent() {
		if _, err := s.GetByID(ctx, actor, id); err != nil {
			return err
		}
	}
	return s.notificationRepo.Delete(ctx, id)
}
