package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

var notificationColumns = []string{
	"id", "parent_id", "student_id", "type", "title", "content", "notes",
	"is_read", "related_type", "related_id", "created_at", "updated_at",
}

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db, sb: newBuilder()}
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID, &n.ParentID, &n.StudentID, &n.Type, &n.Title, &n.Content, &n.Notes,
		&n.IsRead, &n.RelatedType, &n.RelatedID, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts an unread notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("parent_id", "student_id", "type", "title", "content", "notes", "is_read", "related_type", "related_id").
		Values(n.ParentID, n.StudentID, n.Type, n.Title, n.Content, n.Notes, false, n.RelatedType, n.RelatedID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("parentID", n.ParentID).Str("type", string(n.Type)).Msg("Error creating notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	n.IsRead = false
	return nil
}

// GetByID retrieves a notification
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrNotificationNotFound)
	}
	return n, nil
}

func (r *NotificationRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Notification, error) {
	q := r.sb.Select(notificationColumns...).From("notifications").OrderBy("created_at DESC", "id DESC")
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing notifications")
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// ListAll retrieves every notification, newest first
func (r *NotificationRepository) ListAll(ctx context.Context) ([]*models.Notification, error) {
	return r.list(ctx, nil)
}

// ListByParent retrieves a parent's notifications, optionally only unread ones
func (r *NotificationRepository) ListByParent(ctx context.Context, parentID int64, unreadOnly bool) ([]*models.Notification, error) {
	where := squirrel.And{squirrel.Eq{"parent_id": parentID}}
	if unreadOnly {
		where = append(where, squirrel.Eq{"is_read": false})
	}
	return r.list(ctx, where)
}

// ListByStudent retrieves the notifications about a student
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Notification, error) {
	return r.list(ctx, squirrel.Eq{"student_id": studentID})
}

// MarkAsRead sets is_read; marking an already read notification changes nothing
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) (*models.Notification, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Set("updated_at", squirrel.Expr("CASE WHEN is_read THEN updated_at ELSE NOW() END")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err = mapNoRows(err, apperrors.ErrNotificationNotFound); errors.Is(err, apperrors.ErrNotificationNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error marking notification as read")
		return nil, fmt.Errorf("error marking notification as read: %w", err)
	}
	return n, nil
}

// MarkAllAsRead marks every unread notification of a parent and returns how many changed
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, parentID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, updated_at = NOW() WHERE parent_id = $1 AND is_read = FALSE`,
		parentID)
	if err != nil {
		logger.Error().Err(err).Int64("parentID", parentID).Msg("Error marking notifications as read")
		return 0, fmt.Errorf("error marking notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread counts a parent's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE parent_id = $1 AND is_read = FALSE`, parentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// Delete removes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error deleting notification")
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
