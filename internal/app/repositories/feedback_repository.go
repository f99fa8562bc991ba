package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

var feedbackColumns = []string{
	"id", "parent_id", "title", "description", "category", "status",
	"response", "responder_id", "responded_at", "created_at", "updated_at",
}

// FeedbackRepository handles database operations for parent feedback
type FeedbackRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db, sb: newBuilder()}
}

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	var f models.Feedback
	err := row.Scan(
		&f.ID, &f.ParentID, &f.Title, &f.Description, &f.Category, &f.Status,
		&f.Response, &f.ResponderID, &f.RespondedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts feedback
func (r *FeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	sql, args, err := r.sb.Insert("feedbacks").
		Columns("parent_id", "title", "description", "category", "status").
		Values(f.ParentID, f.Title, f.Description, f.Category, f.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("parentID", f.ParentID).Msg("Error creating feedback")
		return fmt.Errorf("error creating feedback: %w", err)
	}
	return nil
}

// GetByID retrieves feedback
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	sql, args, err := r.sb.Select(feedbackColumns...).From("feedbacks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	f, err := scanFeedback(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrFeedbackNotFound)
	}
	return f, nil
}

// List retrieves feedback newest first, optionally for one parent
func (r *FeedbackRepository) List(ctx context.Context, parentID *int64) ([]*models.Feedback, error) {
	q := r.sb.Select(feedbackColumns...).From("feedbacks").OrderBy("created_at DESC", "id DESC")
	if parentID != nil {
		q = q.Where(squirrel.Eq{"parent_id": *parentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing feedback")
		return nil, fmt.Errorf("error listing feedback: %w", err)
	}
	defer rows.Close()

	feedbacks := []*models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning feedback: %w", err)
		}
		feedbacks = append(feedbacks, f)
	}
	return feedbacks, rows.Err()
}

// Update overwrites the parent-editable fields
func (r *FeedbackRepository) Update(ctx context.Context, f *models.Feedback) error {
	sql, args, err := r.sb.Update("feedbacks").
		Set("title", f.Title).
		Set("description", f.Description).
		Set("category", f.Category).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": f.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&f.CreatedAt, &f.UpdatedAt); err != nil {
		if err = mapNoRows(err, apperrors.ErrFeedbackNotFound); errors.Is(err, apperrors.ErrFeedbackNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("feedbackID", f.ID).Msg("Error updating feedback")
		return fmt.Errorf("error updating feedback: %w", err)
	}
	return nil
}

// Respond records a staff response
func (r *FeedbackRepository) Respond(ctx context.Context, id int64, response string, responderID int64) (*models.Feedback, error) {
	sql, args, err := r.sb.Update("feedbacks").
		Set("response", response).
		Set("responder_id", responderID).
		Set("responded_at", time.Now()).
		Set("status", models.FeedbackResponded).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(feedbackColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	f, err := scanFeedback(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err = mapNoRows(err, apperrors.ErrFeedbackNotFound); errors.Is(err, apperrors.ErrFeedbackNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Int64("feedbackID", id).Msg("Error responding to feedback")
		return nil, fmt.Errorf("error responding to feedback: %w", err)
	}
	return f, nil
}

// Delete removes feedback
func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedbacks WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("feedbackID", id).Msg("Error deleting feedback")
		return fmt.Errorf("error deleting feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeedbackNotFound
	}
	return nil
}
