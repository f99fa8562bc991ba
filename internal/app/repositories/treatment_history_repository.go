package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

var treatmentColumns = []string{"id", "student_id", "staff_id", "record_id", "treated_at", "description", "notes", "created_at"}

// TreatmentHistoryRepository handles database operations for treatment history.
// Entries are append-only: there is no update.
type TreatmentHistoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTreatmentHistoryRepository creates a new TreatmentHistoryRepository
func NewTreatmentHistoryRepository(db *pgxpool.Pool) *TreatmentHistoryRepository {
	return &TreatmentHistoryRepository{db: db, sb: newBuilder()}
}

func scanTreatment(row rowScanner) (*models.TreatmentHistory, error) {
	var t models.TreatmentHistory
	if err := row.Scan(&t.ID, &t.StudentID, &t.StaffID, &t.RecordID, &t.TreatedAt, &t.Description, &t.Notes, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create appends an entry
func (r *TreatmentHistoryRepository) Create(ctx context.Context, entry *models.TreatmentHistory) error {
	sql, args, err := r.sb.Insert("treatment_histories").
		Columns("student_id", "staff_id", "record_id", "treated_at", "description", "notes").
		Values(entry.StudentID, entry.StaffID, entry.RecordID, entry.TreatedAt, entry.Description, entry.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("studentID", entry.StudentID).Msg("Error creating treatment history")
		return fmt.Errorf("error creating treatment history: %w", err)
	}
	return nil
}

// GetByID retrieves an entry
func (r *TreatmentHistoryRepository) GetByID(ctx context.Context, id int64) (*models.TreatmentHistory, error) {
	sql, args, err := r.sb.Select(treatmentColumns...).From("treatment_histories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	entry, err := scanTreatment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrTreatmentNotFound)
	}
	return entry, nil
}

// List retrieves entries, newest first, optionally for one student
func (r *TreatmentHistoryRepository) List(ctx context.Context, studentID *int64) ([]*models.TreatmentHistory, error) {
	q := r.sb.Select(treatmentColumns...).From("treatment_histories").OrderBy("treated_at DESC", "id DESC")
	if studentID != nil {
		q = q.Where(squirrel.Eq{"student_id": *studentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing treatment history")
		return nil, fmt.Errorf("error listing treatment history: %w", err)
	}
	defer rows.Close()

	entries := []*models.TreatmentHistory{}
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning treatment history: %w", err)
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// Delete removes an entry
func (r *TreatmentHistoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM treatment_histories WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("treatmentID", id).Msg("Error deleting treatment history")
		return fmt.Errorf("error deleting treatment history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTreatmentNotFound
	}
	return nil
}
