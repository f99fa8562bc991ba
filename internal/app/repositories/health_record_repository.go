package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/dberrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

var healthRecordColumns = []string{
	"id", "student_id", "allergies", "chronic_conditions", "height_cm", "weight_kg",
	"vision", "hearing", "blood_type", "notes", "updated_by", "created_at", "updated_at",
}

// HealthRecordRepository handles database operations for health records
type HealthRecordRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewHealthRecordRepository creates a new HealthRecordRepository
func NewHealthRecordRepository(db *pgxpool.Pool) *HealthRecordRepository {
	return &HealthRecordRepository{db: db, sb: newBuilder()}
}

func scanHealthRecord(row rowScanner) (*models.HealthRecord, error) {
	var h models.HealthRecord
	err := row.Scan(
		&h.ID, &h.StudentID, &h.Allergies, &h.ChronicConditions, &h.HeightCM, &h.WeightKG,
		&h.Vision, &h.Hearing, &h.BloodType, &h.Notes, &h.UpdatedBy, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a record; a second record for the same student is a conflict
func (r *HealthRecordRepository) Create(ctx context.Context, record *models.HealthRecord) error {
	sql, args, err := r.sb.Insert("health_records").
		Columns("student_id", "allergies", "chronic_conditions", "height_cm", "weight_kg",
			"vision", "hearing", "blood_type", "notes", "updated_by").
		Values(record.StudentID, nonNilStrings(record.Allergies), nonNilStrings(record.ChronicConditions),
			record.HeightCM, record.WeightKG, record.Vision, record.Hearing, record.BloodType, record.Notes, record.UpdatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrHealthRecordAlreadyExists
		}
		logger.Error().Err(err).Int64("studentID", record.StudentID).Msg("Error creating health record")
		return fmt.Errorf("error creating health record: %w", err)
	}
	return nil
}

func (r *HealthRecordRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.HealthRecord, error) {
	sql, args, err := r.sb.Select(healthRecordColumns...).From("health_records").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	record, err := scanHealthRecord(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrHealthRecordNotFound)
	}
	return record, nil
}

// GetByID retrieves a record by ID
func (r *HealthRecordRepository) GetByID(ctx context.Context, id int64) (*models.HealthRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByStudentID retrieves the record of a student
func (r *HealthRecordRepository) GetByStudentID(ctx context.Context, studentID int64) (*models.HealthRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"student_id": studentID})
}

// List retrieves every record
func (r *HealthRecordRepository) List(ctx context.Context) ([]*models.HealthRecord, error) {
	sql, args, err := r.sb.Select(healthRecordColumns...).From("health_records").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing health records")
		return nil, fmt.Errorf("error listing health records: %w", err)
	}
	defer rows.Close()

	records := []*models.HealthRecord{}
	for rows.Next() {
		h, err := scanHealthRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning health record: %w", err)
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

// Update overwrites a record
func (r *HealthRecordRepository) Update(ctx context.Context, record *models.HealthRecord) error {
	sql, args, err := r.sb.Update("health_records").
		Set("student_id", record.StudentID).
		Set("allergies", nonNilStrings(record.Allergies)).
		Set("chronic_conditions", nonNilStrings(record.ChronicConditions)).
		Set("height_cm", record.HeightCM).
		Set("weight_kg", record.WeightKG).
		Set("vision", record.Vision).
		Set("hearing", record.Hearing).
		Set("blood_type", record.BloodType).
		Set("notes", record.Notes).
		Set("updated_by", record.UpdatedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": record.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrHealthRecordAlreadyExists
		}
		if err = mapNoRows(err, apperrors.ErrHealthRecordNotFound); errors.Is(err, apperrors.ErrHealthRecordNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("recordID", record.ID).Msg("Error updating health record")
		return fmt.Errorf("error updating health record: %w", err)
	}
	return nil
}

// Delete removes a record
func (r *HealthRecordRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM health_records WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("recordID", id).Msg("Error deleting health record")
		return fmt.Errorf("error deleting health record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrHealthRecordNotFound
	}
	return nil
}
