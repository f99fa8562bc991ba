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

var deliveryColumns = []string{
	"id", "student_id", "parent_id", "staff_id", "medicine_name", "total", "per_dose", "per_day",
	"note", "reason", "status", "sent_at", "end_at", "created_at", "updated_at",
}

// DeliveryRepository handles database operations for medicine deliveries
type DeliveryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{db: db, sb: newBuilder()}
}

func scanDelivery(row rowScanner) (*models.MedicineDelivery, error) {
	var d models.MedicineDelivery
	err := row.Scan(
		&d.ID, &d.StudentID, &d.ParentID, &d.StaffID, &d.MedicineName, &d.Total, &d.PerDose, &d.PerDay,
		&d.Note, &d.Reason, &d.Status, &d.SentAt, &d.EndAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a delivery
func (r *DeliveryRepository) Create(ctx context.Context, d *models.MedicineDelivery) error {
	sql, args, err := r.sb.Insert("medicine_deliveries").
		Columns("student_id", "parent_id", "staff_id", "medicine_name", "total", "per_dose", "per_day",
			"note", "reason", "status", "sent_at", "end_at").
		Values(d.StudentID, d.ParentID, d.StaffID, d.MedicineName, d.Total, d.PerDose, d.PerDay,
			d.Note, d.Reason, d.Status, d.SentAt, d.EndAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("studentID", d.StudentID).Msg("Error creating medicine delivery")
		return fmt.Errorf("error creating medicine delivery: %w", err)
	}
	return nil
}

// GetByID retrieves a delivery
func (r *DeliveryRepository) GetByID(ctx context.Context, id int64) (*models.MedicineDelivery, error) {
	sql, args, err := r.sb.Select(deliveryColumns...).From("medicine_deliveries").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	d, err := scanDelivery(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrDeliveryNotFound)
	}
	return d, nil
}

// list retrieves deliveries matching where, newest first; a nil where returns all
func (r *DeliveryRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.MedicineDelivery, error) {
	q := r.sb.Select(deliveryColumns...).From("medicine_deliveries").OrderBy("sent_at DESC", "id DESC")
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing medicine deliveries")
		return nil, fmt.Errorf("error listing medicine deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []*models.MedicineDelivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning medicine delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// ListByStudent retrieves the deliveries for a student
func (r *DeliveryRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.MedicineDelivery, error) {
	return r.list(ctx, squirrel.Eq{"student_id": studentID})
}

// ListByParent retrieves the deliveries a parent submitted
func (r *DeliveryRepository) ListByParent(ctx context.Context, parentID int64) ([]*models.MedicineDelivery, error) {
	return r.list(ctx, squirrel.Eq{"parent_id": parentID})
}

// ListAll retrieves every delivery
func (r *DeliveryRepository) ListAll(ctx context.Context) ([]*models.MedicineDelivery, error) {
	return r.list(ctx, nil)
}

// Update overwrites the request fields of a delivery
func (r *DeliveryRepository) Update(ctx context.Context, d *models.MedicineDelivery) error {
	sql, args, err := r.sb.Update("medicine_deliveries").
		Set("student_id", d.StudentID).
		Set("medicine_name", d.MedicineName).
		Set("total", d.Total).
		Set("per_dose", d.PerDose).
		Set("per_day", d.PerDay).
		Set("note", d.Note).
		Set("sent_at", d.SentAt).
		Set("end_at", d.EndAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": d.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if err = mapNoRows(err, apperrors.ErrDeliveryNotFound); errors.Is(err, apperrors.ErrDeliveryNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("deliveryID", d.ID).Msg("Error updating medicine delivery")
		return fmt.Errorf("error updating medicine delivery: %w", err)
	}
	return nil
}

// UpdateStatus sets status, the handling staff member and an optional reason
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id int64, status models.DeliveryStatus, staffID *int64, reason *string) (*models.MedicineDelivery, error) {
	sql, args, err := r.sb.Update("medicine_deliveries").
		Set("status", status).
		Set("staff_id", squirrel.Expr("COALESCE(?, staff_id)", staffID)).
		Set("reason", squirrel.Expr("COALESCE(?, reason)", reason)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(deliveryColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	d, err := scanDelivery(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err = mapNoRows(err, apperrors.ErrDeliveryNotFound); errors.Is(err, apperrors.ErrDeliveryNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Int64("deliveryID", id).Msg("Error updating medicine delivery status")
		return nil, fmt.Errorf("error updating medicine delivery status: %w", err)
	}
	return d, nil
}

// Delete removes a delivery
func (r *DeliveryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medicine_deliveries WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("deliveryID", id).Msg("Error deleting medicine delivery")
		return fmt.Errorf("error deleting medicine delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDeliveryNotFound
	}
	return nil
}
