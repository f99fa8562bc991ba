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

var medicineColumns = []string{"id", "name", "quantity", "unit", "expiry_date", "description", "created_at", "updated_at"}

// MedicineRepository handles database operations for the medicine storage
type MedicineRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMedicineRepository creates a new MedicineRepository
func NewMedicineRepository(db *pgxpool.Pool) *MedicineRepository {
	return &MedicineRepository{db: db, sb: newBuilder()}
}

func scanMedicine(row rowScanner) (*models.Medicine, error) {
	var m models.Medicine
	if err := row.Scan(&m.ID, &m.Name, &m.Quantity, &m.Unit, &m.ExpiryDate, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a medicine
func (r *MedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	sql, args, err := r.sb.Insert("medicines").
		Columns("name", "quantity", "unit", "expiry_date", "description").
		Values(medicine.Name, medicine.Quantity, medicine.Unit, medicine.ExpiryDate, medicine.Description).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&medicine.ID, &medicine.CreatedAt, &medicine.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrMedicineAlreadyExists
		}
		logger.Error().Err(err).Str("name", medicine.Name).Msg("Error creating medicine")
		return fmt.Errorf("error creating medicine: %w", err)
	}
	return nil
}

// GetByID retrieves a medicine
func (r *MedicineRepository) GetByID(ctx context.Context, id int64) (*models.Medicine, error) {
	sql, args, err := r.sb.Select(medicineColumns...).From("medicines").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	medicine, err := scanMedicine(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrMedicineNotFound)
	}
	return medicine, nil
}

// List retrieves every medicine ordered by name
func (r *MedicineRepository) List(ctx context.Context) ([]*models.Medicine, error) {
	sql, args, err := r.sb.Select(medicineColumns...).From("medicines").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing medicines")
		return nil, fmt.Errorf("error listing medicines: %w", err)
	}
	defer rows.Close()

	medicines := []*models.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning medicine: %w", err)
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

// Update overwrites a medicine
func (r *MedicineRepository) Update(ctx context.Context, medicine *models.Medicine) error {
	sql, args, err := r.sb.Update("medicines").
		Set("name", medicine.Name).
		Set("quantity", medicine.Quantity).
		Set("unit", medicine.Unit).
		Set("expiry_date", medicine.ExpiryDate).
		Set("description", medicine.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": medicine.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&medicine.CreatedAt, &medicine.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrMedicineAlreadyExists
		}
		if err = mapNoRows(err, apperrors.ErrMedicineNotFound); errors.Is(err, apperrors.ErrMedicineNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("medicineID", medicine.ID).Msg("Error updating medicine")
		return fmt.Errorf("error updating medicine: %w", err)
	}
	return nil
}

// Delete removes a medicine
func (r *MedicineRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("medicineID", id).Msg("Error deleting medicine")
		return fmt.Errorf("error deleting medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMedicineNotFound
	}
	return nil
}
