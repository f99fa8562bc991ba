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

var classColumns = []string{"id", "name", "grade_level", "academic_year", "homeroom_teacher", "created_at", "updated_at"}

// ClassRepository handles database operations for classes
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db, sb: newBuilder()}
}

func scanClass(row rowScanner) (*models.Class, error) {
	var c models.Class
	if err := row.Scan(&c.ID, &c.Name, &c.GradeLevel, &c.AcademicYear, &c.HomeroomTeacher, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Insert("classes").
		Columns("name", "grade_level", "academic_year", "homeroom_teacher").
		Values(class.Name, class.GradeLevel, class.AcademicYear, class.HomeroomTeacher).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrClassAlreadyExists
		}
		logger.Error().Err(err).Str("name", class.Name).Msg("Error creating class")
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.sb.Select(classColumns...).From("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	class, err := scanClass(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrClassNotFound)
	}
	return class, nil
}

// List retrieves all classes ordered by grade and name
func (r *ClassRepository) List(ctx context.Context) ([]*models.Class, error) {
	sql, args, err := r.sb.Select(classColumns...).From("classes").OrderBy("grade_level", "name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing classes")
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	classes := []*models.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Update overwrites a class
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Update("classes").
		Set("name", class.Name).
		Set("grade_level", class.GradeLevel).
		Set("academic_year", class.AcademicYear).
		Set("homeroom_teacher", class.HomeroomTeacher).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": class.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&class.CreatedAt, &class.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrClassAlreadyExists
		}
		if err = mapNoRows(err, apperrors.ErrClassNotFound); errors.Is(err, apperrors.ErrClassNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("classID", class.ID).Msg("Error updating class")
		return fmt.Errorf("error updating class: %w", err)
	}
	return nil
}

// Delete removes a class; students keep their class_id set to NULL
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classID", id).Msg("Error deleting class")
		return fmt.Errorf("error deleting class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}
