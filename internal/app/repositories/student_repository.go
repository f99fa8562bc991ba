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

var studentColumns = []string{
	"s.id", "s.student_code", "s.full_name", "s.birth_date", "s.gender", "s.class_id", "s.parent_id",
	"s.created_at", "s.updated_at", "COALESCE(c.name, '')", "COALESCE(c.grade_level, 0)",
}

// StudentFilter narrows a student listing
type StudentFilter struct {
	Search   string
	ClassID  *int64
	ParentID *int64
	Offset   uint64
	Limit    uint64
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: newBuilder()}
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.StudentCode, &s.FullName, &s.BirthDate, &s.Gender, &s.ClassID, &s.ParentID,
		&s.CreatedAt, &s.UpdatedAt, &s.ClassName, &s.GradeLevel,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("students s").
		LeftJoin("classes c ON c.id = s.class_id")
}

func (r *StudentRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Student, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sql", sql).Msg("Error querying students")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func mapStudentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "students_student_code_key"):
		return apperrors.ErrStudentCodeAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("class or parent does not exist")
	}
	return err
}

// Create inserts a student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("student_code", "full_name", "birth_date", "gender", "class_id", "parent_id").
		Values(student.StudentCode, student.FullName, student.BirthDate, student.Gender, student.ClassID, student.ParentID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		if mapped := mapStudentWriteError(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Str("studentCode", student.StudentCode).Msg("Error creating student")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByID retrieves a student with its class name and grade
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.selectStudents().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrStudentNotFound)
	}
	return student, nil
}

// List retrieves a filtered page of students and the total match count
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"s.full_name": pattern},
			squirrel.ILike{"s.student_code": pattern},
		})
	}
	if filter.ClassID != nil {
		where = append(where, squirrel.Eq{"s.class_id": *filter.ClassID})
	}
	if filter.ParentID != nil {
		where = append(where, squirrel.Eq{"s.parent_id": *filter.ParentID})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("students s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	q := r.selectStudents().Where(where).OrderBy("s.full_name", "s.id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	students, err := r.query(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ListByParent retrieves every child of a parent
func (r *StudentRepository) ListByParent(ctx context.Context, parentID int64) ([]*models.Student, error) {
	return r.query(ctx, r.selectStudents().Where(squirrel.Eq{"s.parent_id": parentID}).OrderBy("s.full_name", "s.id"))
}

// ListByClass retrieves every student of a class
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]*models.Student, error) {
	return r.query(ctx, r.selectStudents().Where(squirrel.Eq{"s.class_id": classID}).OrderBy("s.full_name", "s.id"))
}

// ListByGradeLevels retrieves the students whose class is in one of the grade levels
func (r *StudentRepository) ListByGradeLevels(ctx context.Context, gradeLevels []int) ([]*models.Student, error) {
	if len(gradeLevels) == 0 {
		return []*models.Student{}, nil
	}
	return r.query(ctx, r.selectStudents().
		Where(squirrel.Eq{"c.grade_level": gradeLevels}).
		OrderBy("c.grade_level", "c.name", "s.full_name", "s.id"))
}

// Update overwrites a student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("student_code", student.StudentCode).
		Set("full_name", student.FullName).
		Set("birth_date", student.BirthDate).
		Set("gender", student.Gender).
		Set("class_id", student.ClassID).
		Set("parent_id", student.ParentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": student.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		if mapped := mapStudentWriteError(err); mapped != err {
			return mapped
		}
		if err = mapNoRows(err, apperrors.ErrStudentNotFound); errors.Is(err, apperrors.ErrStudentNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error updating student")
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// Delete removes a student; records that reference it are left in place
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error deleting student")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
