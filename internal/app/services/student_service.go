package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/repositories"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
)

// StudentListParams are the query options of a student listing
type StudentListParams struct {
	Search   string
	ClassID  *int64
	Page     int
	PageSize int
}

// StudentService handles student operations
type StudentService struct {
	studentRepo StudentStore
	classRepo   ClassStore
	userRepo    UserStore
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo StudentStore, classRepo ClassStore, userRepo UserStore, logger zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// checkReferences makes sure the class and parent a student points at exist
func (s *StudentService) checkReferences(ctx context.Context, classID, parentID *int64) error {
	if classID != nil {
		if _, err := s.classRepo.GetByID(ctx, *classID); err != nil {
			if errors.Is(err, apperrors.ErrClassNotFound) {
				return &apperrors.CustomError{Err: apperrors.ErrReferenceNotFound, Message: fmt.Sprintf("class %d does not exist", *classID)}
			}
			return err
		}
	}
	if parentID != nil {
		parent, err := s.userRepo.GetByID(ctx, *parentID)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		if err != nil || parent.RoleType != models.RoleParent {
			return &apperrors.CustomError{Err: apperrors.ErrReferenceNotFound, Message: fmt.Sprintf("parent %d does not exist", *parentID)}
		}
	}
	return nil
}

func studentFromRequest(req *dto.StudentRequest) (*models.Student, error) {
	birthDate, err := helpers.ParseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, apperrors.NewValidationError("birthDate must be a date (YYYY-MM-DD)")
	}
	return &models.Student{
		StudentCode: strings.ToUpper(strings.TrimSpace(req.StudentCode)),
		FullName:    strings.TrimSpace(req.FullName),
		BirthDate:   birthDate,
		Gender:      models.Gender(req.Gender),
		ClassID:     req.ClassID,
		ParentID:    req.ParentID,
	}, nil
}

// CreateStudent registers a student
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.StudentRequest) (*models.Student, error) {
	student, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, student.ClassID, student.ParentID); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Str("studentCode", student.StudentCode).Msg("Student created")
	return s.studentRepo.GetByID(ctx, student.ID)
}

// GetStudentByID retrieves a student; a parent may only see their own children
func (s *StudentService) GetStudentByID(ctx context.Context, actor Actor, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() && !actor.ownsStudent(student) {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

// GetStudents returns one page of students
func (s *StudentService) GetStudents(ctx context.Context, params StudentListParams) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.PageSize)
	students, total, err := s.studentRepo.List(ctx, repositories.StudentFilter{
		Search:  strings.TrimSpace(params.Search),
		ClassID: params.ClassID,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      students,
		Pagination: helpers.NewPaginationInfo(total, params.Page, params.PageSize),
	}, nil
}

// GetStudentsByParent lists a parent's children
func (s *StudentService) GetStudentsByParent(ctx context.Context, parentID int64) ([]*models.Student, error) {
	return s.studentRepo.ListByParent(ctx, parentID)
}

// GetStudentsByClass lists the students of a class
func (s *StudentService) GetStudentsByClass(ctx context.Context, classID int64) ([]*models.Student, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.studentRepo.ListByClass(ctx, classID)
}

// UpdateStudent overwrites a student
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req *dto.StudentRequest) (*models.Student, error) {
	student, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	student.ID = id
	if err := s.checkReferences(ctx, student.ClassID, student.ParentID); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return s.studentRepo.GetByID(ctx, id)
}

// DeleteStudent removes a student. Health records, deliveries and schedules
// referencing it are kept.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}
