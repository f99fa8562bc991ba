package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

// ClassService handles class-related operations
type ClassService struct {
	classRepo   ClassStore
	studentRepo StudentStore
}

// NewClassService creates a new class service instance
func NewClassService(classRepo ClassStore, studentRepo StudentStore) *ClassService {
	return &ClassService{
		classRepo:   classRepo,
		studentRepo: studentRepo,
	}
}

// validateClass validates class data before database operations
func (s *ClassService) validateClass(class *models.Class) error {
	if strings.TrimSpace(class.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if class.GradeLevel < 1 || class.GradeLevel > 12 {
		return fmt.Errorf("%w: grade level must be between 1 and 12", apperrors.ErrValidationFailed)
	}
	return nil
}

func classFromRequest(req *dto.ClassRequest) *models.Class {
	return &models.Class{
		Name:            strings.TrimSpace(req.Name),
		GradeLevel:      req.GradeLevel,
		AcademicYear:    strings.TrimSpace(req.AcademicYear),
		HomeroomTeacher: req.HomeroomTeacher,
	}
}

// CreateClass creates a new class
func (s *ClassService) CreateClass(ctx context.Context, req *dto.ClassRequest) (*models.Class, error) {
	class := classFromRequest(req)
	if err := s.validateClass(class); err != nil {
		return nil, err
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// GetClassByID retrieves a class by ID
func (s *ClassService) GetClassByID(ctx context.Context, id int64) (*models.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// GetAllClasses retrieves all classes
func (s *ClassService) GetAllClasses(ctx context.Context) ([]*models.Class, error) {
	return s.classRepo.List(ctx)
}

// UpdateClass updates a class
func (s *ClassService) UpdateClass(ctx context.Context, id int64, req *dto.ClassRequest) (*models.Class, error) {
	class := classFromRequest(req)
	class.ID = id
	if err := s.validateClass(class); err != nil {
		return nil, err
	}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return s.classRepo.GetByID(ctx, id)
}

// DeleteClass deletes a class; its students stay, without a class
func (s *ClassService) DeleteClass(ctx context.Context, id int64) error {
	return s.classRepo.Delete(ctx, id)
}

// GetClassStudents lists the students of a class
func (s *ClassService) GetClassStudents(ctx context.Context, id int64) ([]*models.Student, error) {
	if _, err := s.classRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.studentRepo.ListByClass(ctx, id)
}
