package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/auth"
)

// AccountService manages parent and staff accounts. Each instance is bound to one role.
type AccountService interface {
	Create(ctx context.Context, req *dto.CreateAccountRequest) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, req *dto.UpdateAccountRequest) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Children(ctx context.Context, parentID int64) ([]*models.Student, error)
}

// accountServiceImpl implements AccountService
type accountServiceImpl struct {
	role        models.RoleType
	userRepo    UserStore
	studentRepo StudentStore
	logger      zerolog.Logger
}

// NewAccountService creates an AccountService for the given role
func NewAccountService(role models.RoleType, userRepo UserStore, studentRepo StudentStore, logger zerolog.Logger) AccountService {
	return &accountServiceImpl{
		role:        role,
		userRepo:    userRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

func (s *accountServiceImpl) notFound() error {
	switch s.role {
	case models.RoleParent:
		return apperrors.ErrParentNotFound
	case models.RoleStaff:
		return apperrors.ErrStaffNotFound
	}
	return apperrors.ErrUserNotFound
}

// Create hashes the password and stores a new account with the service's role
func (s *accountServiceImpl) Create(ctx context.Context, req *dto.CreateAccountRequest) (*models.User, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Address:  req.Address,
		Position: req.Position,
		RoleType: s.role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(s.role)).Msg("Account created")
	return user, nil
}

// GetByID retrieves an account of the service's role
func (s *accountServiceImpl) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, s.notFound()
		}
		return nil, err
	}
	if user.RoleType != s.role {
		return nil, s.notFound()
	}
	return user, nil
}

// GetAll lists the accounts of the service's role
func (s *accountServiceImpl) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, s.role)
}

// Update changes profile fields and, when given, the password
func (s *accountServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateAccountRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.FullName = strings.TrimSpace(req.FullName)
	user.Phone = req.Phone
	user.Address = req.Address
	user.Position = req.Position
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account. Students keep their rows; their parent reference is cleared.
func (s *accountServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// Children lists a parent's students
func (s *accountServiceImpl) Children(ctx context.Context, parentID int64) ([]*models.Student, error) {
	if s.role != models.RoleParent {
		return nil, apperrors.NewBadRequestError("only parent accounts have students")
	}
	if _, err := s.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.studentRepo.ListByParent(ctx, parentID)
}
