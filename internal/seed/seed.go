package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

// Stores are the tables seeding writes to
type Stores struct {
	Users    services.UserStore
	Students services.StudentStore
	Classes  services.ClassStore
}

// Options controls what CreateDefaultData creates
type Options struct {
	AdminEmail      string
	AdminPassword   string
	Grades          int
	ClassesPerGrade int
	AcademicYear    string
}

// CreateDefaultData creates the admin account and the default classes if they
// don't exist yet. It keeps going after a failure and returns every error joined.
func CreateDefaultData(ctx context.Context, stores Stores, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (admin, classes)...")
	var finalErr error

	// --- Default Admin User --- //
	if opts.AdminPassword == "" {
		lgr.Warn().Msg("No seed admin password configured, skipping admin creation")
	} else {
		admins := services.NewAccountService(models.RoleAdmin, stores.Users, stores.Students, lgr)
		admin, err := admins.Create(ctx, &dto.CreateAccountRequest{
			Email:    opts.AdminEmail,
			Password: opts.AdminPassword,
			FullName: "System Administrator",
		})
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Info().Str("email", opts.AdminEmail).Msg("Admin user already exists, skipping creation")
		case err != nil:
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		default:
			lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
		}
	}

	// --- Default Classes --- //
	academicYear := opts.AcademicYear
	if academicYear == "" {
		academicYear = "2025-2026"
	}
	classes := services.NewClassService(stores.Classes, stores.Students)
	created := 0
	for grade := 1; grade <= opts.Grades; grade++ {
		for i := 0; i < opts.ClassesPerGrade; i++ {
			name := fmt.Sprintf("%d%c", grade, 'A'+i)
			_, err := classes.CreateClass(ctx, &dto.ClassRequest{
				Name:         name,
				GradeLevel:   grade,
				AcademicYear: academicYear,
			})
			if errors.Is(err, apperrors.ErrClassAlreadyExists) {
				continue
			}
			if err != nil {
				lgr.Error().Err(err).Str("class", name).Msg("Error creating default class")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			created++
		}
	}

	lgr.Info().Int("classesCreated", created).Msg("Default data check/creation finished.")
	return finalErr
}
