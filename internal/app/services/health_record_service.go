package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
)

// HealthRecordService manages the one health record each student may have
type HealthRecordService struct {
	recordRepo  HealthRecordStore
	studentRepo StudentStore
	logger      zerolog.Logger
}

// NewHealthRecordService creates a new HealthRecordService
func NewHealthRecordService(recordRepo HealthRecordStore, studentRepo StudentStore, logger zerolog.Logger) *HealthRecordService {
	return &HealthRecordService{
		recordRepo:  recordRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *HealthRecordService) apply(record *models.HealthRecord, req *dto.HealthRecordRequest, actorID int64) {
	record.StudentID = req.StudentID
	record.Allergies = cleanList(req.Allergies)
	record.ChronicConditions = cleanList(req.ChronicConditions)
	record.HeightCM = req.HeightCM
	record.WeightKG = req.WeightKG
	record.Vision = req.Vision
	record.Hearing = req.Hearing
	record.BloodType = req.BloodType
	record.Notes = req.Notes
	if actorID > 0 {
		record.UpdatedBy = &actorID
	}
}

// Create stores the student's health record; a second record is a conflict
func (s *HealthRecordService) Create(ctx context.Context, actor Actor, req *dto.HealthRecordRequest) (*models.HealthRecord, error) {
	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	record := &models.HealthRecord{}
	s.apply(record, req, actor.UserID)
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetByID retrieves a health record
func (s *HealthRecordService) GetByID(ctx context.Context, id int64) (*models.HealthRecord, error) {
	return s.recordRepo.GetByID(ctx, id)
}

// GetByStudent retrieves the record of a student
func (s *HealthRecordService) GetByStudent(ctx context.Context, studentID int64) (*models.HealthRecord, error) {
	return s.recordRepo.GetByStudentID(ctx, studentID)
}

// GetAll lists every health record
func (s *HealthRecordService) GetAll(ctx context.Context) ([]*models.HealthRecord, error) {
	return s.recordRepo.List(ctx)
}

// Update overwrites a health record. Moving it to another student is not allowed.
func (s *HealthRecordService) Update(ctx context.Context, actor Actor, id int64, req *dto.HealthRecordRequest) (*models.HealthRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.StudentID != record.StudentID {
		return nil, apperrors.NewValidationError("studentId of a health record cannot change")
	}

	s.apply(record, req, actor.UserID)
	if err := s.recordRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a health record
func (s *HealthRecordService) Delete(ctx context.Context, id int64) error {
	return s.recordRepo.Delete(ctx, id)
}

// TreatmentService appends to and reads the treatment log
type TreatmentService struct {
	treatmentRepo TreatmentStore
	studentRepo   StudentStore
	recordRepo    HealthRecordStore
	logger        zerolog.Logger
}

// NewTreatmentService creates a new TreatmentService
func NewTreatmentService(treatmentRepo TreatmentStore, studentRepo StudentStore, recordRepo HealthRecordStore, logger zerolog.Logger) *TreatmentService {
	return &TreatmentService{
		treatmentRepo: treatmentRepo,
		studentRepo:   studentRepo,
		recordRepo:    recordRepo,
		logger:        logger,
	}
}

// Create appends an entry. The staff member defaults to the caller.
func (s *TreatmentService) Create(ctx context.Context, actor Actor, req *dto.TreatmentHistoryRequest) (*models.TreatmentHistory, error) {
	if _, err := s.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	if req.RecordID != nil {
		record, err := s.recordRepo.GetByID(ctx, *req.RecordID)
		if err != nil {
			if errors.Is(err, apperrors.ErrHealthRecordNotFound) {
				return nil, &apperrors.CustomError{Err: apperrors.ErrReferenceNotFound, Message: "health record does not exist"}
			}
			return nil, err
		}
		if record.StudentID != req.StudentID {
			return nil, apperrors.NewValidationError("health record belongs to another student")
		}
	}

	staffID := actor.UserID
	if req.StaffID != nil {
		staffID = *req.StaffID
	}

	treatedAt := time.Now().UTC()
	if req.TreatedAt != nil {
		t, err := helpers.ParseDate(*req.TreatedAt)
		if err != nil {
			return nil, apperrors.NewValidationError("treatedAt must be a date (YYYY-MM-DD)")
		}
		treatedAt = t
	}

	entry := &models.TreatmentHistory{
		StudentID:   req.StudentID,
		StaffID:     staffID,
		RecordID:    req.RecordID,
		TreatedAt:   treatedAt,
		Description: strings.TrimSpace(req.Description),
		Notes:       req.Notes,
	}
	if err := s.treatmentRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", entry.StudentID).Int64("staffID", staffID).Msg("Treatment recorded")
	return entry, nil
}

// GetByID retrieves one entry
func (s *TreatmentService) GetByID(ctx context.Context, id int64) (*models.TreatmentHistory, error) {
	return s.treatmentRepo.GetByID(ctx, id)
}

// GetAll lists the whole log
func (s *TreatmentService) GetAll(ctx context.Context) ([]*models.TreatmentHistory, error) {
	return s.treatmentRepo.List(ctx, nil)
}

// GetByStudent lists a student's entries
func (s *TreatmentService) GetByStudent(ctx context.Context, studentID int64) ([]*models.TreatmentHistory, error) {
	return s.treatmentRepo.List(ctx, &studentID)
}

// Delete removes an entry recorded by mistake
func (s *TreatmentService) Delete(ctx context.Context, id int64) error {
	return s.treatmentRepo.Delete(ctx, id)
}

// MedicineService manages the medicine storage inventory
type MedicineService struct {
	medicineRepo MedicineStore
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(medicineRepo MedicineStore) *MedicineService {
	return &MedicineService{medicineRepo: medicineRepo}
}

func medicineFromRequest(req *dto.MedicineRequest) (*models.Medicine, error) {
	expiry, err := helpers.ParseOptionalDate(req.ExpiryDate)
	if err != nil {
		return nil, apperrors.NewValidationError("expiryDate must be a date (YYYY-MM-DD)")
	}
	if req.Quantity < 0 {
		return nil, apperrors.NewValidationError("quantity cannot be negative")
	}
	return &models.Medicine{
		Name:        strings.TrimSpace(req.Name),
		Quantity:    req.Quantity,
		Unit:        strings.TrimSpace(req.Unit),
		ExpiryDate:  expiry,
		Description: req.Description,
	}, nil
}

// Create adds an item
func (s *MedicineService) Create(ctx context.Context, req *dto.MedicineRequest) (*models.Medicine, error) {
	medicine, err := medicineFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.medicineRepo.Create(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// GetByID retrieves an item
func (s *MedicineService) GetByID(ctx context.Context, id int64) (*models.Medicine, error) {
	return s.medicineRepo.GetByID(ctx, id)
}

// GetAll lists the inventory
func (s *MedicineService) GetAll(ctx context.Context) ([]*models.Medicine, error) {
	return s.medicineRepo.List(ctx)
}

// Update overwrites an item
func (s *MedicineService) Update(ctx context.Context, id int64, req *dto.MedicineRequest) (*models.Medicine, error) {
	medicine, err := medicineFromRequest(req)
	if err != nil {
		return nil, err
	}
	medicine.ID = id
	if err := s.medicineRepo.Update(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// Delete removes an item
func (s *MedicineService) Delete(ctx context.Context, id int64) error {
	return s.medicineRepo.Delete(ctx, id)
}
