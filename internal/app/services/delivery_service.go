package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
)

// WorkflowOptions tune how status changes are applied
type WorkflowOptions struct {
	// StrictTransitions rejects status changes the state machine does not allow
	StrictTransitions bool
	// NotifyOnStatusChange notifies the parent when staff change a status
	NotifyOnStatusChange bool
}

// Notifier stores and dispatches a notification
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// DeliveryService handles medicine deliveries sent in by parents
type DeliveryService struct {
	deliveryRepo DeliveryStore
	studentRepo  StudentStore
	notifier     Notifier
	options      WorkflowOptions
	logger       zerolog.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	deliveryRepo DeliveryStore,
	studentRepo StudentStore,
	notifier Notifier,
	options WorkflowOptions,
	logger zerolog.Logger,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		studentRepo:  studentRepo,
		notifier:     notifier,
		options:      options,
		logger:       logger,
	}
}

// fill copies the request onto d after checking who may submit for which student
func (s *DeliveryService) fill(ctx context.Context, actor Actor, d *models.MedicineDelivery, req *dto.MedicineDeliveryRequest) error {
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return err
	}

	switch {
	case actor.IsParent():
		if !actor.ownsStudent(student) {
			return apperrors.NewForbiddenError("you can only send medicine for your own child")
		}
		d.ParentID = actor.UserID
	case req.ParentID != nil:
		d.ParentID = *req.ParentID
	case student.ParentID != nil:
		d.ParentID = *student.ParentID
	default:
		return apperrors.NewValidationError("student has no parent; parentId is required")
	}

	sentAt := time.Now().UTC()
	if req.SentAt != nil {
		if sentAt, err = helpers.ParseDate(*req.SentAt); err != nil {
			return apperrors.NewValidationError("sentAt must be a date (YYYY-MM-DD)")
		}
	}
	endAt, err := helpers.ParseOptionalDate(req.EndAt)
	if err != nil {
		return apperrors.NewValidationError("endAt must be a date (YYYY-MM-DD)")
	}
	if endAt != nil && endAt.Before(sentAt) {
		return apperrors.NewValidationError("endAt must not be before sentAt")
	}
	if req.PerDose*req.PerDay > req.Total {
		return apperrors.NewValidationError("total must cover at least one day of doses")
	}

	d.StudentID = req.StudentID
	d.MedicineName = strings.TrimSpace(req.MedicineName)
	d.Total = req.Total
	d.PerDose = req.PerDose
	d.PerDay = req.PerDay
	d.Note = req.Note
	d.SentAt = sentAt
	d.EndAt = endAt
	return nil
}

// Create submits a delivery in pending status
func (s *DeliveryService) Create(ctx context.Context, actor Actor, req *dto.MedicineDeliveryRequest) (*models.MedicineDelivery, error) {
	d := &models.MedicineDelivery{Status: models.DeliveryPending}
	if err := s.fill(ctx, actor, d, req); err != nil {
		return nil, err
	}
	if err := s.deliveryRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("deliveryID", d.ID).Int64("studentID", d.StudentID).Msg("Medicine delivery submitted")
	return d, nil
}

// GetByID retrieves a delivery; parents only see their own
func (s *DeliveryService) GetByID(ctx context.Context, actor Actor, id int64) (*models.MedicineDelivery, error) {
	d, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() && d.ParentID != actor.UserID {
		return nil, apperrors.ErrDeliveryNotFound
	}
	return d, nil
}

// GetAll lists every delivery
func (s *DeliveryService) GetAll(ctx context.Context) ([]*models.MedicineDelivery, error) {
	return s.deliveryRepo.ListAll(ctx)
}

// GetByStudent lists the deliveries for a student
func (s *DeliveryService) GetByStudent(ctx context.Context, studentID int64) ([]*models.MedicineDelivery, error) {
	return s.deliveryRepo.ListByStudent(ctx, studentID)
}

// GetByParent lists the deliveries a parent sent
func (s *DeliveryService) GetByParent(ctx context.Context, parentID int64) ([]*models.MedicineDelivery, error) {
	return s.deliveryRepo.ListByParent(ctx, parentID)
}

// Update edits the request while it is still pending
func (s *DeliveryService) Update(ctx context.Context, actor Actor, id int64, req *dto.MedicineDeliveryRequest) (*models.MedicineDelivery, error) {
	d, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DeliveryPending {
		return nil, apperrors.NewConflictError("only pending deliveries can be edited")
	}
	if err := s.fill(ctx, actor, d, req); err != nil {
		return nil, err
	}
	if err := s.deliveryRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateStatus moves a delivery through its workflow. Parents may only cancel
// their own pending request.
func (s *DeliveryService) UpdateStatus(ctx context.Context, actor Actor, id int64, req *dto.DeliveryStatusRequest) (*models.MedicineDelivery, error) {
	next := models.DeliveryStatus(strings.ToLower(req.Status))
	if !next.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown delivery status %q", req.Status))
	}

	current, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.IsParent() {
		if next != models.DeliveryCancelled || current.Status != models.DeliveryPending {
			return nil, apperrors.NewForbiddenError("parents can only cancel a pending delivery")
		}
	}

	if !current.Status.CanTransition(next) {
		if s.options.StrictTransitions {
			return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current.Status, next)
		}
		s.logger.Warn().
			Int64("deliveryID", id).
			Str("from", string(current.Status)).
			Str("to", string(next)).
			Msg("Delivery status change outside the workflow")
	}

	var staffID *int64
	if !actor.IsParent() {
		staffID = &actor.UserID
	}

	updated, err := s.deliveryRepo.UpdateStatus(ctx, id, next, staffID, req.Reason)
	if err != nil {
		return nil, err
	}

	if s.options.NotifyOnStatusChange && !actor.IsParent() && current.Status != next {
		s.notifyParent(ctx, updated)
	}
	return updated, nil
}

func (s *DeliveryService) notifyParent(ctx context.Context, d *models.MedicineDelivery) {
	if s.notifier == nil {
		return
	}

	relatedType := "medicine_delivery"
	content := fmt.Sprintf("Your medicine delivery of %s is now %s.", d.MedicineName, d.Status)
	if d.Reason != nil && *d.Reason != "" {
		content += " Reason: " + *d.Reason
	}

	studentID := d.StudentID
	err := s.notifier.Notify(ctx, &models.Notification{
		ParentID:    d.ParentID,
		StudentID:   &studentID,
		Type:        models.NotificationMedicineDelivery,
		Title:       "Medicine delivery " + string(d.Status),
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &d.ID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("deliveryID", d.ID).Msg("Failed to notify parent about delivery status")
	}
}

// Delete removes a delivery; parents may only delete their own pending request
func (s *DeliveryService) Delete(ctx context.Context, actor Actor, id int64) error {
	d, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if actor.IsParent() && d.Status != models.DeliveryPending {
		return apperrors.NewConflictError("only pending deliveries can be deleted")
	}
	return s.deliveryRepo.Delete(ctx, id)
}
