package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

// FeedbackService handles parent feedback and staff responses
type FeedbackService struct {
	feedbackRepo FeedbackStore
	userRepo     UserStore
	notifier     Notifier
	logger       zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(feedbackRepo FeedbackStore, userRepo UserStore, notifier Notifier, logger zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create stores feedback. Parents always submit as themselves.
func (s *FeedbackService) Create(ctx context.Context, actor Actor, req *dto.FeedbackRequest) (*models.Feedback, error) {
	parentID := actor.UserID
	if !actor.IsParent() {
		if req.ParentID == nil {
			return nil, apperrors.NewValidationError("parentId is required")
		}
		parentID = *req.ParentID
	}

	parent, err := s.userRepo.GetByID(ctx, parentID)
	if err != nil || parent.RoleType != models.RoleParent {
		if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, apperrors.ErrParentNotFound
	}

	f := &models.Feedback{
		ParentID:    parentID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Status:      models.FeedbackPending,
	}
	if err := s.feedbackRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByID retrieves feedback; parents only see their own
func (s *FeedbackService) GetByID(ctx context.Context, actor Actor, id int64) (*models.Feedback, error) {
	f, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() && f.ParentID != actor.UserID {
		return nil, apperrors.ErrFeedbackNotFound
	}
	return f, nil
}

// GetAll lists every feedback
func (s *FeedbackService) GetAll(ctx context.Context) ([]*models.Feedback, error) {
	return s.feedbackRepo.List(ctx, nil)
}

// GetByParent lists a parent's feedback
func (s *FeedbackService) GetByParent(ctx context.Context, parentID int64) ([]*models.Feedback, error) {
	return s.feedbackRepo.List(ctx, &parentID)
}

// Update edits feedback that has not been answered yet
func (s *FeedbackService) Update(ctx context.Context, actor Actor, id int64, req *dto.FeedbackRequest) (*models.Feedback, error) {
	f, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FeedbackPending {
		return nil, apperrors.NewConflictError("feedback has already been answered")
	}

	f.Title = strings.TrimSpace(req.Title)
	f.Description = req.Description
	f.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := s.feedbackRepo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Respond attaches a staff response and notifies the parent
func (s *FeedbackService) Respond(ctx context.Context, actor Actor, id int64, req *dto.RespondFeedbackRequest) (*models.Feedback, error) {
	response := strings.TrimSpace(req.Response)
	if response == "" {
		return nil, apperrors.NewValidationError("response cannot be empty")
	}

	f, err := s.feedbackRepo.Respond(ctx, id, response, actor.UserID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		relatedType := "feedback"
		err := s.notifier.Notify(ctx, &models.Notification{
			ParentID:    f.ParentID,
			Type:        models.NotificationFeedback,
			Title:       "Response to: " + f.Title,
			Content:     response,
			RelatedType: &relatedType,
			RelatedID:   &f.ID,
		})
		if err != nil {
			s.logger.Warn().Err(err).Int64("feedbackID", f.ID).Msg("Failed to notify parent about feedback response")
		}
	}
	return f, nil
}

// Delete removes feedback; parents may only delete their own
func (s *FeedbackService) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.GetByID(ctx, actor, id); err != nil {
		return err
	}
	return s.feedbackRepo.Delete(ctx, id)
}
