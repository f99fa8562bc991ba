package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/repositories"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/helpers"
)

// CampaignService runs the examination or vaccination workflow for one campaign kind
type CampaignService struct {
	kind         models.CampaignKind
	campaignRepo CampaignStore
	studentRepo  StudentStore
	notifier     Notifier
	options      WorkflowOptions
	logger       zerolog.Logger
}

// NewCampaignService creates a CampaignService bound to kind
func NewCampaignService(
	kind models.CampaignKind,
	campaignRepo CampaignStore,
	studentRepo StudentStore,
	notifier Notifier,
	options WorkflowOptions,
	logger zerolog.Logger,
) *CampaignService {
	return &CampaignService{
		kind:         kind,
		campaignRepo: campaignRepo,
		studentRepo:  studentRepo,
		notifier:     notifier,
		options:      options,
		logger:       logger.With().Str("kind", string(kind)).Logger(),
	}
}

// Kind returns the campaign kind the service handles
func (s *CampaignService) Kind() models.CampaignKind {
	return s.kind
}

func (s *CampaignService) label() string {
	if s.kind == models.KindVaccination {
		return "vaccination"
	}
	return "health examination"
}

// resolveTargets returns the students a campaign applies to, without duplicates
func (s *CampaignService) resolveTargets(ctx context.Context, req *dto.CreateCampaignRequest) ([]*models.Student, error) {
	switch models.TargetType(req.TargetType) {
	case models.TargetGrade:
		if len(req.GradeLevels) == 0 {
			return nil, apperrors.NewValidationError("grade_levels is required when target_type is grade")
		}
		students, err := s.studentRepo.ListByGradeLevels(ctx, req.GradeLevels)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve grade levels: %w", err)
		}
		seen := make(map[int64]bool, len(students))
		unique := students[:0]
		for _, st := range students {
			if !seen[st.ID] {
				seen[st.ID] = true
				unique = append(unique, st)
			}
		}
		return unique, nil

	case models.TargetStudent:
		if req.StudentID == nil {
			return nil, apperrors.NewValidationError("student_id is required when target_type is student")
		}
		student, err := s.studentRepo.GetByID(ctx, *req.StudentID)
		if err != nil {
			return nil, err
		}
		return []*models.Student{student}, nil
	}

	return nil, apperrors.NewValidationError(fmt.Sprintf("unknown target_type %q", req.TargetType))
}

// Create resolves the target students and inserts the campaign with one
// Pending row per student. Every created row notifies the student's parent.
func (s *CampaignService) Create(ctx context.Context, req *dto.CreateCampaignRequest, staffID int64) (*dto.CampaignCreatedResponse, error) {
	scheduledAt, err := helpers.CombineDateTime(req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	students, err := s.resolveTargets(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.ErrNoTargetStudents
	}

	campaign := &models.Campaign{
		EventID:     uuid.New(),
		Kind:        s.kind,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ScheduledAt: scheduledAt,
		Location:    req.Location,
		TargetType:  models.TargetType(req.TargetType),
		CreatedBy:   staffID,
	}
	if campaign.TargetType == models.TargetGrade {
		campaign.GradeLevels = req.GradeLevels
	} else {
		campaign.StudentID = req.StudentID
	}
	if s.kind == models.KindVaccination {
		campaign.VaccineName = req.VaccineName
		campaign.DoseNumber = req.DoseNumber
	} else {
		campaign.ExaminationType = req.ExaminationType
	}

	schedules := make([]*models.Schedule, 0, len(students))
	for _, st := range students {
		schedules = append(schedules, &models.Schedule{
			EventID:     campaign.EventID,
			Kind:        s.kind,
			StudentID:   st.ID,
			ClassID:     st.ClassID,
			ParentID:    st.ParentID,
			Title:       campaign.Title,
			ScheduledAt: scheduledAt,
			Status:      models.StatusPending,
			CreatedBy:   staffID,
			StudentName: st.FullName,
			ClassName:   st.ClassName,
		})
	}

	created, err := s.campaignRepo.CreateWithSchedules(ctx, campaign, schedules)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("eventID", campaign.EventID.String()).
		Int("targeted", len(students)).
		Int("created", len(created)).
		Msg("Campaign created")

	s.notifyCreated(ctx, campaign, created)

	return &dto.CampaignCreatedResponse{
		Campaign:     campaign,
		CreatedCount: len(created),
	}, nil
}

func (s *CampaignService) notifyCreated(ctx context.Context, campaign *models.Campaign, schedules []*models.Schedule) {
	if s.notifier == nil {
		return
	}

	relatedType := "campaign_schedule"
	notificationType := models.NotificationTypeForKind(s.kind)
	when := campaign.ScheduledAt.Format("2006-01-02 15:04")

	for _, row := range schedules {
		if row.ParentID == nil {
			continue
		}
		studentID := row.StudentID
		scheduleID := row.ID
		content := fmt.Sprintf("%s for %s is scheduled on %s. Please approve or reject it.",
			campaign.Title, row.StudentName, when)
		if campaign.Location != nil && *campaign.Location != "" {
			content = fmt.Sprintf("%s for %s is scheduled on %s at %s. Please approve or reject it.",
				campaign.Title, row.StudentName, when, *campaign.Location)
		}

		err := s.notifier.Notify(ctx, &models.Notification{
			ParentID:    *row.ParentID,
			StudentID:   &studentID,
			Type:        notificationType,
			Title:       "New " + s.label() + ": " + campaign.Title,
			Content:     content,
			RelatedType: &relatedType,
			RelatedID:   &scheduleID,
		})
		if err != nil {
			// The schedule row is already committed; the parent still sees it in their list.
			s.logger.Warn().Err(err).Int64("scheduleID", row.ID).Msg("Failed to notify parent about campaign")
		}
	}
}

// ListEvents lists the campaigns of the kind with their status tallies
func (s *CampaignService) ListEvents(ctx context.Context) ([]dto.EventSummary, error) {
	campaigns, err := s.campaignRepo.ListCampaigns(ctx, s.kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{Kind: s.kind})
	if err != nil {
		return nil, err
	}
	byEvent := make(map[uuid.UUID][]*models.Schedule)
	for _, row := range rows {
		byEvent[row.EventID] = append(byEvent[row.EventID], row)
	}

	events := make([]dto.EventSummary, 0, len(campaigns))
	for _, c := range campaigns {
		counts := models.CountStatuses(byEvent[c.EventID])
		events = append(events, dto.EventSummary{
			Campaign: c,
			Counts:   counts,
			Total:    counts.Total(),
		})
	}
	return events, nil
}

// GetEventDetail tallies an event's rows by status, overall and per class
func (s *CampaignService) GetEventDetail(ctx context.Context, eventID uuid.UUID) (*dto.EventDetail, error) {
	campaign, err := s.campaignRepo.GetCampaign(ctx, s.kind, eventID)
	if err != nil {
		return nil, err
	}

	rows, err := s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{Kind: s.kind, EventID: &eventID})
	if err != nil {
		return nil, err
	}

	type classGroup struct {
		name string
		rows []*models.Schedule
	}
	groups := make(map[int64]*classGroup)
	for _, row := range rows {
		var classID int64
		if row.ClassID != nil {
			classID = *row.ClassID
		}
		g, ok := groups[classID]
		if !ok {
			g = &classGroup{name: row.ClassName}
			groups[classID] = g
		}
		g.rows = append(g.rows, row)
	}

	classes := make([]dto.ClassSummary, 0, len(groups))
	for classID, g := range groups {
		counts := models.CountStatuses(g.rows)
		classes = append(classes, dto.ClassSummary{
			ClassID:   classID,
			ClassName: g.name,
			Counts:    counts,
			Total:     counts.Total(),
		})
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].ClassName != classes[j].ClassName {
			return classes[i].ClassName < classes[j].ClassName
		}
		return classes[i].ClassID < classes[j].ClassID
	})

	counts := models.CountStatuses(rows)
	return &dto.EventDetail{
		EventID:  eventID,
		Campaign: campaign,
		Counts:   counts,
		Total:    counts.Total(),
		Classes:  classes,
	}, nil
}

// GetClassDetail tallies and lists the rows of one class within an event
func (s *CampaignService) GetClassDetail(ctx context.Context, eventID uuid.UUID, classID int64) (*dto.ClassDetail, error) {
	if _, err := s.campaignRepo.GetCampaign(ctx, s.kind, eventID); err != nil {
		return nil, err
	}

	rows, err := s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{
		Kind:    s.kind,
		EventID: &eventID,
		ClassID: &classID,
	})
	if err != nil {
		return nil, err
	}

	detail := &dto.ClassDetail{
		EventID:   eventID,
		ClassID:   classID,
		Schedules: rows,
	}
	if len(rows) > 0 {
		detail.ClassName = rows[0].ClassName
	}
	detail.Counts = models.CountStatuses(rows)
	detail.Total = detail.Counts.Total()
	return detail, nil
}

// DeleteEvent removes every row of the event and the campaign. Notifications
// already sent for those rows are kept.
func (s *CampaignService) DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	deleted, err := s.campaignRepo.DeleteEvent(ctx, s.kind, eventID)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Str("eventID", eventID.String()).Int64("deleted", deleted).Msg("Campaign event deleted")
	return deleted, nil
}

// List returns every row of the kind
func (s *CampaignService) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{Kind: s.kind})
}

// GetByID returns one row; parents only see rows of their own children
func (s *CampaignService) GetByID(ctx context.Context, actor Actor, id int64) (*models.Schedule, error) {
	row, err := s.campaignRepo.GetSchedule(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() && (row.ParentID == nil || *row.ParentID != actor.UserID) {
		return nil, apperrors.ErrScheduleNotFound
	}
	return row, nil
}

// GetByStudent lists a student's rows
func (s *CampaignService) GetByStudent(ctx context.Context, studentID int64) ([]*models.Schedule, error) {
	return s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{Kind: s.kind, StudentID: &studentID})
}

// GetByParent lists the rows of a parent's children
func (s *CampaignService) GetByParent(ctx context.Context, parentID int64) ([]*models.Schedule, error) {
	return s.campaignRepo.ListSchedules(ctx, repositories.ScheduleFilter{Kind: s.kind, ParentID: &parentID})
}

// UpdateStatus writes the requested status. By default the value is applied
// regardless of the current one; with strict transitions an illegal move, or a
// concurrent change of the row, fails with ErrInvalidTransition.
func (s *CampaignService) UpdateStatus(ctx context.Context, actor Actor, id int64, req *dto.UpdateStatusRequest) (*models.Schedule, error) {
	next := models.ScheduleStatus(req.Status)
	if !next.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", req.Status))
	}

	current, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.IsParent() && next != models.StatusApproved && next != models.StatusRejected {
		return nil, apperrors.NewForbiddenError("parents can only approve or reject")
	}

	update := repositories.StatusUpdate{
		Status:              next,
		ParentResponseNotes: req.ParentResponseNotes,
		RejectionReason:     req.RejectionReason,
	}

	if !current.Status.CanTransition(next) {
		if s.options.StrictTransitions {
			return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current.Status, next)
		}
		s.logger.Warn().
			Int64("scheduleID", id).
			Str("from", string(current.Status)).
			Str("to", string(next)).
			Msg("Status change outside the workflow")
	}
	if s.options.StrictTransitions {
		expected := current.Status
		update.ExpectedCurrent = &expected
	}

	updated, err := s.campaignRepo.UpdateScheduleStatus(ctx, s.kind, id, update)
	if err != nil {
		return nil, err
	}

	if s.options.NotifyOnStatusChange && !actor.IsParent() && current.Status != next {
		s.notifyStatus(ctx, updated)
	}
	return updated, nil
}

func (s *CampaignService) notifyStatus(ctx context.Context, row *models.Schedule) {
	if s.notifier == nil || row.ParentID == nil {
		return
	}

	relatedType := "campaign_schedule"
	studentID := row.StudentID
	content := fmt.Sprintf("%s for %s is now %s.", row.Title, row.StudentName, row.Status)
	if row.RejectionReason != nil && *row.RejectionReason != "" && row.Status == models.StatusCancelled {
		content += " Reason: " + *row.RejectionReason
	}

	err := s.notifier.Notify(ctx, &models.Notification{
		ParentID:    *row.ParentID,
		StudentID:   &studentID,
		Type:        models.NotificationTypeForKind(s.kind),
		Title:       row.Title + ": " + string(row.Status),
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &row.ID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("scheduleID", row.ID).Msg("Failed to notify parent about status change")
	}
}

// UpdateResult records the outcome; no status is required first
func (s *CampaignService) UpdateResult(ctx context.Context, id int64, req *dto.UpdateResultRequest) (*models.Schedule, error) {
	followUp, err := helpers.ParseOptionalDate(req.FollowUpDate)
	if err != nil {
		return nil, apperrors.NewValidationError("follow_up_date must be a date (YYYY-MM-DD)")
	}

	return s.campaignRepo.UpdateScheduleResult(ctx, s.kind, id, repositories.ResultUpdate{
		HealthResult:     req.HealthResult,
		ExaminationNotes: req.ExaminationNotes,
		Recommendations:  req.Recommendations,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     followUp,
	})
}

// Delete removes one row
func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	return s.campaignRepo.DeleteSchedule(ctx, s.kind, id)
}
