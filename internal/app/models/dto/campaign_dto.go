package dto

import (
	"github.com/google/uuid"

	"github.com/eduhealth/schoolhealth/internal/app/models"
)

// CreateCampaignRequest creates an examination or vaccination campaign.
// GradeLevels is used when TargetType is "grade", StudentID when it is "student".
type CreateCampaignRequest struct {
	Title           string  `json:"title" binding:"required,max=200" example:"Annual health check"`
	Description     *string `json:"description" binding:"omitempty,max=2000"`
	ScheduledDate   string  `json:"scheduled_date" binding:"required,datetime=2006-01-02" example:"2025-10-01"`
	ScheduledTime   *string `json:"scheduled_time" binding:"omitempty,datetime=15:04" example:"08:30"`
	Location        *string `json:"location" binding:"omitempty,max=200"`
	TargetType      string  `json:"target_type" binding:"required,oneof=grade student" example:"grade"`
	GradeLevels     []int   `json:"grade_levels" binding:"required_if=TargetType grade,omitempty,dive,min=1,max=12"`
	StudentID       *int64  `json:"student_id" binding:"required_if=TargetType student,omitempty,gt=0"`
	ExaminationType *string `json:"examination_type" binding:"omitempty,max=100"`
	VaccineName     *string `json:"vaccine_name" binding:"omitempty,max=150"`
	DoseNumber      *int    `json:"dose_number" binding:"omitempty,min=1,max=10"`
}

// UpdateStatusRequest is a parent response or a staff status change
type UpdateStatusRequest struct {
	Status              string  `json:"status" binding:"required,schedule_status" example:"Approved"`
	ParentResponseNotes *string `json:"parent_response_notes" binding:"omitempty,max=2000"`
	RejectionReason     *string `json:"rejection_reason" binding:"omitempty,max=2000"`
}

// UpdateResultRequest records the outcome of an examination or vaccination
type UpdateResultRequest struct {
	HealthResult     *string `json:"health_result" binding:"omitempty,max=2000"`
	ExaminationNotes *string `json:"examination_notes" binding:"omitempty,max=4000"`
	Recommendations  *string `json:"recommendations" binding:"omitempty,max=4000"`
	FollowUpRequired *bool   `json:"follow_up_required"`
	FollowUpDate     *string `json:"follow_up_date" binding:"omitempty,datetime=2006-01-02"`
}

// CampaignCreatedResponse reports the fan-out result
type CampaignCreatedResponse struct {
	Campaign     *models.Campaign `json:"campaign"`
	CreatedCount int              `json:"created_count" example:"5"`
}

// EventSummary is a campaign with its status tally
type EventSummary struct {
	Campaign *models.Campaign    `json:"campaign"`
	Counts   models.StatusCounts `json:"counts"`
	Total    int                 `json:"total"`
}

// ClassSummary is the tally of one class within an event
type ClassSummary struct {
	ClassID   int64               `json:"classId"`
	ClassName string              `json:"className"`
	Counts    models.StatusCounts `json:"counts"`
	Total     int                 `json:"total"`
}

// EventDetail is the event-level view
type EventDetail struct {
	EventID  uuid.UUID           `json:"eventId"`
	Campaign *models.Campaign    `json:"campaign"`
	Counts   models.StatusCounts `json:"counts"`
	Total    int                 `json:"total"`
	Classes  []ClassSummary      `json:"classes"`
}

// ClassDetail is the per-class view with every student row
type ClassDetail struct {
	EventID   uuid.UUID           `json:"eventId"`
	ClassID   int64               `json:"classId"`
	ClassName string              `json:"className"`
	Counts    models.StatusCounts `json:"counts"`
	Total     int                 `json:"total"`
	Schedules []*models.Schedule  `json:"schedules"`
}
