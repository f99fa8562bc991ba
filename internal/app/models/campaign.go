package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignKind selects which workflow a campaign belongs to
type CampaignKind string

const (
	KindHealthExamination CampaignKind = "HEALTH_EXAMINATION"
	KindVaccination       CampaignKind = "VACCINATION"
)

// TargetType tells how a campaign resolves its students
type TargetType string

const (
	TargetGrade   TargetType = "grade"
	TargetStudent TargetType = "student"
)

// ScheduleStatus is the per-student state of a campaign
type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "Pending"
	StatusApproved  ScheduleStatus = "Approved"
	StatusRejected  ScheduleStatus = "Rejected"
	StatusCompleted ScheduleStatus = "Completed"
	StatusCancelled ScheduleStatus = "Cancelled"
)

// AllScheduleStatuses in display order
var AllScheduleStatuses = []ScheduleStatus{
	StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled,
}

var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is a known schedule status
func (s ScheduleStatus) IsValid() bool {
	for _, known := range AllScheduleStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s ScheduleStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the state machine allows s -> next.
// Re-applying the current status is allowed.
func (s ScheduleStatus) CanTransition(next ScheduleStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range scheduleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Campaign is a staff-initiated examination or vaccination event
type Campaign struct {
	ID              int64        `json:"id" db:"id"`
	EventID         uuid.UUID    `json:"eventId" db:"event_id"`
	Kind            CampaignKind `json:"kind" db:"kind"`
	Title           string       `json:"title" db:"title"`
	Description     *string      `json:"description,omitempty" db:"description"`
	ScheduledAt     time.Time    `json:"scheduledAt" db:"scheduled_at"`
	Location        *string      `json:"location,omitempty" db:"location"`
	TargetType      TargetType   `json:"targetType" db:"target_type"`
	GradeLevels     []int        `json:"gradeLevels,omitempty" db:"grade_levels"`
	StudentID       *int64       `json:"studentId,omitempty" db:"student_id"`
	ExaminationType *string      `json:"examinationType,omitempty" db:"examination_type"`
	VaccineName     *string      `json:"vaccineName,omitempty" db:"vaccine_name"`
	DoseNumber      *int         `json:"doseNumber,omitempty" db:"dose_number"`
	CreatedBy       int64        `json:"createdBy" db:"created_by"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
}

// Schedule is one student's instance of a campaign
type Schedule struct {
	ID                  int64          `json:"id" db:"id"`
	CampaignID          int64          `json:"campaignId" db:"campaign_id"`
	EventID             uuid.UUID      `json:"eventId" db:"event_id"`
	Kind                CampaignKind   `json:"kind" db:"kind"`
	StudentID           int64          `json:"studentId" db:"student_id"`
	ClassID             *int64         `json:"classId,omitempty" db:"class_id"`
	ParentID            *int64         `json:"parentId,omitempty" db:"parent_id"`
	Title               string         `json:"title" db:"title"`
	ScheduledAt         time.Time      `json:"scheduledAt" db:"scheduled_at"`
	Status              ScheduleStatus `json:"status" db:"status"`
	ParentResponseNotes *string        `json:"parentResponseNotes,omitempty" db:"parent_response_notes"`
	RejectionReason     *string        `json:"rejectionReason,omitempty" db:"rejection_reason"`
	HealthResult        *string        `json:"healthResult,omitempty" db:"health_result"`
	ExaminationNotes    *string        `json:"examinationNotes,omitempty" db:"examination_notes"`
	Recommendations     *string        `json:"recommendations,omitempty" db:"recommendations"`
	FollowUpRequired    bool           `json:"followUpRequired" db:"follow_up_required"`
	FollowUpDate        *time.Time     `json:"followUpDate,omitempty" db:"follow_up_date"`
	CreatedBy           int64          `json:"createdBy" db:"created_by"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time      `json:"updatedAt" db:"updated_at"`

	// Filled by joins
	StudentName string `json:"studentName,omitempty"`
	ClassName   string `json:"className,omitempty"`
}

// StatusCounts tallies schedules per status
type StatusCounts map[ScheduleStatus]int

// Total sums all counts
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// CountStatuses tallies the given schedules, always reporting every known status
func CountStatuses(schedules []*Schedule) StatusCounts {
	counts := make(StatusCounts, len(AllScheduleStatuses))
	for _, s := range AllScheduleStatuses {
		counts[s] = 0
	}
	for _, s := range schedules {
		counts[s.Status]++
	}
	return counts
}
