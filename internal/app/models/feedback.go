package models

import "time"

// FeedbackStatus is pending until staff respond
type FeedbackStatus string

const (
	FeedbackPending   FeedbackStatus = "pending"
	FeedbackResponded FeedbackStatus = "responded"
)

// Feedback is a parent's suggestion or complaint
type Feedback struct {
	ID          int64          `json:"id" db:"id"`
	ParentID    int64          `json:"parentId" db:"parent_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Category    string         `json:"category" db:"category" example:"medicine"`
	Status      FeedbackStatus `json:"status" db:"status"`
	Response    *string        `json:"response,omitempty" db:"response"`
	ResponderID *int64         `json:"responderId,omitempty" db:"responder_id"`
	RespondedAt *time.Time     `json:"respondedAt,omitempty" db:"responded_at"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}
