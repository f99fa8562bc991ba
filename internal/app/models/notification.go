package models

import "time"

// NotificationType tags what a notification is about
type NotificationType string

const (
	NotificationHealthExamination NotificationType = "HEALTH_EXAMINATION"
	NotificationVaccination       NotificationType = "VACCINATION"
	NotificationMedicalEvent      NotificationType = "MEDICAL_EVENT"
	NotificationMedicineDelivery  NotificationType = "MEDICINE_DELIVERY"
	NotificationConsultation      NotificationType = "CONSULTATION"
	NotificationFeedback          NotificationType = "FEEDBACK"
	NotificationGeneral           NotificationType = "GENERAL"
)

// NotificationTypeForKind maps a campaign kind to its notification tag
func NotificationTypeForKind(kind CampaignKind) NotificationType {
	if kind == KindVaccination {
		return NotificationVaccination
	}
	return NotificationHealthExamination
}

// Notification is a message for a parent, optionally about one of their children
type Notification struct {
	ID          int64            `json:"id" db:"id"`
	ParentID    int64            `json:"parentId" db:"parent_id"`
	StudentID   *int64           `json:"studentId,omitempty" db:"student_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Content     string           `json:"content" db:"content"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	IsRead      bool             `json:"isRead" db:"is_read"`
	RelatedType *string          `json:"relatedType,omitempty" db:"related_type"`
	RelatedID   *int64           `json:"relatedId,omitempty" db:"related_id"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}
