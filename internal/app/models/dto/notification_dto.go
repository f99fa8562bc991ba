package dto

// CreateNotificationRequest creates a notification for a parent
type CreateNotificationRequest struct {
	ParentID    int64   `json:"parentId" binding:"required,gt=0"`
	StudentID   *int64  `json:"studentId" binding:"omitempty,gt=0"`
	Type        string  `json:"type" binding:"required,max=30" example:"MEDICAL_EVENT"`
	Title       string  `json:"title" binding:"required,max=200"`
	Content     string  `json:"content" binding:"required,max=4000"`
	Notes       *string `json:"notes" binding:"omitempty,max=2000"`
	RelatedType *string `json:"relatedType" binding:"omitempty,max=50"`
	RelatedID   *int64  `json:"relatedId" binding:"omitempty,gt=0"`
}
