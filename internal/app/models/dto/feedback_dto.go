package dto

// FeedbackRequest creates or edits a parent's feedback
type FeedbackRequest struct {
	ParentID    *int64 `json:"parentId" binding:"omitempty,gt=0"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=4000"`
	Category    string `json:"category" binding:"required,max=50" example:"medicine"`
}

// RespondFeedbackRequest attaches a staff response
type RespondFeedbackRequest struct {
	Response string `json:"response" binding:"required,max=4000"`
}
