package dto

import (
	"net/http"
	"time"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	StatusCode int          `json:"statusCode" example:"200"`
	Message    string       `json:"message,omitempty" example:"OK"`
	Data       interface{}  `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	Timestamp  time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in the envelope
func NewSuccessResponse(statusCode int, message string, data interface{}) APIResponse {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return APIResponse{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now(),
	}
}

// PaginationInfo describes one page of a list
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// PaginatedResponse is a page of items with its metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// CountResponse carries a single count
type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}
