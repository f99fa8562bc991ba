package dto

import "github.com/eduhealth/schoolhealth/internal/app/models"

// LoginRequest is the email/password login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"nurse@school.edu"`
	Password string `json:"password" binding:"required" example:"Password123"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresIn   int          `json:"expiresIn" example:"86400"`
	User        *models.User `json:"user"`
}

// CreateAccountRequest creates a parent or staff account
type CreateAccountRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"fullName" binding:"required,min=2,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
	Position *string `json:"position" binding:"omitempty,max=100"`
}

// UpdateAccountRequest updates profile fields; password is optional
type UpdateAccountRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	FullName string  `json:"fullName" binding:"required,min=2,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
	Position *string `json:"position" binding:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
}
