package models

import "time"

// User is an account: admins, school-health staff and parents share the users table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"parent@example.com"`
	Password    string     `json:"-" db:"password"`
	FullName    string     `json:"fullName" db:"full_name" example:"Jane Doe"`
	Phone       *string    `json:"phone,omitempty" db:"phone" example:"+84901234567"`
	Address     *string    `json:"address,omitempty" db:"address"`
	Position    *string    `json:"position,omitempty" db:"position" example:"School nurse"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"PARENT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
