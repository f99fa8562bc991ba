package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin  RoleType = "ADMIN"
	RoleStaff  RoleType = "STAFF"
	RoleParent RoleType = "PARENT"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleParent:
		return true
	}
	return false
}

// Gender of a student
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)
