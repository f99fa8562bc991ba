package models

import "time"

// Class is a homeroom class; GradeLevel drives campaign targeting
type Class struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name" example:"2A"`
	GradeLevel      int       `json:"gradeLevel" db:"grade_level" example:"2"`
	AcademicYear    string    `json:"academicYear" db:"academic_year" example:"2025-2026"`
	HomeroomTeacher *string   `json:"homeroomTeacher,omitempty" db:"homeroom_teacher"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Student references its class and parent by ID; deleting either leaves the student in place
type Student struct {
	ID          int64      `json:"id" db:"id"`
	StudentCode string     `json:"studentCode" db:"student_code" example:"HS0001"`
	FullName    string     `json:"fullName" db:"full_name"`
	BirthDate   *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	Gender      Gender     `json:"gender" db:"gender"`
	ClassID     *int64     `json:"classId,omitempty" db:"class_id"`
	ParentID    *int64     `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Filled by joins
	ClassName  string `json:"className,omitempty"`
	GradeLevel int    `json:"gradeLevel,omitempty"`
}
