package dto

// ClassRequest creates or updates a class
type ClassRequest struct {
	Name            string  `json:"name" binding:"required,max=50" example:"2A"`
	GradeLevel      int     `json:"gradeLevel" binding:"required,min=1,max=12" example:"2"`
	AcademicYear    string  `json:"academicYear" binding:"required,max=20" example:"2025-2026"`
	HomeroomTeacher *string `json:"homeroomTeacher" binding:"omitempty,max=100"`
}

// StudentRequest creates or updates a student
type StudentRequest struct {
	StudentCode string  `json:"studentCode" binding:"required,student_code" example:"HS0001"`
	FullName    string  `json:"fullName" binding:"required,min=2,max=100"`
	BirthDate   *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02" example:"2017-09-01"`
	Gender      string  `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	ClassID     *int64  `json:"classId" binding:"omitempty,gt=0"`
	ParentID    *int64  `json:"parentId" binding:"omitempty,gt=0"`
}
