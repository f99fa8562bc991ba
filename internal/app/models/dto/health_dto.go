package dto

// HealthRecordRequest creates or updates a student's health record
type HealthRecordRequest struct {
	StudentID         int64    `json:"studentId" binding:"required,gt=0"`
	Allergies         []string `json:"allergies" binding:"omitempty,dive,max=100"`
	ChronicConditions []string `json:"chronicConditions" binding:"omitempty,dive,max=100"`
	HeightCM          *float64 `json:"heightCm" binding:"omitempty,gt=0,lt=300"`
	WeightKG          *float64 `json:"weightKg" binding:"omitempty,gt=0,lt=500"`
	Vision            *string  `json:"vision" binding:"omitempty,max=50"`
	Hearing           *string  `json:"hearing" binding:"omitempty,max=50"`
	BloodType         *string  `json:"bloodType" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Notes             *string  `json:"notes" binding:"omitempty,max=2000"`
}

// TreatmentHistoryRequest appends a treatment entry; StaffID defaults to the caller
type TreatmentHistoryRequest struct {
	StudentID   int64   `json:"studentId" binding:"required,gt=0"`
	StaffID     *int64  `json:"staffId" binding:"omitempty,gt=0"`
	RecordID    *int64  `json:"recordId" binding:"omitempty,gt=0"`
	TreatedAt   *string `json:"treatedAt" binding:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" binding:"required,max=2000"`
	Notes       *string `json:"notes" binding:"omitempty,max=2000"`
}

// MedicineRequest creates or updates a storage item
type MedicineRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Quantity    int     `json:"quantity" binding:"min=0"`
	Unit        string  `json:"unit" binding:"required,max=30"`
	ExpiryDate  *string `json:"expiryDate" binding:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// MedicineDeliveryRequest is what a parent submits
type MedicineDeliveryRequest struct {
	StudentID    int64   `json:"studentId" binding:"required,gt=0"`
	ParentID     *int64  `json:"parentId" binding:"omitempty,gt=0"`
	MedicineName string  `json:"medicineName" binding:"required,max=150"`
	Total        int     `json:"total" binding:"required,gt=0"`
	PerDose      int     `json:"perDose" binding:"required,gt=0"`
	PerDay       int     `json:"perDay" binding:"required,gt=0"`
	Note         *string `json:"note" binding:"omitempty,max=1000"`
	SentAt       *string `json:"sentAt" binding:"omitempty,datetime=2006-01-02"`
	EndAt        *string `json:"endAt" binding:"omitempty,datetime=2006-01-02"`
}

// DeliveryStatusRequest moves a delivery through its workflow
type DeliveryStatusRequest struct {
	Status string  `json:"status" binding:"required,delivery_status" example:"approved"`
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}
