package models

import "time"

// HealthRecord holds the medical profile of a student; at most one per student
type HealthRecord struct {
	ID                int64     `json:"id" db:"id"`
	StudentID         int64     `json:"studentId" db:"student_id"`
	Allergies         []string  `json:"allergies" db:"allergies"`
	ChronicConditions []string  `json:"chronicConditions" db:"chronic_conditions"`
	HeightCM          *float64  `json:"heightCm,omitempty" db:"height_cm"`
	WeightKG          *float64  `json:"weightKg,omitempty" db:"weight_kg"`
	Vision            *string   `json:"vision,omitempty" db:"vision"`
	Hearing           *string   `json:"hearing,omitempty" db:"hearing"`
	BloodType         *string   `json:"bloodType,omitempty" db:"blood_type"`
	Notes             *string   `json:"notes,omitempty" db:"notes"`
	UpdatedBy         *int64    `json:"updatedBy,omitempty" db:"updated_by"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// TreatmentHistory is an append-only entry of care given to a student
type TreatmentHistory struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"studentId" db:"student_id"`
	StaffID     int64     `json:"staffId" db:"staff_id"`
	RecordID    *int64    `json:"recordId,omitempty" db:"record_id"`
	TreatedAt   time.Time `json:"treatedAt" db:"treated_at"`
	Description string    `json:"description" db:"description"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Medicine is an item kept in the school medicine storage
type Medicine struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name" example:"Paracetamol 500mg"`
	Quantity    int        `json:"quantity" db:"quantity"`
	Unit        string     `json:"unit" db:"unit" example:"tablet"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty" db:"expiry_date"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// DeliveryStatus of a parent's medicine delivery request
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryApproved  DeliveryStatus = "approved"
	DeliveryRejected  DeliveryStatus = "rejected"
	DeliveryCompleted DeliveryStatus = "completed"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:  {DeliveryApproved, DeliveryRejected, DeliveryCancelled},
	DeliveryApproved: {DeliveryCompleted, DeliveryCancelled},
}

// IsValid reports whether s is a known delivery status
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliveryApproved, DeliveryRejected, DeliveryCompleted, DeliveryCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a delivery may move from s to next.
// A parent may still withdraw a pending request, hence pending -> cancelled.
func (s DeliveryStatus) CanTransition(next DeliveryStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MedicineDelivery is medicine a parent hands over for staff to administer
type MedicineDelivery struct {
	ID           int64          `json:"id" db:"id"`
	StudentID    int64          `json:"studentId" db:"student_id"`
	ParentID     int64          `json:"parentId" db:"parent_id"`
	StaffID      *int64         `json:"staffId,omitempty" db:"staff_id"`
	MedicineName string         `json:"medicineName" db:"medicine_name"`
	Total        int            `json:"total" db:"total"`
	PerDose      int            `json:"perDose" db:"per_dose"`
	PerDay       int            `json:"perDay" db:"per_day"`
	Note         *string        `json:"note,omitempty" db:"note"`
	Reason       *string        `json:"reason,omitempty" db:"reason"`
	Status       DeliveryStatus `json:"status" db:"status"`
	SentAt       time.Time      `json:"sentAt" db:"sent_at"`
	EndAt        *time.Time     `json:"endAt,omitempty" db:"end_at"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}
