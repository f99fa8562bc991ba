package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories"
)

// The store interfaces below are satisfied by the pgx repositories and by
// the in-memory stores used in tests.

// UserStore persists accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.RoleType) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

// ClassStore persists classes
type ClassStore interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	List(ctx context.Context) ([]*models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// StudentStore persists students
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error)
	ListByParent(ctx context.Context, parentID int64) ([]*models.Student, error)
	ListByClass(ctx context.Context, classID int64) ([]*models.Student, error)
	ListByGradeLevels(ctx context.Context, gradeLevels []int) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// HealthRecordStore persists health records
type HealthRecordStore interface {
	Create(ctx context.Context, record *models.HealthRecord) error
	GetByID(ctx context.Context, id int64) (*models.HealthRecord, error)
	GetByStudentID(ctx context.Context, studentID int64) (*models.HealthRecord, error)
	List(ctx context.Context) ([]*models.HealthRecord, error)
	Update(ctx context.Context, record *models.HealthRecord) error
	Delete(ctx context.Context, id int64) error
}

// TreatmentStore persists treatment history entries
type TreatmentStore interface {
	Create(ctx context.Context, entry *models.TreatmentHistory) error
	GetByID(ctx context.Context, id int64) (*models.TreatmentHistory, error)
	List(ctx context.Context, studentID *int64) ([]*models.TreatmentHistory, error)
	Delete(ctx context.Context, id int64) error
}

// MedicineStore persists medicine storage items
type MedicineStore interface {
	Create(ctx context.Context, medicine *models.Medicine) error
	GetByID(ctx context.Context, id int64) (*models.Medicine, error)
	List(ctx context.Context) ([]*models.Medicine, error)
	Update(ctx context.Context, medicine *models.Medicine) error
	Delete(ctx context.Context, id int64) error
}

// DeliveryStore persists medicine deliveries
type DeliveryStore interface {
	Create(ctx context.Context, d *models.MedicineDelivery) error
	GetByID(ctx context.Context, id int64) (*models.MedicineDelivery, error)
	ListAll(ctx context.Context) ([]*models.MedicineDelivery, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.MedicineDelivery, error)
	ListByParent(ctx context.Context, parentID int64) ([]*models.MedicineDelivery, error)
	Update(ctx context.Context, d *models.MedicineDelivery) error
	UpdateStatus(ctx context.Context, id int64, status models.DeliveryStatus, staffID *int64, reason *string) (*models.MedicineDelivery, error)
	Delete(ctx context.Context, id int64) error
}

// CampaignStore persists campaigns and their per-student schedules
type CampaignStore interface {
	CreateWithSchedules(ctx context.Context, campaign *models.Campaign, schedules []*models.Schedule) ([]*models.Schedule, error)
	GetCampaign(ctx context.Context, kind models.CampaignKind, eventID uuid.UUID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, kind models.CampaignKind) ([]*models.Campaign, error)
	ListSchedules(ctx context.Context, filter repositories.ScheduleFilter) ([]*models.Schedule, error)
	GetSchedule(ctx context.Context, kind models.CampaignKind, id int64) (*models.Schedule, error)
	UpdateScheduleStatus(ctx context.Context, kind models.CampaignKind, id int64, update repositories.StatusUpdate) (*models.Schedule, error)
	UpdateScheduleResult(ctx context.Context, kind models.CampaignKind, id int64, update repositories.ResultUpdate) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, kind models.CampaignKind, id int64) error
	DeleteEvent(ctx context.Context, kind models.CampaignKind, eventID uuid.UUID) (int64, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	ListAll(ctx context.Context) ([]*models.Notification, error)
	ListByParent(ctx context.Context, parentID int64, unreadOnly bool) ([]*models.Notification, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, id int64) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, parentID int64) (int64, error)
	CountUnread(ctx context.Context, parentID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// FeedbackStore persists parent feedback
type FeedbackStore interface {
	Create(ctx context.Context, f *models.Feedback) error
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	List(ctx context.Context, parentID *int64) ([]*models.Feedback, error)
	Update(ctx context.Context, f *models.Feedback) error
	Respond(ctx context.Context, id int64, response string, responderID int64) (*models.Feedback, error)
	Delete(ctx context.Context, id int64) error
}

var (
	_ UserStore         = (*repositories.UserRepository)(nil)
	_ ClassStore        = (*repositories.ClassRepository)(nil)
	_ StudentStore      = (*repositories.StudentRepository)(nil)
	_ HealthRecordStore = (*repositories.HealthRecordRepository)(nil)
	_ TreatmentStore    = (*repositories.TreatmentHistoryRepository)(nil)
	_ MedicineStore     = (*repositories.MedicineRepository)(nil)
	_ DeliveryStore     = (*repositories.DeliveryRepository)(nil)
	_ CampaignStore     = (*repositories.CampaignRepository)(nil)
	_ NotificationStore = (*repositories.NotificationRepository)(nil)
	_ FeedbackStore     = (*repositories.FeedbackRepository)(nil)
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID int64
	Role   models.RoleType
}

// IsParent reports whether the actor acts as a parent
func (a Actor) IsParent() bool {
	return a.Role == models.RoleParent
}

// ownsStudent reports whether a parent actor is the student's parent
func (a Actor) ownsStudent(student *models.Student) bool {
	return student.ParentID != nil && *student.ParentID == a.UserID
}
