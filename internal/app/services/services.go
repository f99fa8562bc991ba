package services

import (
	"github.com/rs/zerolog"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories"
	"github.com/eduhealth/schoolhealth/internal/pkg/auth"
)

// Services defined in this package:
// - AuthService: login and current account
// - AccountService: parent and staff accounts
// - ClassService, StudentService: school structure
// - HealthRecordService, TreatmentService, MedicineService, DeliveryService: health office
// - CampaignService: health examination and vaccination workflow, one per kind
// - NotificationService: parent notifications, pushed by the NotificationDispatcher
// - FeedbackService: parent feedback
type Services struct {
	Auth          *AuthService
	Parents       AccountService
	Staff         AccountService
	Classes       *ClassService
	Students      *StudentService
	HealthRecords *HealthRecordService
	Treatments    *TreatmentService
	Medicines     *MedicineService
	Deliveries    *DeliveryService
	Examinations  *CampaignService
	Vaccinations  *CampaignService
	Notifications *NotificationService
	Feedbacks     *FeedbackService
}

// NewServices wires every service on top of the repositories
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	dispatcher Dispatcher,
	options WorkflowOptions,
	logger zerolog.Logger,
) *Services {
	notifications := NewNotificationService(repos.NotificationRepository, repos.UserRepository, repos.StudentRepository, dispatcher, logger)

	return &Services{
		Auth:          NewAuthService(repos.UserRepository, jwtService, logger),
		Parents:       NewAccountService(models.RoleParent, repos.UserRepository, repos.StudentRepository, logger),
		Staff:         NewAccountService(models.RoleStaff, repos.UserRepository, repos.StudentRepository, logger),
		Classes:       NewClassService(repos.ClassRepository, repos.StudentRepository),
		Students:      NewStudentService(repos.StudentRepository, repos.ClassRepository, repos.UserRepository, logger),
		HealthRecords: NewHealthRecordService(repos.HealthRecordRepository, repos.StudentRepository, logger),
		Treatments:    NewTreatmentService(repos.TreatmentHistoryRepository, repos.StudentRepository, repos.HealthRecordRepository, logger),
		Medicines:     NewMedicineService(repos.MedicineRepository),
		Deliveries:    NewDeliveryService(repos.DeliveryRepository, repos.StudentRepository, notifications, options, logger),
		Examinations:  NewCampaignService(models.KindHealthExamination, repos.CampaignRepository, repos.StudentRepository, notifications, options, logger),
		Vaccinations:  NewCampaignService(models.KindVaccination, repos.CampaignRepository, repos.StudentRepository, notifications, options, logger),
		Notifications: notifications,
		Feedbacks:     NewFeedbackService(repos.FeedbackRepository, repos.UserRepository, notifications, logger),
	}
}
