package repositories

import (
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// mapNoRows turns pgx.ErrNoRows into notFound
func mapNoRows(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository             *UserRepository
	ClassRepository            *ClassRepository
	StudentRepository          *StudentRepository
	HealthRecordRepository     *HealthRecordRepository
	TreatmentHistoryRepository *TreatmentHistoryRepository
	MedicineRepository         *MedicineRepository
	DeliveryRepository         *DeliveryRepository
	CampaignRepository         *CampaignRepository
	NotificationRepository     *NotificationRepository
	FeedbackRepository         *FeedbackRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:             NewUserRepository(db),
		ClassRepository:            NewClassRepository(db),
		StudentRepository:          NewStudentRepository(db),
		HealthRecordRepository:     NewHealthRecordRepository(db),
		TreatmentHistoryRepository: NewTreatmentHistoryRepository(db),
		MedicineRepository:         NewMedicineRepository(db),
		DeliveryRepository:         NewDeliveryRepository(db),
		CampaignRepository:         NewCampaignRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		FeedbackRepository:         NewFeedbackRepository(db),
	}
}
