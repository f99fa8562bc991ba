package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories/memstore"
)

type fixture struct {
	store         *memstore.Store
	notifications *NotificationService
	examinations  *CampaignService
	vaccinations  *CampaignService
	deliveries    *DeliveryService
	feedbacks     *FeedbackService
	students      *StudentService
	records       *HealthRecordService
	treatments    *TreatmentService
	dispatched    *recordingDispatcher
}

type recordingDispatcher struct {
	sent []*models.Notification
}

func (d *recordingDispatcher) Dispatch(n *models.Notification) {
	d.sent = append(d.sent, n)
}

func newFixture(t *testing.T, options WorkflowOptions) *fixture {
	t.Helper()
	store := memstore.New()
	log := zerolog.Nop()
	dispatcher := &recordingDispatcher{}

	notifications := NewNotificationService(store.Notifications(), store.Users(), store.Students(), dispatcher, log)
	return &fixture{
		store:         store,
		notifications: notifications,
		examinations:  NewCampaignService(models.KindHealthExamination, store.Campaigns(), store.Students(), notifications, options, log),
		vaccinations:  NewCampaignService(models.KindVaccination, store.Campaigns(), store.Students(), notifications, options, log),
		deliveries:    NewDeliveryService(store.Deliveries(), store.Students(), notifications, options, log),
		feedbacks:     NewFeedbackService(store.Feedbacks(), store.Users(), notifications, log),
		students:      NewStudentService(store.Students(), store.Classes(), store.Users(), log),
		records:       NewHealthRecordService(store.HealthRecords(), store.Students(), log),
		treatments:    NewTreatmentService(store.Treatments(), store.Students(), store.HealthRecords(), log),
		dispatched:    dispatcher,
	}
}

func (f *fixture) addUser(t *testing.T, role models.RoleType, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: email, RoleType: role, IsActive: true}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) addClass(t *testing.T, name string, grade int) *models.Class {
	t.Helper()
	c := &models.Class{Name: name, GradeLevel: grade, AcademicYear: "2025-2026"}
	require.NoError(t, f.store.Classes().Create(context.Background(), c))
	return c
}

func (f *fixture) addStudent(t *testing.T, code string, classID, parentID *int64) *models.Student {
	t.Helper()
	st := &models.Student{
		StudentCode: code,
		FullName:    "Student " + code,
		Gender:      models.GenderFemale,
		ClassID:     classID,
		ParentID:    parentID,
	}
	require.NoError(t, f.store.Students().Create(context.Background(), st))
	return st
}

// seedSchool creates 5 students in grade 2 (split over two classes) and 3 in
// other grades, all belonging to one parent.
func (f *fixture) seedSchool(t *testing.T) (parent *models.User, grade2 []*models.Student) {
	t.Helper()
	parent = f.addUser(t, models.RoleParent, "parent@example.com")

	c2a := f.addClass(t, "2A", 2)
	c2b := f.addClass(t, "2B", 2)
	c1a := f.addClass(t, "1A", 1)
	c3a := f.addClass(t, "3A", 3)

	for i := 0; i < 3; i++ {
		grade2 = append(grade2, f.addStudent(t, fmt.Sprintf("HSA%03d", i), &c2a.ID, &parent.ID))
	}
	for i := 0; i < 2; i++ {
		grade2 = append(grade2, f.addStudent(t, fmt.Sprintf("HSB%03d", i), &c2b.ID, &parent.ID))
	}
	f.addStudent(t, "HSC001", &c1a.ID, &parent.ID)
	f.addStudent(t, "HSC002", &c1a.ID, &parent.ID)
	f.addStudent(t, "HSD001", &c3a.ID, &parent.ID)
	return parent, grade2
}

func staffActor(id int64) Actor {
	return Actor{UserID: id, Role: models.RoleStaff}
}

func parentActor(id int64) Actor {
	return Actor{UserID: id, Role: models.RoleParent}
}

func strPtr(s string) *string { return &s }
