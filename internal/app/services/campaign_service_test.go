package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
)

func gradeCampaign(grades ...int) *dto.CreateCampaignRequest {
	return &dto.CreateCampaignRequest{
		Title:         "Annual health check",
		ScheduledDate: "2025-10-01",
		ScheduledTime: strPtr("08:30"),
		Location:      strPtr("Nurse office"),
		TargetType:    "grade",
		GradeLevels:   grades,
	}
}

func TestCampaignService_CreateByGradeFansOutPerStudent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	_, grade2 := f.seedSchool(t)
	ctx := context.Background()

	res, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CreatedCount)
	assert.Equal(t, models.KindHealthExamination, res.Campaign.Kind)
	assert.Equal(t, []int{2}, res.Campaign.GradeLevels)
	assert.Equal(t, "2025-10-01T08:30:00Z", res.Campaign.ScheduledAt.Format("2006-01-02T15:04:05Z07:00"))

	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	wantStudents := map[int64]bool{}
	for _, st := range grade2 {
		wantStudents[st.ID] = true
	}
	for _, row := range rows {
		assert.Equal(t, models.StatusPending, row.Status)
		assert.Equal(t, res.Campaign.EventID, row.EventID)
		assert.True(t, wantStudents[row.StudentID], "student %d is not in grade 2", row.StudentID)
	}
}

func TestCampaignService_CreateNotifiesEachParent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, _ := f.seedSchool(t)
	ctx := context.Background()

	_, err := f.vaccinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)

	list, err := f.notifications.GetByParent(ctx, parent.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for _, n := range list {
		assert.Equal(t, models.NotificationVaccination, n.Type)
		assert.False(t, n.IsRead)
		require.NotNil(t, n.StudentID)
	}
	assert.Len(t, f.dispatched.sent, 5)
}

func TestCampaignService_CreateSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	f.store.FailNotifications = true

	res, err := f.examinations.Create(context.Background(), gradeCampaign(2), 99)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CreatedCount)
}

func TestCampaignService_CreateForSingleStudent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	_, grade2 := f.seedSchool(t)

	req := &dto.CreateCampaignRequest{
		Title:         "Measles booster",
		ScheduledDate: "2025-11-02",
		TargetType:    "student",
		StudentID:     &grade2[0].ID,
		VaccineName:   strPtr("MMR"),
	}
	res, err := f.vaccinations.Create(context.Background(), req, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CreatedCount)
	assert.Equal(t, "MMR", *res.Campaign.VaccineName)
	assert.Nil(t, res.Campaign.GradeLevels)
}

func TestCampaignService_CreateWithoutTargets(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(9), 99)
	assert.ErrorIs(t, err, apperrors.ErrNoTargetStudents)

	missing := int64(12345)
	_, err = f.examinations.Create(ctx, &dto.CreateCampaignRequest{
		Title: "x", ScheduledDate: "2025-10-01", TargetType: "student", StudentID: &missing,
	}, 99)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = f.examinations.Create(ctx, &dto.CreateCampaignRequest{
		Title: "x", ScheduledDate: "10/01/2025", TargetType: "grade", GradeLevels: []int{2},
	}, 99)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCampaignService_KindsAreSeparate(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	res, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)

	rows, err := f.vaccinations.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.vaccinations.GetEventDetail(ctx, res.Campaign.EventID)
	assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)
}

func TestCampaignService_UpdateStatusOverwritesByDefault(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	id := rows[0].ID

	staff := staffActor(99)
	for _, status := range []models.ScheduleStatus{models.StatusApproved, models.StatusCompleted, models.StatusPending} {
		row, err := f.examinations.UpdateStatus(ctx, staff, id, &dto.UpdateStatusRequest{Status: string(status)})
		require.NoError(t, err)
		assert.Equal(t, status, row.Status)
	}
}

func TestCampaignService_StrictTransitions(t *testing.T) {
	f := newFixture(t, WorkflowOptions{StrictTransitions: true})
	f.seedSchool(t)
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	id := rows[0].ID
	staff := staffActor(99)

	_, err = f.examinations.UpdateStatus(ctx, staff, id, &dto.UpdateStatusRequest{Status: "Completed"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = f.examinations.UpdateStatus(ctx, staff, id, &dto.UpdateStatusRequest{Status: "Approved"})
	require.NoError(t, err)
	_, err = f.examinations.UpdateStatus(ctx, staff, id, &dto.UpdateStatusRequest{Status: "Completed"})
	require.NoError(t, err)

	_, err = f.examinations.UpdateStatus(ctx, staff, id, &dto.UpdateStatusRequest{Status: "Pending"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	row, err := f.examinations.GetByID(ctx, staff, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, row.Status)
}

func TestCampaignService_ParentResponse(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, _ := f.seedSchool(t)
	other := f.addUser(t, models.RoleParent, "other@example.com")
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	rows, err := f.examinations.GetByParent(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	id := rows[0].ID

	row, err := f.examinations.UpdateStatus(ctx, parentActor(parent.ID), id, &dto.UpdateStatusRequest{
		Status:              "Approved",
		ParentResponseNotes: strPtr("Allergic to latex"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, row.Status)
	require.NotNil(t, row.ParentResponseNotes)
	assert.Equal(t, "Allergic to latex", *row.ParentResponseNotes)

	_, err = f.examinations.UpdateStatus(ctx, parentActor(parent.ID), id, &dto.UpdateStatusRequest{Status: "Completed"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.examinations.UpdateStatus(ctx, parentActor(other.ID), id, &dto.UpdateStatusRequest{Status: "Rejected"})
	assert.ErrorIs(t, err, apperrors.ErrScheduleNotFound)
}

func TestCampaignService_UpdateResult(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	id := rows[0].ID

	followUp := true
	row, err := f.examinations.UpdateResult(ctx, id, &dto.UpdateResultRequest{
		HealthResult:     strPtr("Mild myopia"),
		Recommendations:  strPtr("See an eye doctor"),
		FollowUpRequired: &followUp,
		FollowUpDate:     strPtr("2025-12-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, row.Status)
	assert.Equal(t, "Mild myopia", *row.HealthResult)
	assert.True(t, row.FollowUpRequired)
	require.NotNil(t, row.FollowUpDate)
	assert.Equal(t, "2025-12-01", row.FollowUpDate.Format("2006-01-02"))

	row, err = f.examinations.UpdateResult(ctx, id, &dto.UpdateResultRequest{ExaminationNotes: strPtr("Recheck")})
	require.NoError(t, err)
	assert.Equal(t, "Mild myopia", *row.HealthResult)
	assert.Equal(t, "Recheck", *row.ExaminationNotes)

	_, err = f.examinations.UpdateResult(ctx, 424242, &dto.UpdateResultRequest{})
	assert.ErrorIs(t, err, apperrors.ErrScheduleNotFound)
}

func TestCampaignService_EventAndClassDetail(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	res, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	eventID := res.Campaign.EventID

	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	staff := staffActor(99)
	_, err = f.examinations.UpdateStatus(ctx, staff, rows[0].ID, &dto.UpdateStatusRequest{Status: "Approved"})
	require.NoError(t, err)
	_, err = f.examinations.UpdateStatus(ctx, staff, rows[1].ID, &dto.UpdateStatusRequest{Status: "Rejected"})
	require.NoError(t, err)

	detail, err := f.examinations.GetEventDetail(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 5, detail.Total)
	assert.Equal(t, 3, detail.Counts[models.StatusPending])
	assert.Equal(t, 1, detail.Counts[models.StatusApproved])
	assert.Equal(t, 1, detail.Counts[models.StatusRejected])
	assert.Equal(t, 0, detail.Counts[models.StatusCompleted])
	require.Len(t, detail.Classes, 2)
	assert.Equal(t, "2A", detail.Classes[0].ClassName)
	assert.Equal(t, 3, detail.Classes[0].Total)
	assert.Equal(t, "2B", detail.Classes[1].ClassName)
	assert.Equal(t, 2, detail.Classes[1].Total)

	classDetail, err := f.examinations.GetClassDetail(ctx, eventID, detail.Classes[1].ClassID)
	require.NoError(t, err)
	assert.Equal(t, "2B", classDetail.ClassName)
	assert.Equal(t, 2, classDetail.Total)
	assert.Len(t, classDetail.Schedules, 2)

	events, err := f.examinations.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].Total)
}

func TestCampaignService_DeleteEventOnlyRemovesItsRows(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)
	ctx := context.Background()

	first, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	second, err := f.examinations.Create(ctx, gradeCampaign(1, 3), 99)
	require.NoError(t, err)
	assert.Equal(t, 3, second.CreatedCount)

	deleted, err := f.examinations.DeleteEvent(ctx, first.Campaign.EventID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	rows, err := f.examinations.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, second.Campaign.EventID, row.EventID)
	}

	_, err = f.examinations.GetEventDetail(ctx, first.Campaign.EventID)
	assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)

	_, err = f.examinations.DeleteEvent(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)
}

func TestCampaignService_DeleteSingleRow(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	_, grade2 := f.seedSchool(t)
	ctx := context.Background()

	_, err := f.examinations.Create(ctx, gradeCampaign(2), 99)
	require.NoError(t, err)
	rows, err := f.examinations.GetByStudent(ctx, grade2[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, f.examinations.Delete(ctx, rows[0].ID))
	assert.ErrorIs(t, f.examinations.Delete(ctx, rows[0].ID), apperrors.ErrScheduleNotFound)

	all, err := f.examinations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
