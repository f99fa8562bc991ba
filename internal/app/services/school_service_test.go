package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/app/repositories/memstore"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/auth"
)

func TestStudentService_CreateChecksReferences(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent := f.addUser(t, models.RoleParent, "p@example.com")
	staff := f.addUser(t, models.RoleStaff, "s@example.com")
	class := f.addClass(t, "4C", 4)
	ctx := context.Background()

	st, err := f.students.CreateStudent(ctx, &dto.StudentRequest{
		StudentCode: "hs0001",
		FullName:    "Lan Nguyen",
		BirthDate:   strPtr("2016-05-04"),
		Gender:      "FEMALE",
		ClassID:     &class.ID,
		ParentID:    &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "HS0001", st.StudentCode)
	assert.Equal(t, 4, st.GradeLevel)
	assert.Equal(t, "4C", st.ClassName)

	_, err = f.students.CreateStudent(ctx, &dto.StudentRequest{StudentCode: "HS0001", FullName: "Dup", Gender: "MALE"})
	assert.ErrorIs(t, err, apperrors.ErrStudentCodeAlreadyExists)

	missing := int64(999)
	_, err = f.students.CreateStudent(ctx, &dto.StudentRequest{StudentCode: "HS0002", FullName: "No Class", Gender: "MALE", ClassID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)

	_, err = f.students.CreateStudent(ctx, &dto.StudentRequest{StudentCode: "HS0003", FullName: "Staff Parent", Gender: "MALE", ParentID: &staff.ID})
	assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)
}

func TestStudentService_PaginatedList(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	f.seedSchool(t)

	page, err := f.students.GetStudents(context.Background(), StudentListParams{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(8), page.Pagination.TotalItems)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Len(t, page.Items, 3)

	filtered, err := f.students.GetStudents(context.Background(), StudentListParams{Search: "hsb", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.Pagination.TotalItems)
}

func TestStudentService_DeleteDoesNotCascade(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent, grade2 := f.seedSchool(t)
	ctx := context.Background()

	_, err := f.records.Create(ctx, staffActor(1), &dto.HealthRecordRequest{StudentID: grade2[0].ID, Allergies: []string{"peanuts"}})
	require.NoError(t, err)
	_, err = f.examinations.Create(ctx, gradeCampaign(2), 1)
	require.NoError(t, err)

	require.NoError(t, f.students.DeleteStudent(ctx, grade2[0].ID))

	record, err := f.records.GetByStudent(ctx, grade2[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"peanuts"}, record.Allergies)

	rows, err := f.examinations.GetByStudent(ctx, grade2[0].ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.students.GetStudentByID(ctx, parentActor(parent.ID), grade2[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestHealthRecordService_OnePerStudent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	_, grade2 := f.seedSchool(t)
	ctx := context.Background()

	req := &dto.HealthRecordRequest{StudentID: grade2[0].ID, Allergies: []string{" dust ", ""}}
	record, err := f.records.Create(ctx, staffActor(5), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"dust"}, record.Allergies)
	require.NotNil(t, record.UpdatedBy)
	assert.Equal(t, int64(5), *record.UpdatedBy)

	_, err = f.records.Create(ctx, staffActor(5), req)
	assert.ErrorIs(t, err, apperrors.ErrHealthRecordAlreadyExists)

	_, err = f.records.Create(ctx, staffActor(5), &dto.HealthRecordRequest{StudentID: 4242})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = f.records.Update(ctx, staffActor(5), record.ID, &dto.HealthRecordRequest{StudentID: grade2[1].ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestTreatmentService_DefaultsStaffToCaller(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	_, grade2 := f.seedSchool(t)
	ctx := context.Background()

	entry, err := f.treatments.Create(ctx, staffActor(31), &dto.TreatmentHistoryRequest{
		StudentID:   grade2[0].ID,
		TreatedAt:   strPtr("2025-10-03"),
		Description: "Scraped knee cleaned and bandaged",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(31), entry.StaffID)
	assert.Equal(t, "2025-10-03", entry.TreatedAt.Format("2006-01-02"))

	other, err := f.records.Create(ctx, staffActor(31), &dto.HealthRecordRequest{StudentID: grade2[1].ID})
	require.NoError(t, err)
	_, err = f.treatments.Create(ctx, staffActor(31), &dto.TreatmentHistoryRequest{
		StudentID: grade2[0].ID, RecordID: &other.ID, Description: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	list, err := f.treatments.GetByStudent(ctx, grade2[0].ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFeedbackService_RespondNotifiesParent(t *testing.T) {
	f := newFixture(t, WorkflowOptions{})
	parent := f.addUser(t, models.RoleParent, "p@example.com")
	other := f.addUser(t, models.RoleParent, "o@example.com")
	ctx := context.Background()

	fb, err := f.feedbacks.Create(ctx, parentActor(parent.ID), &dto.FeedbackRequest{
		ParentID:    &other.ID,
		Title:       "Medicine timing",
		Description: "Could the noon dose be given before lunch?",
		Category:    "Medicine",
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, fb.ParentID, "parents always submit as themselves")
	assert.Equal(t, "medicine", fb.Category)

	_, err = f.feedbacks.GetByID(ctx, parentActor(other.ID), fb.ID)
	assert.ErrorIs(t, err, apperrors.ErrFeedbackNotFound)

	answered, err := f.feedbacks.Respond(ctx, staffActor(8), fb.ID, &dto.RespondFeedbackRequest{Response: "Yes, from tomorrow."})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackResponded, answered.Status)
	assert.Equal(t, int64(8), *answered.ResponderID)

	_, err = f.feedbacks.Update(ctx, parentActor(parent.ID), fb.ID, &dto.FeedbackRequest{Title: "t", Description: "d", Category: "c"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, err := f.notifications.GetByParent(ctx, parent.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationFeedback, list[0].Type)
}

func TestAuthService_Login(t *testing.T) {
	store := memstore.New()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	accounts := NewAccountService(models.RoleStaff, store.Users(), store.Students(), zerolog.Nop())
	authService := NewAuthService(store.Users(), jwtService, zerolog.Nop())
	ctx := context.Background()

	user, err := accounts.Create(ctx, &dto.CreateAccountRequest{Email: "Nurse@School.edu", Password: "Password123", FullName: "Nurse"})
	require.NoError(t, err)
	assert.Equal(t, "nurse@school.edu", user.Email)

	resp, err := authService.Login(ctx, &dto.LoginRequest{Email: "nurse@school.edu", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	claims, err := jwtService.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(models.RoleStaff), claims.RoleType)

	_, err = authService.Login(ctx, &dto.LoginRequest{Email: "nurse@school.edu", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = authService.Login(ctx, &dto.LoginRequest{Email: "nobody@school.edu", Password: "Password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	inactive := false
	_, err = accounts.Update(ctx, user.ID, &dto.UpdateAccountRequest{Email: user.Email, FullName: "Nurse", IsActive: &inactive})
	require.NoError(t, err)
	_, err = authService.Login(ctx, &dto.LoginRequest{Email: "nurse@school.edu", Password: "Password123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAccountService_RoleScoped(t *testing.T) {
	store := memstore.New()
	parents := NewAccountService(models.RoleParent, store.Users(), store.Students(), zerolog.Nop())
	staff := NewAccountService(models.RoleStaff, store.Users(), store.Students(), zerolog.Nop())
	ctx := context.Background()

	p, err := parents.Create(ctx, &dto.CreateAccountRequest{Email: "p@example.com", Password: "Password123", FullName: "Parent"})
	require.NoError(t, err)

	_, err = staff.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrStaffNotFound)

	_, err = parents.Create(ctx, &dto.CreateAccountRequest{Email: "P@example.com", Password: "Password123", FullName: "Again"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	all, err := parents.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	children, err := parents.Children(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	require.NoError(t, parents.Delete(ctx, p.ID))
	assert.ErrorIs(t, parents.Delete(ctx, p.ID), apperrors.ErrParentNotFound)
}
