package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/controllers"
	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories/memstore"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/middleware"
	"github.com/eduhealth/schoolhealth/internal/pkg/auth"
	"github.com/eduhealth/schoolhealth/internal/pkg/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

type testEnv struct {
	router *gin.Engine
	store  *memstore.Store
	jwt    *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	log := zerolog.Nop()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "schoolhealth-test",
	})

	options := services.WorkflowOptions{NotifyOnStatusChange: true}
	notifications := services.NewNotificationService(store.Notifications(), store.Users(), store.Students(), nil, log)

	c := &Controllers{
		Auth:          controllers.NewAuthController(services.NewAuthService(store.Users(), jwtService, log), log),
		Parents:       controllers.NewAccountController(services.NewAccountService(models.RoleParent, store.Users(), store.Students(), log)),
		Staff:         controllers.NewAccountController(services.NewAccountService(models.RoleStaff, store.Users(), store.Students(), log)),
		Classes:       controllers.NewClassController(services.NewClassService(store.Classes(), store.Students())),
		Students:      controllers.NewStudentController(services.NewStudentService(store.Students(), store.Classes(), store.Users(), log)),
		HealthRecords: controllers.NewHealthRecordController(services.NewHealthRecordService(store.HealthRecords(), store.Students(), log)),
		Treatments:    controllers.NewTreatmentController(services.NewTreatmentService(store.Treatments(), store.Students(), store.HealthRecords(), log)),
		Medicines:     controllers.NewMedicineController(services.NewMedicineService(store.Medicines())),
		Deliveries:    controllers.NewDeliveryController(services.NewDeliveryService(store.Deliveries(), store.Students(), notifications, options, log)),
		Examinations:  controllers.NewCampaignController(services.NewCampaignService(models.KindHealthExamination, store.Campaigns(), store.Students(), notifications, options, log)),
		Vaccinations:  controllers.NewCampaignController(services.NewCampaignService(models.KindVaccination, store.Campaigns(), store.Students(), notifications, options, log)),
		Notifications: controllers.NewNotificationController(notifications),
		Feedbacks:     controllers.NewFeedbackController(services.NewFeedbackService(store.Feedbacks(), store.Users(), notifications, log)),
		WebSocket:     websocket.NewHandler(websocket.NewHub(log), log),
	}

	router := gin.New()
	SetupRouter(router, c, middleware.NewAuthMiddleware(jwtService, false))
	return &testEnv{router: router, store: store, jwt: jwtService}
}

func (e *testEnv) addUser(t *testing.T, role models.RoleType, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: email, RoleType: role, IsActive: true}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) addClass(t *testing.T, name string, grade int) *models.Class {
	t.Helper()
	c := &models.Class{Name: name, GradeLevel: grade, AcademicYear: "2025-2026"}
	require.NoError(t, e.store.Classes().Create(context.Background(), c))
	return c
}

func (e *testEnv) addStudent(t *testing.T, code string, classID, parentID int64) *models.Student {
	t.Helper()
	st := &models.Student{
		StudentCode: code,
		FullName:    "Student " + code,
		Gender:      models.GenderMale,
		ClassID:     &classID,
		ParentID:    &parentID,
	}
	require.NoError(t, e.store.Students().Create(context.Background(), st))
	return st
}

func (e *testEnv) do(t *testing.T, user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, _, err := e.jwt.GenerateAccessToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), w.Body.String())
}

// school builds five grade 2 students over two classes plus one grade 3
// student, all children of parent.
func (e *testEnv) school(t *testing.T) (staff, parent *models.User, grade2 []*models.Student) {
	t.Helper()
	staff = e.addUser(t, models.RoleStaff, "nurse@school.edu")
	parent = e.addUser(t, models.RoleParent, "parent@example.com")

	c2a := e.addClass(t, "2A", 2)
	c2b := e.addClass(t, "2B", 2)
	c3a := e.addClass(t, "3A", 3)
	for i := 0; i < 3; i++ {
		grade2 = append(grade2, e.addStudent(t, fmt.Sprintf("HSA%03d", i), c2a.ID, parent.ID))
	}
	for i := 0; i < 2; i++ {
		grade2 = append(grade2, e.addStudent(t, fmt.Sprintf("HSB%03d", i), c2b.ID, parent.ID))
	}
	e.addStudent(t, "HSC001", c3a.ID, parent.ID)
	return staff, parent, grade2
}

func TestHealth_IsPublic(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, nil, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, nil, http.MethodGet, "/api/v1/classes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCampaignCreate_FansOutToGrade(t *testing.T) {
	env := newTestEnv(t)
	staff, parent, _ := env.school(t)

	w := env.do(t, staff, http.MethodPost, "/api/v1/health-examinations", map[string]interface{}{
		"title":          "Annual health check",
		"scheduled_date": "2025-10-01",
		"target_type":    "grade",
		"grade_levels":   []int{2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		CreatedCount int `json:"created_count"`
	}
	decodeData(t, w, &created)
	assert.Equal(t, 5, created.CreatedCount)

	w = env.do(t, parent, http.MethodGet, fmt.Sprintf("/api/v1/notifications/parent/%d", parent.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var notes []models.Notification
	decodeData(t, w, &notes)
	require.Len(t, notes, 5)
	for _, n := range notes {
		assert.False(t, n.IsRead)
		assert.Equal(t, parent.ID, n.ParentID)
	}
}

func TestCampaignCreate_ParentIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, parent, _ := env.school(t)

	w := env.do(t, parent, http.MethodPost, "/api/v1/vaccination-schedules", map[string]interface{}{
		"title":          "Flu shots",
		"scheduled_date": "2025-10-01",
		"target_type":    "grade",
		"grade_levels":   []int{2},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCampaignStatus_ParentApprovesWithNotes(t *testing.T) {
	env := newTestEnv(t)
	staff, parent, grade2 := env.school(t)

	w := env.do(t, staff, http.MethodPost, "/api/v1/vaccination-schedules", map[string]interface{}{
		"title":          "Measles booster",
		"scheduled_date": "2025-11-03",
		"scheduled_time": "09:00",
		"target_type":    "student",
		"student_id":     grade2[0].ID,
		"vaccine_name":   "MMR",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, parent, http.MethodGet, fmt.Sprintf("/api/v1/vaccination-schedules/parent/%d", parent.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []models.Schedule
	decodeData(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusPending, rows[0].Status)

	w = env.do(t, parent, http.MethodPatch, fmt.Sprintf("/api/v1/vaccination-schedules/%d/status", rows[0].ID), map[string]interface{}{
		"status":                "Approved",
		"parent_response_notes": "He had chickenpox last year",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Schedule
	decodeData(t, w, &updated)
	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ParentResponseNotes)
	assert.Equal(t, "He had chickenpox last year", *updated.ParentResponseNotes)
}

func TestParentScope_OtherParentIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, parent, _ := env.school(t)
	other := env.addUser(t, models.RoleParent, "other@example.com")

	paths := []string{
		fmt.Sprintf("/api/v1/students/parent/%d", parent.ID),
		fmt.Sprintf("/api/v1/notifications/parent/%d", parent.ID),
		fmt.Sprintf("/api/v1/medicine-deliveries/parent/%d", parent.ID),
		fmt.Sprintf("/api/v1/health-examinations/parent/%d", parent.ID),
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := env.do(t, other, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestParentScope_OwnChildren(t *testing.T) {
	env := newTestEnv(t)
	_, parent, _ := env.school(t)

	w := env.do(t, parent, http.MethodGet, fmt.Sprintf("/api/v1/students/parent/%d", parent.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var children []models.Student
	decodeData(t, w, &children)
	assert.Len(t, children, 6)
}

func TestStaffRoutes_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, models.RoleStaff, "nurse@school.edu")
	admin := env.addUser(t, models.RoleAdmin, "admin@school.edu")

	assert.Equal(t, http.StatusForbidden, env.do(t, staff, http.MethodGet, "/api/v1/staff", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, admin, http.MethodGet, "/api/v1/staff", nil).Code)
}

func TestCampaignEvent_InvalidEventID(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, models.RoleStaff, "nurse@school.edu")

	w := env.do(t, staff, http.MethodGet, "/api/v1/health-examinations/events/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationCreate_TypeLengthMatchesColumn(t *testing.T) {
	env := newTestEnv(t)
	staff, parent, _ := env.school(t)

	body := func(notificationType string) map[string]interface{} {
		return map[string]interface{}{
			"parentId": parent.ID,
			"type":     notificationType,
			"title":    "Sick bay visit",
			"content":  "Your child visited the sick bay.",
		}
	}

	w := env.do(t, staff, http.MethodPost, "/api/v1/notifications", body(strings.Repeat("X", 31)))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do(t, staff, http.MethodPost, "/api/v1/notifications", body(strings.Repeat("X", 30)))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
