package middleware

import (
	"bytes"
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

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type envelope struct {
	StatusCode int              `json:"statusCode"`
	Message    string           `json:"message"`
	Error      *dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandleAPIError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{fmt.Errorf("get: %w", apperrors.ErrScheduleNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrStudentCodeAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{apperrors.NewValidationError("grade_levels must not be empty"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.NewForbiddenError("not your child"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, tc.status, env.StatusCode)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestHandleAPIError_Messages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, apperrors.NewValidationError("grade_levels must not be empty"))
	assert.Equal(t, "grade_levels must not be empty", decode(t, w).Error.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, fmt.Errorf("lookup: %w", apperrors.ErrClassNotFound))
	assert.Equal(t, "Class not found", decode(t, w).Error.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, fmt.Errorf("pq: password=secret"))
	assert.NotContains(t, w.Body.String(), "secret")
}

func newAuthRouter(skip bool) (*gin.Engine, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	m := NewAuthMiddleware(jwtService, skip)

	r := gin.New()
	r.GET("/any", m.JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": CurrentUserID(c), "role": CurrentRole(c)})
	})
	r.GET("/staff", m.JWTAuth(), m.RoleRequired(models.RoleStaff, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtService
}

func TestJWTAuth(t *testing.T) {
	r, jwtService := newAuthRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/any", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decode(t, w).Error.Code)

	token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 5, Email: "p@x.io", RoleType: models.RoleParent})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":5,"role":"PARENT"}`, w.Body.String())

	// token query parameter for WebSocket clients
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/any?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newAuthRouter(false)

	parentToken, _, _ := jwtService.GenerateAccessToken(&models.User{ID: 5, Email: "p@x.io", RoleType: models.RoleParent})
	staffToken, _, _ := jwtService.GenerateAccessToken(&models.User{ID: 6, Email: "s@x.io", RoleType: models.RoleStaff})

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+parentToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJWTAuth_SkipAuth(t *testing.T) {
	r, _ := newAuthRouter(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBindJSON_ValidationEnvelope(t *testing.T) {
	r := gin.New()
	r.PATCH("/status", func(c *gin.Context) {
		var req dto.UpdateStatusRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/status", strings.NewReader(`{"status":"Done"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Equal(t, "status", env.Error.Field)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/status", strings.NewReader(`{"status":"Approved"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/x/:id", func(c *gin.Context) {
		id, ok := ParseIDParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/12", nil))
	assert.JSONEq(t, `{"id":12}`, w.Body.String())
}

func TestRequestLogger_RedactsTokenParam(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/api/v1/notifications/ws", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	const token = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.SIGNATURE"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/ws?token="+token+"&unread=true", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	var line struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.NotContains(t, buf.String(), token)
	assert.Equal(t, "/api/v1/notifications/ws?token=REDACTED&unread=true", line.Path)
}

func TestRequestLogger_KeepsPlainQuery(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students?page=2", nil))
	assert.Contains(t, buf.String(), `"path":"/students?page=2"`)
}
