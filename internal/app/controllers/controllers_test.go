package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/search"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

// stubAuthService only implements the password endpoints
type stubAuthService struct {
	forgotFor string
	resetErr  error
	reset     struct{ token, password string }
}

func (s *stubAuthService) RegisterStudent(context.Context, *dto.RegisterStudentRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (s *stubAuthService) RegisterCompany(context.Context, *dto.RegisterCompanyRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (s *stubAuthService) Login(context.Context, *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, nil
}
func (s *stubAuthService) RefreshToken(context.Context, string) (*dto.TokenResponse, error) {
	return nil, nil
}
func (s *stubAuthService) Logout(context.Context, string) error             { return nil }
func (s *stubAuthService) VerifyEmail(context.Context, string) error        { return nil }
func (s *stubAuthService) ResendVerification(context.Context, string) error { return nil }
func (s *stubAuthService) GetProfile(context.Context, int64) (*dto.UserResponse, error) {
	return nil, nil
}

func (s *stubAuthService) ForgotPassword(_ context.Context, email string) error {
	s.forgotFor = email
	return nil
}

func (s *stubAuthService) ResetPassword(_ context.Context, token, password string) error {
	s.reset.token, s.reset.password = token, password
	return s.resetErr
}

type stubUserService struct {
	users     []*models.User
	setActive func(actor auth.Actor, id int64, active bool) (*models.User, error)
}

func (s *stubUserService) List(_ context.Context, opts search.Options) (search.Page[*models.User], error) {
	return search.Run(s.users, opts), nil
}

func (s *stubUserService) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *stubUserService) SetActive(_ context.Context, actor auth.Actor, id int64, active bool) (*models.User, error) {
	return s.setActive(actor, id, active)
}

func (s *stubUserService) ChangePassword(context.Context, auth.Actor, *dto.ChangePasswordRequest) error {
	return nil
}

// asActor stands in for JWTAuth
func asActor(userID int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRoleType, string(role))
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthController_PasswordReset(t *testing.T) {
	svc := &stubAuthService{}
	ctrl := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/forgot", ctrl.ForgotPassword)
	r.POST("/reset", ctrl.ResetPassword)

	w := do(r, http.MethodPost, "/forgot", `{"email":"asha@college.edu"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha@college.edu", svc.forgotFor)

	w = do(r, http.MethodPost, "/forgot", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/reset", `{"token":"abc","newPassword":"weak"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.reset.token, "service is not called for invalid input")

	w = do(r, http.MethodPost, "/reset", `{"token":"abc","newPassword":"NewSecret1!"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", svc.reset.token)

	svc.resetErr = apperrors.ErrInvalidResetToken
	w = do(r, http.MethodPost, "/reset", `{"token":"used","newPassword":"NewSecret1!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decode(t, w).Error.Code)
}

func TestUserController(t *testing.T) {
	svc := &stubUserService{
		users: []*models.User{
			{ID: 1, Email: "admin@college.edu", RoleType: models.RoleAdmin, IsActive: true},
			{ID: 2, Email: "asha@college.edu", RoleType: models.RoleStudent, IsActive: true},
			{ID: 3, Email: "hr@initech.example", RoleType: models.RoleCompany, IsActive: false},
		},
	}
	svc.setActive = func(actor auth.Actor, id int64, active bool) (*models.User, error) {
		assert.Equal(t, int64(1), actor.UserID)
		u, err := svc.GetByID(context.Background(), id)
		if err != nil {
			return nil, err
		}
		u.IsActive = active
		return u, nil
	}

	ctrl := NewUserController(svc)
	r := gin.New()
	r.Use(asActor(1, models.RoleAdmin))
	r.GET("/users", ctrl.List)
	r.GET("/users/:id", ctrl.GetByID)
	r.PATCH("/users/:id/status", ctrl.UpdateStatus)

	w := do(r, http.MethodGet, "/users?isActive=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.PaginatedResponse[*models.User]
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hr@initech.example", page.Items[0].Email)

	w = do(r, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodGet, "/users/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPatch, "/users/2/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "active is required")

	w = do(r, http.MethodPatch, "/users/2/status", `{"active":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.users[1].IsActive)
}

func TestCurrentActorMissing(t *testing.T) {
	ctrl := NewUserController(&stubUserService{})
	r := gin.New()
	r.POST("/change-password", ctrl.ChangePassword)

	w := do(r, http.MethodPost, "/change-password", `{"currentPassword":"a","newPassword":"NewSecret1!"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
