package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/dto"
	"recipehub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, caller *authz.Identity, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error) {
	args := m.Called(ctx, caller, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, caller *authz.Identity) ([]dto.UserResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateUserRole(ctx context.Context, caller *authz.Identity, userID, newRole string) (*dto.UserResponse, error) {
	args := m.Called(ctx, caller, userID, newRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateUserProfile(ctx context.Context, caller *authz.Identity, userID string, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error) {
	args := m.Called(ctx, caller, userID, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) CreateTeamMember(ctx context.Context, caller *authz.Identity, req *dto.CreateTeamMemberRequest, image *dto.Upload) (*dto.UserResponse, error) {
	args := m.Called(ctx, caller, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, caller *authz.Identity, userID string) error {
	args := m.Called(ctx, caller, userID)
	return args.Error(0)
}

func (m *MockUserService) PublicTeam(ctx context.Context) ([]dto.PublicTeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PublicTeamMember), args.Error(1)
}

func TestRegister_Success(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/register", h.Register)

	authService.On("Register", mock.Anything, mock.AnythingOfType("*dto.RegisterRequest")).
		Return(&dto.AuthResponse{
			User:    &dto.UserResponse{ID: "u1", Username: "testuser", Role: "user"},
			Access:  "access-token",
			Refresh: "refresh-token",
		}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username:        "testuser",
		Email:           "test@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got dto.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "access-token", got.Access)
	assert.Equal(t, "testuser", got.User.Username)
}

func TestRegister_InvalidPayloadFailsBinding(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/register", h.Register)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte(`{"username":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	authService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLogin_InvalidCredentialsMapTo401(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/login", h.Login)

	authService.On("Login", mock.Anything, mock.AnythingOfType("*dto.LoginRequest")).
		Return(nil, apperr.Unauthenticatedf("invalid credentials"))

	body, _ := json.Marshal(dto.LoginRequest{Username: "testuser", Password: "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_ReturnsNewAccessToken(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/refresh", h.Refresh)

	authService.On("RefreshAccessToken", mock.Anything, "refresh-token").Return("new-access", nil)

	body, _ := json.Marshal(dto.RefreshRequest{Refresh: "refresh-token"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "new-access", got["access"])
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/logout", h.Logout)

	authService.On("Logout", mock.Anything, "refresh-token").Return(nil)

	body, _ := json.Marshal(dto.RefreshRequest{Refresh: "refresh-token"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	authService.AssertCalled(t, "Logout", mock.Anything, "refresh-token")
}

func TestLogout_UnknownTokenMapsTo401(t *testing.T) {
	authService := new(MockAuthService)
	h := NewAuthHandler(authService, new(MockUserService))
	router := setupRouter()
	router.POST("/logout", h.Logout)

	authService.On("Logout", mock.Anything, "ghost").
		Return(apperr.Unauthenticatedf("invalid refresh token"))

	body, _ := json.Marshal(dto.RefreshRequest{Refresh: "ghost"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile_ReturnsCallerProfile(t *testing.T) {
	userService := new(MockUserService)
	h := NewAuthHandler(new(MockAuthService), userService)
	caller := &authz.Identity{ID: "u1", Role: authz.RoleUser}
	router := setupRouter()
	router.GET("/profile", injectIdentity(caller), h.Profile)

	userService.On("GetProfile", mock.Anything, "u1").
		Return(&dto.UserResponse{ID: "u1", Username: "testuser"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got dto.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "testuser", got.Username)
}
