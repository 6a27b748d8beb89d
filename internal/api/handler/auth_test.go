package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-parking-slot-booking/internal/api/middleware"
	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/user"
)

// MockAuthService はAuthServiceInterfaceのモック
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input application.RegisterInput) (string, *user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockAuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func testUser() *user.User {
	now := time.Now()
	return &user.User{
		ID:        "user-123",
		Name:      "山田太郎",
		Email:     "taro@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にユーザーを登録できる", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Register", mock.Anything, application.RegisterInput{
			Name:     "山田太郎",
			Email:    "taro@example.com",
			Password: "password123",
		}).Return("token-abc", testUser(), nil)

		handler := NewAuthHandler(mockService)

		reqBody := `{"name": "山田太郎", "email": "taro@example.com", "password": "password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Register(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp AuthResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "token-abc", resp.Token)
		assert.Equal(t, "user-123", resp.User.ID)
		assert.Equal(t, "taro@example.com", resp.User.Email)

		mockService.AssertExpectations(t)
	})

	t.Run("メールアドレスが登録済みの場合409", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Register", mock.Anything, mock.AnythingOfType("application.RegisterInput")).
			Return("", nil, user.ErrEmailAlreadyRegistered)

		handler := NewAuthHandler(mockService)

		reqBody := `{"name": "山田太郎", "email": "taro@example.com", "password": "password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Register(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("パスワードが短い場合バリデーションエラー", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService)

		reqBody := `{"name": "山田太郎", "email": "taro@example.com", "password": "short"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Register(c)

		require.Error(t, err)
		mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にログインできる", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Login", mock.Anything, "taro@example.com", "password123").
			Return("token-abc", testUser(), nil)

		handler := NewAuthHandler(mockService)

		reqBody := `{"email": "taro@example.com", "password": "password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Login(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "token-abc", resp.Token)

		mockService.AssertExpectations(t)
	})

	t.Run("認証情報が不正な場合401", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Login", mock.Anything, "taro@example.com", "wrongpass").
			Return("", nil, user.ErrInvalidCredentials)

		handler := NewAuthHandler(mockService)

		reqBody := `{"email": "taro@example.com", "password": "wrongpass"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Login(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	e := NewTestEcho()

	t.Run("ログインユーザーを取得できる", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("GetUser", mock.Anything, "user-123").Return(testUser(), nil)

		handler := NewAuthHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextUserID, "user-123")
		c.Set(middleware.ContextUserName, "山田太郎")

		err := handler.Me(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "user-123", resp.ID)

		mockService.AssertExpectations(t)
	})

	t.Run("認証情報がない場合401", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Me(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
