package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
)

// MockStatsService はStatsServiceInterfaceのモック
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetOwnerStats(ctx context.Context, ownerID string) (*application.OwnerStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.OwnerStats), args.Error(1)
}

func TestStatsHandler_OwnerStats(t *testing.T) {
	e := NewTestEcho()

	t.Run("売上統計を取得できる", func(t *testing.T) {
		mockService := new(MockStatsService)
		mockService.On("GetOwnerStats", mock.Anything, "user-123").Return(&application.OwnerStats{
			LocationCount: 2,
			Earnings: []booking.LocationEarnings{
				{Name: "中央駐車場", Amount: 45000},
				{Name: "北口駐車場", Amount: 12000},
			},
			TotalEarnings: 57000,
		}, nil)

		handler := NewStatsHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		rec := httptest.NewRecorder()
		c := authedContext(e, req, rec)

		err := handler.OwnerStats(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp OwnerStatsResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.LocationCount)
		require.Len(t, resp.Earnings, 2)
		assert.Equal(t, "中央駐車場", resp.Earnings[0].Name)
		assert.Equal(t, 45000, resp.Earnings[0].Amount)
		assert.Equal(t, 57000, resp.TotalEarnings)

		mockService.AssertExpectations(t)
	})

	t.Run("認証情報がない場合401", func(t *testing.T) {
		mockService := new(MockStatsService)
		handler := NewStatsHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.OwnerStats(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("集計に失敗した場合500", func(t *testing.T) {
		mockService := new(MockStatsService)
		mockService.On("GetOwnerStats", mock.Anything, "user-123").
			Return(nil, errors.New("db error"))

		handler := NewStatsHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		rec := httptest.NewRecorder()
		c := authedContext(e, req, rec)

		err := handler.OwnerStats(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})
}
