package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	BookingDate string `json:"booking_date" validate:"required" example:"2025-07-01"`
	StartTime   string `json:"start_time" validate:"required" example:"10:00"`
	EndTime     string `json:"end_time" example:"13:00"`
	Duration    int    `json:"duration" example:"3"`
}

type BookingResponse struct {
	ID            string `json:"id" example:"660e8400-e29b-41d4-a716-446655440001"`
	BookingNumber string `json:"booking_number" example:"PK-1719800000000-A1B2C3"`
	UserName      string `json:"user_name" example:"山田太郎"`
	LocationID    string `json:"location_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	LocationName  string `json:"location_name" example:"中央駐車場"`
	Area          string `json:"area" example:"渋谷"`
	Address       string `json:"address" example:"東京都渋谷区1-2-3"`
	Image         string `json:"image,omitempty" example:"https://example.com/parking.jpg"`
	BookingDate   string `json:"booking_date" example:"2025-07-01"`
	StartTime     string `json:"start_time" example:"10:00"`
	EndTime       string `json:"end_time" example:"13:00"`
	Duration      int    `json:"duration" example:"3"`
	HourlyRate    int    `json:"hourly_rate" example:"500"`
	TotalAmount   int    `json:"total_amount" example:"1500"`
	Status        string `json:"status" example:"Booked"`
	CreatedAt     string `json:"created_at" example:"2025-06-01T10:00:00+09:00"`
}

func toBookingResponse(b *booking.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		UserName:      b.UserName,
		LocationID:    b.LocationID,
		LocationName:  b.LocationName,
		Area:          b.Area,
		Address:       b.Address,
		Image:         b.Image,
		BookingDate:   b.BookingDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Duration:      b.Duration,
		HourlyRate:    b.HourlyRate,
		TotalAmount:   b.TotalAmount,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

func isScheduleError(err error) bool {
	return errors.Is(err, booking.ErrInvalidDate) ||
		errors.Is(err, booking.ErrInvalidTime) ||
		errors.Is(err, booking.ErrDateInPast) ||
		errors.Is(err, booking.ErrStartTimeInPast) ||
		errors.Is(err, booking.ErrInvalidDuration) ||
		errors.Is(err, booking.ErrDurationExceedsDay)
}

// Create godoc
// @Summary 予約を作成
// @Description 指定ロケーションの時間枠を予約します（end_time か duration のどちらかを指定）
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ロケーションID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /locations/{id}/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, userName, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		LocationID:  c.Param("id"),
		UserID:      userID,
		UserName:    userName,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, location.ErrLocationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, location.ErrNoSlotsAvailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case isScheduleError(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// ListMine godoc
// @Summary 自分の予約一覧を取得
// @Description ログインユーザーの予約一覧を新しい順に取得します
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings/my [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.ListUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Ticket godoc
// @Summary チケットを取得
// @Description 予約チケット（作成時点のロケーション情報を含む）を取得します
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/ticket [get]
func (h *BookingHandler) Ticket(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	b, err := h.service.GetTicket(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、空き台数を戻します
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/cancel [put]
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrBookingAlreadyCancelled),
			errors.Is(err, booking.ErrBookingAlreadyFinished),
			errors.Is(err, booking.ErrBookingNotActive):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
