package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
)

type LocationHandler struct {
	service LocationServiceInterface
}

func NewLocationHandler(s LocationServiceInterface) *LocationHandler {
	return &LocationHandler{service: s}
}

type CreateLocationRequest struct {
	Name       string `json:"name" validate:"required" example:"中央駐車場"`
	Area       string `json:"area" validate:"required" example:"渋谷"`
	Address    string `json:"address" validate:"required" example:"東京都渋谷区1-2-3"`
	Image      string `json:"image" example:"https://example.com/parking.jpg"`
	HourlyRate int    `json:"hourly_rate" validate:"required,gt=0" example:"500"`
	TotalSlots int    `json:"total_slots" validate:"required,gte=0" example:"20"`
}

type LocationResponse struct {
	ID             string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name           string `json:"name" example:"中央駐車場"`
	Area           string `json:"area" example:"渋谷"`
	Address        string `json:"address" example:"東京都渋谷区1-2-3"`
	Image          string `json:"image,omitempty" example:"https://example.com/parking.jpg"`
	HourlyRate     int    `json:"hourly_rate" example:"500"`
	TotalSlots     int    `json:"total_slots" example:"20"`
	AvailableSlots int    `json:"available_slots" example:"18"`
	CreatedAt      string `json:"created_at" example:"2025-06-01T10:00:00+09:00"`
	UpdatedAt      string `json:"updated_at" example:"2025-06-01T10:00:00+09:00"`
}

func toLocationResponse(l *location.Location) *LocationResponse {
	return &LocationResponse{
		ID:             l.ID,
		Name:           l.Name,
		Area:           l.Area,
		Address:        l.Address,
		Image:          l.Image,
		HourlyRate:     l.HourlyRate,
		TotalSlots:     l.TotalSlots,
		AvailableSlots: l.AvailableSlots,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary ロケーションを作成
// @Description 新しい駐車場ロケーションを作成します
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLocationRequest true "ロケーション情報"
// @Success 201 {object} LocationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /locations [post]
func (h *LocationHandler) Create(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	l, err := h.service.CreateLocation(c.Request().Context(), application.CreateLocationInput{
		Name:       req.Name,
		Area:       req.Area,
		Address:    req.Address,
		Image:      req.Image,
		HourlyRate: req.HourlyRate,
		TotalSlots: req.TotalSlots,
		OwnerID:    userID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toLocationResponse(l))
}

// List godoc
// @Summary ロケーション一覧を取得
// @Description ロケーションの一覧を取得します（area指定時は部分一致で絞り込み）
// @Tags locations
// @Produce json
// @Param area query string false "エリア名（部分一致）"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} LocationResponse
// @Router /locations [get]
func (h *LocationHandler) List(c echo.Context) error {
	area := c.QueryParam("area")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	locations, err := h.service.ListLocations(c.Request().Context(), area, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]*LocationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toLocationResponse(l)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary ロケーションを取得
// @Description 指定IDのロケーションを取得します
// @Tags locations
// @Produce json
// @Param id path string true "ロケーションID"
// @Success 200 {object} LocationResponse
// @Failure 404 {object} map[string]string
// @Router /locations/{id} [get]
func (h *LocationHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	l, err := h.service.GetLocation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toLocationResponse(l))
}

// ListMine godoc
// @Summary 自分のロケーション一覧を取得
// @Description ログインユーザーが所有するロケーション一覧を取得します
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} LocationResponse
// @Failure 401 {object} map[string]string
// @Router /locations/my [get]
func (h *LocationHandler) ListMine(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	locations, err := h.service.ListMyLocations(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]*LocationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toLocationResponse(l)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary ロケーションを更新
// @Description 所有するロケーションを更新します（総台数の変更は空き台数を調整します）
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ロケーションID"
// @Param request body CreateLocationRequest true "ロケーション情報"
// @Success 200 {object} LocationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /locations/{id} [put]
func (h *LocationHandler) Update(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	l, err := h.service.UpdateLocation(c.Request().Context(), application.UpdateLocationInput{
		ID:         c.Param("id"),
		OwnerID:    userID,
		Name:       req.Name,
		Area:       req.Area,
		Address:    req.Address,
		Image:      req.Image,
		HourlyRate: req.HourlyRate,
		TotalSlots: req.TotalSlots,
	})
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toLocationResponse(l))
}

// Delete godoc
// @Summary ロケーションを削除
// @Description 所有するロケーションを削除します
// @Tags locations
// @Security BearerAuth
// @Param id path string true "ロケーションID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /locations/{id} [delete]
func (h *LocationHandler) Delete(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteLocation(c.Request().Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Availability godoc
// @Summary 空き台数を取得
// @Description ロケーションの現在の空き台数を取得します（キャッシュあり）
// @Tags locations
// @Produce json
// @Param id path string true "ロケーションID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /locations/{id}/availability [get]
func (h *LocationHandler) Availability(c echo.Context) error {
	id := c.Param("id")
	count, err := h.service.CountAvailableSlots(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"available_slots": count})
}
