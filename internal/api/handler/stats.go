package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
)

type StatsHandler struct {
	service StatsServiceInterface
}

func NewStatsHandler(s StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: s}
}

type LocationEarningsResponse struct {
	Name   string `json:"name" example:"中央駐車場"`
	Amount int    `json:"amount" example:"45000"`
}

type OwnerStatsResponse struct {
	LocationCount int                        `json:"location_count" example:"3"`
	Earnings      []LocationEarningsResponse `json:"earnings"`
	TotalEarnings int                        `json:"total_earnings" example:"120000"`
}

func toOwnerStatsResponse(stats *application.OwnerStats) *OwnerStatsResponse {
	earnings := make([]LocationEarningsResponse, len(stats.Earnings))
	for i, e := range stats.Earnings {
		earnings[i] = LocationEarningsResponse{Name: e.Name, Amount: e.Amount}
	}
	return &OwnerStatsResponse{
		LocationCount: stats.LocationCount,
		Earnings:      earnings,
		TotalEarnings: stats.TotalEarnings,
	}
}

// OwnerStats godoc
// @Summary 売上統計を取得
// @Description ログインユーザーが所有するロケーションの売上集計を取得します
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OwnerStatsResponse
// @Failure 401 {object} map[string]string
// @Router /admin/stats [get]
func (h *StatsHandler) OwnerStats(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.service.GetOwnerStats(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toOwnerStatsResponse(stats))
}
