package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-parking-slot-booking/internal/api/middleware"
)

// currentUser はJWTミドルウェアがコンテキストに格納したユーザー情報を取り出す
func currentUser(c echo.Context) (string, string, error) {
	id, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || id == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	name, _ := c.Get(middleware.ContextUserName).(string)
	return id, name, nil
}
