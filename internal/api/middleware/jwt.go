package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// ContextUserID はJWT検証後にコンテキストへ格納されるユーザーIDのキー
	ContextUserID = "user_id"
	// ContextUserName はJWT検証後にコンテキストへ格納されるユーザー名のキー
	ContextUserName = "user_name"
)

// JWTAuth はBearerトークンを検証し、ユーザーIDと名前をコンテキストに格納する
// ハンドラーは c.Get("user_id") / c.Get("user_name") で取得できる
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// HS256以外の署名方式は拒否する
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}
			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}

			c.Set(ContextUserID, sub)
			if name, ok := claims["name"].(string); ok {
				c.Set(ContextUserName, name)
			}
			return next(c)
		}
	}
}
