package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/danuart/invitation-shop/internal/service/auth"
)

const userIDKey = "user_id"

// RequireAuth resolves the caller from the access-token cookie and stores the
// user id in the echo context. Requests without a valid token are rejected
// before any handler runs.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("accessToken")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
			}
			userID, err := svc.CallerID(cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func callerID(c echo.Context) uint {
	if v, ok := c.Get(userIDKey).(uint); ok {
		return v
	}
	return 0
}
