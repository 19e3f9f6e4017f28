package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roamsync/roamsync/internal/server/auth"
)

const userIDKey = "userID"

// bearerAuth verifies the access token and stashes the user id in the echo
// context. Anything wrong with the token is a 401 — that status is what
// drives the client's refresh-and-retry, so nothing else may use it.
func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		}

		claims, err := auth.ParseToken(token, s.auth.AccessSecret())
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		}

		c.Set(userIDKey, claims.UserID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
