package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/models"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/tokens"
)

// UserKey is the echo context key the resolved user is stored under.
const UserKey = "user"

// Auth is the authorization gate: it turns a bearer access token into a
// resolved, active user or fails closed with 401. It never mutates
// anything and is safe on every request.
type Auth struct {
	Tokens *tokens.Service
	Repo   *repo.GormRepo
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return unauthenticated(c, "missing access token")
		}

		userID, err := m.Tokens.ParseAccess(raw)
		if err != nil {
			return unauthenticated(c, "invalid or expired token")
		}

		user, err := m.Repo.UserByID(c.Request().Context(), userID)
		if err != nil {
			return unauthenticated(c, "invalid or expired token")
		}
		if !user.IsActive {
			return unauthenticated(c, "invalid or expired token")
		}

		c.Set(UserKey, user)
		return next(c)
	}
}

func unauthenticated(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

// CurrentUser returns the user resolved by RequireAuth, or nil on
// routes the gate does not protect.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}
