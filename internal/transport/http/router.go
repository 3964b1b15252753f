package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/handlers"
	"github.com/bsavchuk/contacts-api/internal/middleware"
)

type Deps struct {
	Auth           *middleware.Auth
	AuthHandler    *handlers.AuthHandler
	ContactHandler *handlers.ContactHandler
	AvatarHandler  *handlers.AvatarHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", d.AuthHandler.Refresh)
	e.GET("/verify/:token", d.AuthHandler.VerifyEmail)

	contacts := e.Group("/contacts", d.Auth.RequireAuth)
	contacts.POST("", d.ContactHandler.Create)
	contacts.GET("", d.ContactHandler.List)
	contacts.GET("/search", d.ContactHandler.Search)
	contacts.GET("/upcoming-birthdays", d.ContactHandler.UpcomingBirthdays)
	contacts.GET("/:id", d.ContactHandler.Get)
	contacts.PUT("/:id", d.ContactHandler.Update)
	contacts.DELETE("/:id", d.ContactHandler.Delete)

	users := e.Group("/users", d.Auth.RequireAuth)
	users.POST("/:id/avatar", d.AvatarHandler.Upload)
}
