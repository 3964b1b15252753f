package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	netmail "net/mail"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/events"
	"github.com/bsavchuk/contacts-api/internal/logging"
	"github.com/bsavchuk/contacts-api/internal/mail"
	"github.com/bsavchuk/contacts-api/internal/models"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/tokens"
)

type AuthHandler struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Mailer   mail.Mailer
	Producer *events.Producer
	BaseURL  string
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email and password are required")
	}
	if _, err := netmail.ParseAddress(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid email address")
	}

	ctx := c.Request().Context()
	user, err := h.Repo.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		return httpError(c, err)
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	h.sendVerification(c, user)

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	user, err := h.Repo.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return httpError(c, err)
	}

	accessToken, err := h.Tokens.IssueAccess(user.ID, 0)
	if err != nil {
		return httpError(c, err)
	}
	refreshToken, err := h.Tokens.IssueRefresh(user.ID)
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	userID, err := h.Tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	accessToken, err := h.Tokens.IssueAccess(userID, 0)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	userID, err := h.Tokens.ParseVerification(c.Param("token"))
	if err != nil {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid verification token")
	}

	ctx := c.Request().Context()
	if err := h.Repo.MarkVerified(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return httpError(c, err)
	}

	h.publish(c, fmt.Sprint(userID), map[string]any{
		"type":    "user_verified",
		"user_id": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// sendVerification mails the verification link in the background; the
// response never waits on SMTP.
func (h *AuthHandler) sendVerification(c echo.Context, user *models.User) {
	if h.Mailer == nil {
		return
	}
	l := logging.FromContext(c.Request().Context())

	token, err := h.Tokens.IssueVerification(user.ID)
	if err != nil {
		l.Error("verification token", "user_id", user.ID, "error", err)
		return
	}
	link := h.BaseURL + "/verify/" + token

	go func() {
		if err := h.Mailer.SendVerification(user.Email, link); err != nil {
			l.Error("verification email", "user_id", user.ID, "error", err)
		}
	}()
}

// publish emits the event in the background. Delivery runs against its
// own context, not the request's (which dies when the handler returns),
// and never delays or fails the response.
func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	l := logging.FromContext(c.Request().Context())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Producer.Publish(ctx, key, event); err != nil {
			l.Error("event publish", "error", err)
		}
	}()
}
