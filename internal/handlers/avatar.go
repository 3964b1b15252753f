package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/middleware"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/storage"
)

type AvatarHandler struct {
	Repo    *repo.GormRepo
	Storage *storage.AvatarStorage
}

func (h *AvatarHandler) Upload(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}
	// Answer 404 rather than 403 so other user ids are not probeable.
	if id != user.ID {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if h.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "avatar storage is not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("avatars/%d%s", user.ID, strings.ToLower(filepath.Ext(fileHeader.Filename)))

	ctx := c.Request().Context()
	url, err := h.Storage.Upload(ctx, key, contentType, src)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.SetAvatarURL(ctx, user.ID, url); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}
