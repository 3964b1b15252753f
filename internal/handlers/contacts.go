package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/logging"
	"github.com/bsavchuk/contacts-api/internal/middleware"
	"github.com/bsavchuk/contacts-api/internal/models"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/search"
	"github.com/bsavchuk/contacts-api/internal/util"
)

type ContactHandler struct {
	Repo  *repo.GormRepo
	Index *search.Index
}

func (h *ContactHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req struct {
		FirstName      string      `json:"first_name"`
		LastName       string      `json:"last_name"`
		Email          string      `json:"email"`
		Phone          string      `json:"phone"`
		Birthday       models.Date `json:"birthday"`
		AdditionalInfo string      `json:"additional_info"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "first_name, last_name, email and phone are required")
	}

	contact := models.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthday:       req.Birthday,
		AdditionalInfo: req.AdditionalInfo,
	}

	ctx := c.Request().Context()
	if err := h.Repo.CreateContact(ctx, user.ID, &contact); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "contact email already exists")
		}
		return httpError(c, err)
	}

	h.reindex(c, &contact)
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Get(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}

	contact, err := h.Repo.GetContact(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, err := h.Repo.CountContacts(ctx, user.ID)
	if err != nil {
		return httpError(c, err)
	}
	contacts, err := h.Repo.ListContacts(ctx, user.ID, offset, limit)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": contacts,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *ContactHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var upd repo.ContactUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	contact, err := h.Repo.UpdateContact(c.Request().Context(), id, user.ID, upd)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		case errors.Is(err, apperr.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "contact email already exists")
		}
		return httpError(c, err)
	}

	h.reindex(c, contact)
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}

	contact, err := h.Repo.DeleteContact(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		return httpError(c, err)
	}

	if h.Index.Enabled() {
		if err := h.Index.Remove(c.Request().Context(), contact.ID); err != nil {
			logging.FromContext(c.Request().Context()).Error("search deindex", "contact_id", contact.ID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Search(c echo.Context) error {
	user := middleware.CurrentUser(c)
	name := c.QueryParam("name")
	surname := c.QueryParam("surname")
	email := c.QueryParam("email")

	ctx := c.Request().Context()
	var (
		contacts []models.Contact
		err      error
	)
	if h.Index.Enabled() {
		contacts, err = h.Index.Search(ctx, user.ID, name, surname, email)
	} else {
		contacts, err = h.Repo.SearchContacts(ctx, user.ID, name, surname, email)
	}
	if err != nil {
		return httpError(c, err)
	}
	if len(contacts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "contacts not found")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) UpcomingBirthdays(c echo.Context) error {
	user := middleware.CurrentUser(c)
	window := parseIntDefault(c.QueryParam("days"), repo.DefaultBirthdayWindow)

	contacts, err := h.Repo.UpcomingBirthdays(c.Request().Context(), user.ID, window, time.Now())
	if err != nil {
		return httpError(c, err)
	}
	if len(contacts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no upcoming birthdays found")
	}
	return c.JSON(http.StatusOK, contacts)
}

// reindex is best-effort: a search mirror failure must not fail the
// write that already happened.
func (h *ContactHandler) reindex(c echo.Context, contact *models.Contact) {
	if !h.Index.Enabled() {
		return
	}
	if err := h.Index.Put(c.Request().Context(), contact); err != nil {
		logging.FromContext(c.Request().Context()).Error("search index", "contact_id", contact.ID, "error", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
