package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/logging"
)

// httpError translates the sentinel taxonomy into status codes.
// Anything unrecognized is an upstream failure: logged, returned as a
// bare 500 so internals never reach the client.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	case errors.Is(err, apperr.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, apperr.ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid input")
	default:
		logging.FromContext(c.Request().Context()).Error("upstream error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
