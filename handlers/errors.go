package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"event-planner/internal/status"
)

// respondError translates service errors to HTTP responses so every
// handler reports the same shape.
func respondError(c echo.Context, err error) error {
	var limitErr *status.GuestLimitError
	if errors.As(err, &limitErr) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":              "guest limit exceeded",
			"message":            limitErr.Error(),
			"current":            limitErr.Current,
			"limit":              limitErr.Limit,
			"requested":          limitErr.Requested,
			"additional_allowed": limitErr.AdditionalAllowed,
		})
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, status.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, status.ErrValidation), errors.Is(err, status.ErrSignatureInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, status.ErrConflict), errors.Is(err, status.ErrNegativeBudget):
		code = http.StatusConflict
	case errors.Is(err, status.ErrExternalService):
		code = http.StatusBadGateway
	}

	return c.JSON(code, map[string]any{"error": err.Error()})
}
