package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"event-planner/models"
	"event-planner/services"
)

type GuestHandler struct {
	guestService *services.GuestService
}

func NewGuestHandler(guestService *services.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

func (h *GuestHandler) AddGuest(c echo.Context) error {
	var req services.AddGuestInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	result, err := h.guestService.AddGuest(c.Request().Context(), c.PathParam("eventId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *GuestHandler) ImportGuests(c echo.Context) error {
	var req struct {
		Rows []models.GuestRow `json:"rows"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	result, err := h.guestService.ImportGuests(c.Request().Context(), c.PathParam("eventId"), req.Rows)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *GuestHandler) RemoveGuest(c echo.Context) error {
	result, err := h.guestService.RemoveGuest(c.Request().Context(), c.PathParam("eventId"), c.PathParam("guestId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// RemoveByStatus prunes the roster in bulk, typically clearing every
// declined guest after the RSVP deadline.
func (h *GuestHandler) RemoveByStatus(c echo.Context) error {
	guestStatus := models.GuestStatus(c.QueryParam("status"))

	result, err := h.guestService.RemoveGuestsByStatus(c.Request().Context(), c.PathParam("eventId"), guestStatus)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *GuestHandler) UpdateRSVP(c echo.Context) error {
	var req struct {
		Status models.GuestStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	guest, err := h.guestService.UpdateRSVP(c.Request().Context(), c.PathParam("eventId"), c.PathParam("guestId"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, guest)
}
