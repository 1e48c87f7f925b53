package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"event-planner/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req services.CreateEventInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	event, err := h.eventService.CreateEvent(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	summary, err := h.eventService.GetSummary(c.Request().Context(), c.PathParam("eventId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.PathParam("eventId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Event deleted"})
}

func (h *EventHandler) RecomputeBudget(c echo.Context) error {
	spent, err := h.eventService.RecomputeBudget(c.Request().Context(), c.PathParam("eventId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"spent": spent})
}

func (h *EventHandler) AddExpense(c echo.Context) error {
	var req services.ExpenseInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	expense, err := h.eventService.AddExpense(c.Request().Context(), c.PathParam("eventId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, expense)
}

func (h *EventHandler) RemoveExpense(c echo.Context) error {
	err := h.eventService.RemoveExpense(c.Request().Context(), c.PathParam("eventId"), c.PathParam("expenseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Expense removed"})
}
