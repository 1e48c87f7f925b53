package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"event-planner/services"
)

type SplitHandler struct {
	splitService *services.SplitService
}

func NewSplitHandler(splitService *services.SplitService) *SplitHandler {
	return &SplitHandler{splitService: splitService}
}

func (h *SplitHandler) CreateSplit(c echo.Context) error {
	var req struct {
		People []services.PersonInput `json:"people"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	participants, err := h.splitService.CreateSplit(c.Request().Context(), c.PathParam("eventId"), req.People)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"participants": participants})
}

func (h *SplitHandler) ListParticipants(c echo.Context) error {
	participants, err := h.splitService.Participants(c.Request().Context(), c.PathParam("eventId"))
	if err != nil {
		return respondError(c, err)
	}

	collected, err := h.splitService.Collected(c.Request().Context(), c.PathParam("eventId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"participants": participants,
		"collected":    collected,
	})
}

func (h *SplitHandler) CreateOrder(c echo.Context) error {
	order, err := h.splitService.CreateOrder(c.Request().Context(), c.PathParam("participantId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *SplitHandler) VerifyPayment(c echo.Context) error {
	var req services.VerifyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}
	req.ParticipantID = c.PathParam("participantId")

	result, err := h.splitService.VerifyPayment(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SplitHandler) DeclineShare(c echo.Context) error {
	if err := h.splitService.DeclineShare(c.Request().Context(), c.PathParam("participantId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Share declined"})
}

func (h *SplitHandler) CheckStatus(c echo.Context) error {
	participant, err := h.splitService.CheckStatus(c.Request().Context(), c.PathParam("eventId"), c.PathParam("participantId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"participant_id": participant.ID,
		"status":         participant.Status,
		"amount":         participant.Amount,
		"payment_id":     participant.PaymentID,
	})
}
