package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"

	"event-planner/models"
	"event-planner/services"
)

type VendorHandler struct {
	vendorService *services.VendorService
}

func NewVendorHandler(vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func (h *VendorHandler) AddVendor(c echo.Context) error {
	var req services.AddVendorInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	vendor, err := h.vendorService.AddVendor(c.Request().Context(), c.PathParam("eventId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) ContactVendor(c echo.Context) error {
	var req services.ContactInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	vendor, err := h.vendorService.ContactVendor(c.Request().Context(), c.PathParam("eventId"), c.PathParam("vendorId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) SubmitResponse(c echo.Context) error {
	var req struct {
		Response        models.VendorResponse `json:"response"`
		NegotiatedPrice decimal.Decimal       `json:"negotiated_price"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	result, err := h.vendorService.SubmitResponse(c.Request().Context(), c.PathParam("eventId"), c.PathParam("vendorId"), req.Response, req.NegotiatedPrice)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *VendorHandler) RemoveVendor(c echo.Context) error {
	result, err := h.vendorService.RemoveVendor(c.Request().Context(), c.PathParam("eventId"), c.PathParam("vendorId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *VendorHandler) ListViolating(c echo.Context) error {
	vendors, err := h.vendorService.Violating(c.Request().Context(), c.PathParam("eventId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"violating_vendors": vendors})
}
