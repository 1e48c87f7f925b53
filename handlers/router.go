package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"

	"event-planner/security"
	"event-planner/utils"
)

type Router struct {
	Event  *EventHandler
	Guest  *GuestHandler
	Vendor *VendorHandler
	Split  *SplitHandler

	Redis *redis.Client
}

// Register wires every route onto the echo instance.
func (r *Router) Register(e *echo.Echo) {
	limiter := security.NewRateLimiter(r.Redis)

	api := e.Group("/api/v1")

	// Event endpoints
	api.POST("/events", r.Event.CreateEvent)
	api.GET("/events/:eventId", r.Event.GetEvent)
	api.DELETE("/events/:eventId", r.Event.DeleteEvent)
	api.POST("/events/:eventId/recompute", r.Event.RecomputeBudget)
	api.POST("/events/:eventId/expenses", r.Event.AddExpense)
	api.DELETE("/events/:eventId/expenses/:expenseId", r.Event.RemoveExpense)

	// Guest endpoints
	api.POST("/events/:eventId/guests", r.Guest.AddGuest)
	api.POST("/events/:eventId/guests/import", r.Guest.ImportGuests, limiter.ImportRateLimit(5))
	api.DELETE("/events/:eventId/guests/:guestId", r.Guest.RemoveGuest)
	api.DELETE("/events/:eventId/guests", r.Guest.RemoveByStatus)
	api.PATCH("/events/:eventId/guests/:guestId/rsvp", r.Guest.UpdateRSVP)

	// Vendor endpoints
	api.POST("/events/:eventId/vendors", r.Vendor.AddVendor)
	api.POST("/events/:eventId/vendors/:vendorId/contact", r.Vendor.ContactVendor)
	api.POST("/events/:eventId/vendors/:vendorId/response", r.Vendor.SubmitResponse)
	api.DELETE("/events/:eventId/vendors/:vendorId", r.Vendor.RemoveVendor)
	api.GET("/events/:eventId/vendors/violating", r.Vendor.ListViolating)

	// Split payment endpoints
	api.POST("/events/:eventId/split", r.Split.CreateSplit)
	api.GET("/events/:eventId/split", r.Split.ListParticipants)
	api.GET("/events/:eventId/split/:participantId", r.Split.CheckStatus)
	api.POST("/split/:participantId/order", r.Split.CreateOrder)
	api.POST("/split/:participantId/verify", r.Split.VerifyPayment, limiter.PaymentRateLimit(20))
	api.POST("/split/:participantId/decline", r.Split.DeclineShare)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if r.Redis != nil {
			if err := utils.RedisHealthCheck(r.Redis); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
}
