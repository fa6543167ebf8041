package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
)

func (r *Router) registerAvailabilityRoutes(api fiber.Router, ah *handler.AvailabilityHandler) {
	// Availability is public: players browse before they identify.
	api.Get("/resources/:id/availability", ah.Get)
}
