package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/internal/service/scheduling"
)

type AvailabilityHandler struct {
	svc scheduling.Service
}

func NewAvailabilityHandler(svc scheduling.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrResourceNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidDate):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /resources/:id/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) Get(c fiber.Ctx) error {
	resourceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid resource id")
	}

	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date is required")
	}

	slots, err := h.svc.AvailableSlots(c.Context(), resourceID, date)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	// nil means the facility never opens that day; an empty day is still
	// a valid answer.
	if slots == nil {
		slots = []scheduling.Slot{}
	}
	return ok(c, fiber.Map{"date": date, "slots": slots})
}
