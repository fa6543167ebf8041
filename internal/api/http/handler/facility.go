package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/internal/api/http/middleware"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/facility"
)

type FacilityHandler struct {
	svc facility.Service
}

func NewFacilityHandler(svc facility.Service) *FacilityHandler {
	return &FacilityHandler{svc: svc}
}

func mapFacilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, facility.ErrNotFound), errors.Is(err, facility.ErrResourceNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, facility.ErrNotOwner):
		return forbidden(c)
	case errors.Is(err, facility.ErrInvalidHours),
		errors.Is(err, facility.ErrInvalidWeekday),
		errors.Is(err, facility.ErrInvalidRate):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /facilities
func (h *FacilityHandler) Create(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Name string `json:"name"`
		Tier string `json:"tier"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" {
		return badRequest(c, "name is required")
	}

	tier := model.SubscriptionTier(body.Tier)
	if tier == "" {
		tier = model.TierStandard
	}

	fac, err := h.svc.Create(c.Context(), id.UserID, facility.CreateFacilityRequest{
		Name: body.Name,
		Tier: tier,
	})
	if err != nil {
		return mapFacilityError(c, err)
	}

	return created(c, fac)
}

// GET /facilities/:id
func (h *FacilityHandler) GetByID(c fiber.Ctx) error {
	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	fac, err := h.svc.GetByID(c.Context(), facilityID)
	if err != nil {
		return mapFacilityError(c, err)
	}

	return ok(c, fac)
}

// POST /facilities/:id/resources
func (h *FacilityHandler) CreateResource(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	var body struct {
		Name       string `json:"name"`
		Kind       string `json:"kind"`
		HourlyRate int64  `json:"hourly_rate"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.CreateResource(c.Context(), id.UserID, facilityID, facility.CreateResourceRequest{
		Name:       body.Name,
		Kind:       body.Kind,
		HourlyRate: body.HourlyRate,
	})
	if err != nil {
		return mapFacilityError(c, err)
	}

	return created(c, res)
}

// GET /facilities/:id/resources
func (h *FacilityHandler) ListResources(c fiber.Ctx) error {
	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	resources, err := h.svc.ListResources(c.Context(), facilityID)
	if err != nil {
		return mapFacilityError(c, err)
	}

	return ok(c, resources)
}

// DELETE /facilities/:id/resources/:resourceId
func (h *FacilityHandler) DeactivateResource(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}
	resourceID, err := uuid.Parse(c.Params("resourceId"))
	if err != nil {
		return badRequest(c, "invalid resource id")
	}

	if err := h.svc.DeactivateResource(c.Context(), id.UserID, facilityID, resourceID); err != nil {
		return mapFacilityError(c, err)
	}

	return noContent(c)
}

// PUT /facilities/:id/hours
func (h *FacilityHandler) SetHours(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	var body struct {
		Hours []struct {
			Weekday  int  `json:"weekday"`
			OpensAt  int  `json:"opens_at"`
			ClosesAt int  `json:"closes_at"`
			Closed   bool `json:"closed"`
		} `json:"hours"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.Hours) == 0 {
		return badRequest(c, "hours are required")
	}

	reqs := make([]facility.SetHoursRequest, 0, len(body.Hours))
	for _, hr := range body.Hours {
		reqs = append(reqs, facility.SetHoursRequest{
			Weekday:  hr.Weekday,
			OpensAt:  hr.OpensAt,
			ClosesAt: hr.ClosesAt,
			Closed:   hr.Closed,
		})
	}

	if err := h.svc.SetHours(c.Context(), id.UserID, facilityID, reqs); err != nil {
		return mapFacilityError(c, err)
	}

	return noContent(c)
}

// GET /facilities/:id/hours
func (h *FacilityHandler) ListHours(c fiber.Ctx) error {
	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	hours, err := h.svc.ListHours(c.Context(), facilityID)
	if err != nil {
		return mapFacilityError(c, err)
	}

	return ok(c, hours)
}

// POST /facilities/:id/blocked-dates
func (h *FacilityHandler) AddBlockedDate(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	var body struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	blocked, err := h.svc.AddBlockedDate(c.Context(), id.UserID, facilityID, body.Date, body.Reason)
	if err != nil {
		return mapFacilityError(c, err)
	}

	return created(c, blocked)
}

// DELETE /facilities/:id/blocked-dates/:date
func (h *FacilityHandler) RemoveBlockedDate(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	if err := h.svc.RemoveBlockedDate(c.Context(), id.UserID, facilityID, c.Params("date")); err != nil {
		return mapFacilityError(c, err)
	}

	return noContent(c)
}

// GET /facilities/:id/blocked-dates
func (h *FacilityHandler) ListBlockedDates(c fiber.Ctx) error {
	facilityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid facility id")
	}

	blocked, err := h.svc.ListBlockedDates(c.Context(), facilityID, c.Query("from"))
	if err != nil {
		return mapFacilityError(c, err)
	}

	return ok(c, blocked)
}
