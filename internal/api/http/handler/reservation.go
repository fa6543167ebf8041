package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/internal/api/http/middleware"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/reservation"
)

type ReservationHandler struct {
	svc reservation.Service
}

func NewReservationHandler(svc reservation.Service) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func mapReservationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, reservation.ErrSlotTaken):
		return conflict(c, err.Error())
	case errors.Is(err, reservation.ErrInvalidTransition):
		return conflict(c, err.Error())
	case errors.Is(err, reservation.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, reservation.ErrInvalidRange),
		errors.Is(err, reservation.ErrOutsideHours),
		errors.Is(err, reservation.ErrDateBlocked),
		errors.Is(err, reservation.ErrResourceInactive):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /reservations
func (h *ReservationHandler) Create(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		ResourceID   string  `json:"resource_id"`
		Date         string  `json:"date"`
		StartMin     int     `json:"start_min"`
		EndMin       int     `json:"end_min"`
		PaymentRef   *string `json:"payment_ref"`
		ContactEmail string  `json:"contact_email"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	resourceID, err := uuid.Parse(body.ResourceID)
	if err != nil {
		return badRequest(c, "invalid resource_id")
	}
	if _, err := model.ParseDate(body.Date); err != nil {
		return badRequest(c, "invalid date")
	}

	rsv, err := h.svc.Create(c.Context(), reservation.CreateRequest{
		ResourceID:   resourceID,
		Date:         body.Date,
		StartMin:     body.StartMin,
		EndMin:       body.EndMin,
		RequesterID:  id.UserID,
		ContactEmail: body.ContactEmail,
		PaymentRef:   body.PaymentRef,
	})
	if err != nil {
		return mapReservationError(c, err)
	}

	return created(c, rsv)
}

// GET /reservations
func (h *ReservationHandler) List(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		ResourceID string `query:"resource_id"`
		Status     string `query:"status"`
		From       string `query:"from"`
		To         string `query:"to"`
		Page       int    `query:"page"`
		PerPage    int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	req := reservation.ListRequest{
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	// Facility-scoped callers see the venue's calendar; players see their own.
	if id.FacilityID != nil {
		req.FacilityID = id.FacilityID
	} else {
		req.RequesterID = &id.UserID
	}
	if q.ResourceID != "" {
		rid, err := uuid.Parse(q.ResourceID)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		req.ResourceID = &rid
	}
	if q.Status != "" {
		status := model.ReservationStatus(q.Status)
		req.Status = &status
	}
	if q.From != "" {
		req.From = &q.From
	}
	if q.To != "" {
		req.To = &q.To
	}

	rsvs, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapReservationError(c, err)
	}

	return ok(c, rsvs)
}

// GET /reservations/:id
func (h *ReservationHandler) GetByID(c fiber.Ctx) error {
	rsvID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid reservation id")
	}

	rsv, err := h.svc.GetByID(c.Context(), rsvID)
	if err != nil {
		return mapReservationError(c, err)
	}

	return ok(c, rsv)
}

// PATCH /reservations/:id/cancel
func (h *ReservationHandler) Cancel(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	rsvID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid reservation id")
	}

	if err := h.svc.Cancel(c.Context(), rsvID, id.UserID); err != nil {
		return mapReservationError(c, err)
	}

	return noContent(c)
}

// PATCH /reservations/:id/complete
func (h *ReservationHandler) Complete(c fiber.Ctx) error {
	return h.staffTransition(c, h.svc.Complete)
}

// PATCH /reservations/:id/no-show
func (h *ReservationHandler) MarkNoShow(c fiber.Ctx) error {
	return h.staffTransition(c, h.svc.MarkNoShow)
}

// staffTransition wraps the facility-scoped transitions. The gateway's
// facility header names the facility the caller acts for; without one
// there is nothing to scope the transition to.
func (h *ReservationHandler) staffTransition(c fiber.Ctx, op func(ctx context.Context, reservationID, facilityID uuid.UUID) error) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}
	if id.FacilityID == nil {
		return forbidden(c)
	}

	rsvID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid reservation id")
	}

	if err := op(c.Context(), rsvID, *id.FacilityID); err != nil {
		return mapReservationError(c, err)
	}

	return noContent(c)
}
