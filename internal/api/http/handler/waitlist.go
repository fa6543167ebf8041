package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/internal/api/http/middleware"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
)

type WaitlistHandler struct {
	svc waitlist.Service
}

func NewWaitlistHandler(svc waitlist.Service) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

func mapWaitlistError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, waitlist.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, waitlist.ErrDuplicateEntry):
		return conflict(c, err.Error())
	case errors.Is(err, waitlist.ErrSlotNotFull):
		return conflict(c, err.Error())
	case errors.Is(err, waitlist.ErrInvalidRange):
		return badRequest(c, err.Error())
	case errors.Is(err, waitlist.ErrForbidden):
		return forbidden(c)
	default:
		return internalError(c)
	}
}

// POST /waitlist
func (h *WaitlistHandler) Join(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		ResourceID   string `json:"resource_id"`
		Date         string `json:"date"`
		StartMin     int    `json:"start_min"`
		EndMin       int    `json:"end_min"`
		ContactEmail string `json:"contact_email"`
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

	entry, err := h.svc.Join(c.Context(), waitlist.JoinRequest{
		ResourceID:   resourceID,
		Date:         body.Date,
		StartMin:     body.StartMin,
		EndMin:       body.EndMin,
		RequesterID:  id.UserID,
		ContactEmail: body.ContactEmail,
	})
	if err != nil {
		return mapWaitlistError(c, err)
	}

	return created(c, entry)
}

// GET /waitlist
func (h *WaitlistHandler) List(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	entries, err := h.svc.ListForRequester(c.Context(), id.UserID)
	if err != nil {
		return mapWaitlistError(c, err)
	}

	return ok(c, entries)
}

// PATCH /waitlist/:id/book
func (h *WaitlistHandler) MarkBooked(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid waitlist entry id")
	}

	if err := h.svc.MarkBooked(c.Context(), entryID, id.UserID); err != nil {
		return mapWaitlistError(c, err)
	}

	return noContent(c)
}
