package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/internal/api/http/middleware"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/recurring"
)

type RecurringHandler struct {
	svc recurring.Service
}

func NewRecurringHandler(svc recurring.Service) *RecurringHandler {
	return &RecurringHandler{svc: svc}
}

func mapRecurringError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, recurring.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, recurring.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, recurring.ErrRuleNotActive), errors.Is(err, recurring.ErrRuleNotPaused):
		return conflict(c, err.Error())
	case errors.Is(err, recurring.ErrInvalidDate),
		errors.Is(err, recurring.ErrInvalidRange),
		errors.Is(err, recurring.ErrBadFrequency),
		errors.Is(err, recurring.ErrEndBeforeStart):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /recurring-rules
func (h *RecurringHandler) Create(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		ResourceID  string  `json:"resource_id"`
		StartDate   string  `json:"start_date"`
		StartMin    int     `json:"start_min"`
		DurationMin int     `json:"duration_min"`
		Frequency   string  `json:"frequency"`
		EndDate     *string `json:"end_date"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	resourceID, err := uuid.Parse(body.ResourceID)
	if err != nil {
		return badRequest(c, "invalid resource_id")
	}

	rule, report, err := h.svc.CreateRule(c.Context(), recurring.CreateRuleRequest{
		ResourceID:  resourceID,
		RequesterID: id.UserID,
		StartDate:   body.StartDate,
		StartMin:    body.StartMin,
		DurationMin: body.DurationMin,
		Frequency:   model.Frequency(body.Frequency),
		EndDate:     body.EndDate,
	})
	if err != nil {
		return mapRecurringError(c, err)
	}

	return created(c, fiber.Map{"rule": rule, "report": report})
}

// GET /recurring-rules
func (h *RecurringHandler) List(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	rules, err := h.svc.ListForRequester(c.Context(), id.UserID)
	if err != nil {
		return mapRecurringError(c, err)
	}

	return ok(c, rules)
}

// GET /recurring-rules/:id
func (h *RecurringHandler) GetByID(c fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	rule, err := h.svc.GetRule(c.Context(), ruleID)
	if err != nil {
		return mapRecurringError(c, err)
	}

	return ok(c, rule)
}

// PATCH /recurring-rules/:id/pause
func (h *RecurringHandler) Pause(c fiber.Ctx) error {
	return h.lifecycle(c, h.svc.Pause)
}

// PATCH /recurring-rules/:id/resume
func (h *RecurringHandler) Resume(c fiber.Ctx) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	report, err := h.svc.Resume(c.Context(), ruleID, id.UserID)
	if err != nil {
		return mapRecurringError(c, err)
	}

	return ok(c, fiber.Map{"report": report})
}

// PATCH /recurring-rules/:id/cancel
func (h *RecurringHandler) Cancel(c fiber.Ctx) error {
	return h.lifecycle(c, h.svc.Cancel)
}

func (h *RecurringHandler) lifecycle(c fiber.Ctx, op func(ctx context.Context, ruleID, callerID uuid.UUID) error) error {
	id, valid := middleware.IdentityFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	if err := op(c.Context(), ruleID, id.UserID); err != nil {
		return mapRecurringError(c, err)
	}

	return noContent(c)
}
