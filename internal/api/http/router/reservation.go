package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

func (r *Router) registerReservationRoutes(
	api fiber.Router,
	rh *handler.ReservationHandler,
	identityRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	rsvs := api.Group("/reservations", identityRequired)

	rsvs.Get("/", requirePerm(authorize.ResourceReservation, authorize.ActionList), rh.List)
	rsvs.Post("/", requirePerm(authorize.ResourceReservation, authorize.ActionCreate), rh.Create)

	one := rsvs.Group("/:id")
	one.Get("/", requirePerm(authorize.ResourceReservation, authorize.ActionRead), rh.GetByID)
	one.Patch("/cancel", requirePerm(authorize.ResourceReservation, authorize.ActionCancel), rh.Cancel)
	one.Patch("/complete", requirePerm(authorize.ResourceReservation, authorize.ActionComplete), rh.Complete)
	one.Patch("/no-show", requirePerm(authorize.ResourceReservation, authorize.ActionComplete), rh.MarkNoShow)
}
