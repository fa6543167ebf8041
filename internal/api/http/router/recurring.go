package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

func (r *Router) registerRecurringRoutes(
	api fiber.Router,
	rh *handler.RecurringHandler,
	identityRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	rules := api.Group("/recurring-rules", identityRequired)

	rules.Get("/", requirePerm(authorize.ResourceRecurringRule, authorize.ActionList), rh.List)
	rules.Post("/", requirePerm(authorize.ResourceRecurringRule, authorize.ActionCreate), rh.Create)

	one := rules.Group("/:id")
	one.Get("/", requirePerm(authorize.ResourceRecurringRule, authorize.ActionRead), rh.GetByID)
	one.Patch("/pause", requirePerm(authorize.ResourceRecurringRule, authorize.ActionUpdate), rh.Pause)
	one.Patch("/resume", requirePerm(authorize.ResourceRecurringRule, authorize.ActionUpdate), rh.Resume)
	one.Patch("/cancel", requirePerm(authorize.ResourceRecurringRule, authorize.ActionCancel), rh.Cancel)
}
