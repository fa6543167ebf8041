package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

func (r *Router) registerWaitlistRoutes(
	api fiber.Router,
	wh *handler.WaitlistHandler,
	identityRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	wl := api.Group("/waitlist", identityRequired)

	wl.Get("/", requirePerm(authorize.ResourceWaitlist, authorize.ActionRead), wh.List)
	wl.Post("/", requirePerm(authorize.ResourceWaitlist, authorize.ActionCreate), wh.Join)
	wl.Patch("/:id/book", requirePerm(authorize.ResourceWaitlist, authorize.ActionUpdate), wh.MarkBooked)
}
