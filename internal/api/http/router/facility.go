package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

func (r *Router) registerFacilityRoutes(
	api fiber.Router,
	fh *handler.FacilityHandler,
	identityRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	facilities := api.Group("/facilities")

	// Public browsing
	facilities.Get("/:id", fh.GetByID)
	facilities.Get("/:id/resources", fh.ListResources)
	facilities.Get("/:id/hours", fh.ListHours)
	facilities.Get("/:id/blocked-dates", fh.ListBlockedDates)

	// Owner operations
	facilities.Post("/", identityRequired, requirePerm(authorize.ResourceFacility, authorize.ActionCreate), fh.Create)

	f := facilities.Group("/:id", identityRequired)
	f.Post("/resources", requirePerm(authorize.ResourceCourt, authorize.ActionCreate), fh.CreateResource)
	f.Delete("/resources/:resourceId", requirePerm(authorize.ResourceCourt, authorize.ActionDelete), fh.DeactivateResource)
	f.Put("/hours", requirePerm(authorize.ResourceHours, authorize.ActionUpdate), fh.SetHours)
	f.Post("/blocked-dates", requirePerm(authorize.ResourceBlockedDate, authorize.ActionCreate), fh.AddBlockedDate)
	f.Delete("/blocked-dates/:date", requirePerm(authorize.ResourceBlockedDate, authorize.ActionDelete), fh.RemoveBlockedDate)
}
