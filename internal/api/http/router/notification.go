package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	identityRequired fiber.Handler,
) {
	notifs := api.Group("/notifications", identityRequired)

	notifs.Get("/", nh.List)
	notifs.Patch("/read-all", nh.MarkAllRead)
	notifs.Patch("/:id/read", nh.MarkRead)
}
