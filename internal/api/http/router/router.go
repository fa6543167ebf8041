package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/api/http/handler"
	"github.com/playvenue/playvenue_backend/internal/api/http/middleware"
	"github.com/playvenue/playvenue_backend/internal/service/facility"
	"github.com/playvenue/playvenue_backend/internal/service/notification"
	"github.com/playvenue/playvenue_backend/internal/service/recurring"
	"github.com/playvenue/playvenue_backend/internal/service/reservation"
	"github.com/playvenue/playvenue_backend/internal/service/scheduling"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	Auth            authorize.IAuthorization
	FacilitySvc     facility.Service
	SchedulingSvc   scheduling.Service
	ReservationSvc  reservation.Service
	RecurringSvc    recurring.Service
	WaitlistSvc     waitlist.Service
	NotificationSvc notification.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	identity := middleware.Identity()
	identityRequired := middleware.IdentityRequired()

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	facilityH := handler.NewFacilityHandler(r.p.FacilitySvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.SchedulingSvc)
	reservationH := handler.NewReservationHandler(r.p.ReservationSvc)
	recurringH := handler.NewRecurringHandler(r.p.RecurringSvc)
	waitlistH := handler.NewWaitlistHandler(r.p.WaitlistSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)

	api := app.Group("/api/v1", identity)

	// 4. Delegate to sub-files
	r.registerFacilityRoutes(api, facilityH, identityRequired, requirePerm)
	r.registerAvailabilityRoutes(api, availabilityH)
	r.registerReservationRoutes(api, reservationH, identityRequired, requirePerm)
	r.registerRecurringRoutes(api, recurringH, identityRequired, requirePerm)
	r.registerWaitlistRoutes(api, waitlistH, identityRequired, requirePerm)
	r.registerNotificationRoutes(api, notificationH, identityRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
