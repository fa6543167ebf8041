package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/events"
	"github.com/playvenue/playvenue_backend/internal/service/facility"
	"github.com/playvenue/playvenue_backend/internal/service/notification"
	"github.com/playvenue/playvenue_backend/internal/service/recurring"
	"github.com/playvenue/playvenue_backend/internal/service/reservation"
	"github.com/playvenue/playvenue_backend/internal/service/scheduling"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideFacilityService,
		ProvideSchedulingService,
		ProvideWaitlistService,
		ProvideReservationService,
		ProvideRecurringService,
		ProvideNotificationService,
	),
)

func ProvideFacilityService(db *gorm.DB, authz authorize.IAuthorization) facility.Service {
	return facility.New(db, authz)
}

func ProvideSchedulingService(db *gorm.DB, rdb *redis.Client, cfg *config.Config) scheduling.Service {
	ttl := time.Duration(cfg.Booking.AvailabilityCacheTTLSeconds) * time.Second
	return scheduling.New(db, rdb, ttl)
}

func ProvideWaitlistService(db *gorm.DB, pub *events.Publisher) waitlist.Service {
	return waitlist.New(db, pub)
}

func ProvideReservationService(
	db *gorm.DB,
	schedSvc scheduling.Service,
	waitSvc waitlist.Service,
	pub *events.Publisher,
	cfg *config.Config,
) reservation.Service {
	return reservation.New(db, schedSvc, waitSvc, pub, cfg.Booking)
}

func ProvideRecurringService(db *gorm.DB, rsvSvc reservation.Service, cfg *config.Config) recurring.Service {
	return recurring.New(db, rsvSvc, cfg.Booking)
}

func ProvideNotificationService(db *gorm.DB) notification.Service {
	return notification.New(db)
}
