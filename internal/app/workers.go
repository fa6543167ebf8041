package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/events"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/notification"
	"github.com/playvenue/playvenue_backend/internal/service/recurring"
	"github.com/playvenue/playvenue_backend/internal/service/reservation"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
	"github.com/playvenue/playvenue_backend/pkg/email"
)

// WorkerModule registers the NATS event workers and the periodic sweeper.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc           fx.Lifecycle
	NC           *nats.Conn
	DB           *gorm.DB
	Cfg          *config.Config
	NotifSvc     notification.Service
	ReservSvc    reservation.Service
	RecurringSvc recurring.Service
	WaitlistSvc  waitlist.Service
	Email        *email.Client
}

func RegisterWorkers(p WorkerParams) {
	stop := make(chan struct{})
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startNotificationWorker(p.NC, p.DB, p.NotifSvc, p.Email)
			go runSweeper(stop, p.Cfg.Booking, p.ReservSvc, p.RecurringSvc, p.WaitlistSvc)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			// NATS drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

// startNotificationWorker fans booking lifecycle events out to in-app
// notifications and, when the booking carries a contact address, email.
func startNotificationWorker(nc *nats.Conn, db *gorm.DB, notifSvc notification.Service, mailer *email.Client) {
	_, err := nc.Subscribe(events.SubjectReservationCreated+".*", func(msg *nats.Msg) {
		var evt events.ReservationEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			slog.Warn("notification_worker: bad reservation.created payload", "err", err)
			return
		}
		handleReservationEvent(db, notifSvc, mailer, evt, "reservation_created", "Booking confirmed")
	})
	if err != nil {
		slog.Error("notification_worker: subscribe reservation.created failed", "err", err)
	}

	_, err = nc.Subscribe(events.SubjectReservationCancelled+".*", func(msg *nats.Msg) {
		var evt events.ReservationEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			slog.Warn("notification_worker: bad reservation.cancelled payload", "err", err)
			return
		}
		handleReservationEvent(db, notifSvc, mailer, evt, "reservation_cancelled", "Booking cancelled")
	})
	if err != nil {
		slog.Error("notification_worker: subscribe reservation.cancelled failed", "err", err)
	}

	_, err = nc.Subscribe(events.SubjectWaitlistPromoted+".*", func(msg *nats.Msg) {
		var evt events.WaitlistEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			slog.Warn("notification_worker: bad waitlist.promoted payload", "err", err)
			return
		}
		handleWaitlistEvent(db, notifSvc, mailer, evt)
	})
	if err != nil {
		slog.Error("notification_worker: subscribe waitlist.promoted failed", "err", err)
	}

	slog.Info("notification_worker: started")
}

func handleReservationEvent(db *gorm.DB, notifSvc notification.Service, mailer *email.Client, evt events.ReservationEvent, kind, title string) {
	requesterID, err := uuid.Parse(evt.RequesterID)
	if err != nil {
		return
	}
	ctx := context.Background()

	_, err = notifSvc.Create(ctx, notification.CreateRequest{
		UserID: requesterID,
		Type:   kind,
		Title:  title,
		Data: map[string]any{
			"reservation_id": evt.ReservationID,
			"resource_id":    evt.ResourceID,
			"date":           evt.Date,
			"start_min":      evt.StartMin,
			"end_min":        evt.EndMin,
		},
	})
	if err != nil {
		slog.Warn("notification_worker: create notification failed", "kind", kind, "err", err)
	}

	if evt.ContactEmail == "" {
		return
	}

	var rsv model.Reservation
	if err := db.WithContext(ctx).First(&rsv, "id = ?", evt.ReservationID).Error; err != nil {
		slog.Warn("notification_worker: reservation not found", "id", evt.ReservationID, "err", err)
		return
	}
	data, err := emailData(ctx, db, evt.ContactEmail, rsv.ResourceID, evt.Date, evt.StartMin, evt.EndMin)
	if err != nil {
		slog.Warn("notification_worker: build email data failed", "err", err)
		return
	}
	data.TotalCharged = fmt.Sprintf("%d.%02d", rsv.TotalCharged/100, rsv.TotalCharged%100)

	var m email.Message
	if kind == "reservation_created" {
		m = email.BuildReservationConfirmedEmail(data)
	} else {
		m = email.BuildReservationCancelledEmail(data)
	}
	if err := mailer.Send(ctx, m); err != nil {
		slog.Warn("notification_worker: send email failed", "kind", kind, "err", err)
	}
}

func handleWaitlistEvent(db *gorm.DB, notifSvc notification.Service, mailer *email.Client, evt events.WaitlistEvent) {
	requesterID, err := uuid.Parse(evt.RequesterID)
	if err != nil {
		return
	}
	ctx := context.Background()

	_, err = notifSvc.Create(ctx, notification.CreateRequest{
		UserID: requesterID,
		Type:   "waitlist_promoted",
		Title:  "Your slot opened up",
		Data: map[string]any{
			"entry_id":    evt.EntryID,
			"resource_id": evt.ResourceID,
			"date":        evt.Date,
			"start_min":   evt.StartMin,
			"end_min":     evt.EndMin,
		},
	})
	if err != nil {
		slog.Warn("notification_worker: create waitlist notification failed", "err", err)
	}

	if evt.ContactEmail == "" {
		return
	}
	resourceID, err := uuid.Parse(evt.ResourceID)
	if err != nil {
		return
	}
	data, err := emailData(ctx, db, evt.ContactEmail, resourceID, evt.Date, evt.StartMin, evt.EndMin)
	if err != nil {
		slog.Warn("notification_worker: build email data failed", "err", err)
		return
	}
	if err := mailer.Send(ctx, email.BuildWaitlistPromotedEmail(data)); err != nil {
		slog.Warn("notification_worker: send waitlist email failed", "err", err)
	}
}

func emailData(ctx context.Context, db *gorm.DB, to string, resourceID uuid.UUID, date string, startMin, endMin int) (email.ReservationEmailData, error) {
	var resource model.Resource
	if err := db.WithContext(ctx).First(&resource, "id = ?", resourceID).Error; err != nil {
		return email.ReservationEmailData{}, err
	}
	var fac model.Facility
	if err := db.WithContext(ctx).First(&fac, "id = ?", resource.FacilityID).Error; err != nil {
		return email.ReservationEmailData{}, err
	}
	return email.ReservationEmailData{
		Email:        to,
		FacilityName: fac.Name,
		ResourceName: resource.Name,
		Date:         date,
		StartTime:    email.FormatMinutes(startMin),
		EndTime:      email.FormatMinutes(endMin),
	}, nil
}

// ---------------------------------------------------------------------------
// sweeper
// ---------------------------------------------------------------------------

// runSweeper periodically expires stale waitlist entries, completes past
// reservations and rolls recurring rules forward.
func runSweeper(stop <-chan struct{}, booking config.BookingConfig, rsvSvc reservation.Service, recSvc recurring.Service, waitSvc waitlist.Service) {
	interval := time.Duration(booking.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("sweeper: started", "interval", interval)
	for {
		select {
		case <-stop:
			slog.Info("sweeper: stopped")
			return
		case <-ticker.C:
			sweepOnce(rsvSvc, recSvc, waitSvc)
		}
	}
}

func sweepOnce(rsvSvc reservation.Service, recSvc recurring.Service, waitSvc waitlist.Service) {
	ctx := context.Background()
	today := model.Today()

	if n, err := waitSvc.SweepExpired(ctx, today); err != nil {
		slog.Error("sweeper: waitlist sweep failed", "err", err)
	} else if n > 0 {
		slog.Info("sweeper: expired waitlist entries", "count", n)
	}

	if n, err := rsvSvc.CompletePast(ctx, today); err != nil {
		slog.Error("sweeper: completion sweep failed", "err", err)
	} else if n > 0 {
		slog.Info("sweeper: completed past reservations", "count", n)
	}

	report, err := recSvc.MaterializeDue(ctx, today)
	if err != nil {
		slog.Error("sweeper: recurring materialization failed", "err", err)
		return
	}
	if report.Created > 0 {
		slog.Info("sweeper: materialized recurring occurrences",
			"attempted", report.Attempted, "created", report.Created, "skipped", report.Skipped)
	}
}
