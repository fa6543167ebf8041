package reservation

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/events"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/pricing"
	"github.com/playvenue/playvenue_backend/internal/service/scheduling"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	ResourceID  uuid.UUID
	Date        string
	StartMin    int
	EndMin      int
	RequesterID uuid.UUID
	// ContactEmail is an optional address for receipts; the engine stores
	// it verbatim and never validates deliverability.
	ContactEmail string
	// HourlyRateOverride and TakeRateOverride replace the live resource
	// rate and tier rate when set. Recurring materialization fills them
	// from the rule's frozen snapshot so later tier or price changes
	// never reprice existing schedules.
	HourlyRateOverride *int64
	TakeRateOverride   *int
	// PaymentRef is the opaque reference handed over by the payment
	// collaborator; may be empty when capture is still pending.
	PaymentRef *string
	// RecurringRuleID links occurrences materialized from a rule.
	RecurringRuleID *uuid.UUID
}

type ListRequest struct {
	RequesterID *uuid.UUID
	ResourceID  *uuid.UUID
	FacilityID  *uuid.UUID
	Status      *model.ReservationStatus
	From        *string
	To          *string
	Page        int
	PerPage     int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create validates the slot against the resource's operating calendar
	// and inserts the reservation behind an atomic conflict check. Two
	// concurrent creates for overlapping intervals on the same
	// (resource, date) can never both succeed; the loser gets ErrSlotTaken.
	Create(ctx context.Context, req CreateRequest) (*model.Reservation, error)

	// Cancel is allowed to the original requester or the facility owner.
	// It marks a paid reservation refunded and promotes the freed slot's
	// waitlist before returning; promotion failure never rolls it back.
	Cancel(ctx context.Context, reservationID, callerID uuid.UUID) error

	// Complete and MarkNoShow are staff transitions. The caller acts for
	// one facility and may only touch reservations booked at it.
	Complete(ctx context.Context, reservationID, facilityID uuid.UUID) error
	MarkNoShow(ctx context.Context, reservationID, facilityID uuid.UUID) error

	GetByID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error)
	ListForResourceAndDate(ctx context.Context, resourceID uuid.UUID, date string) ([]*model.Reservation, error)
	List(ctx context.Context, req ListRequest) ([]*model.Reservation, error)

	// CompletePast transitions confirmed reservations whose date has
	// passed to completed. Driven by the sweeper.
	CompletePast(ctx context.Context, today string) (int64, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type reservationService struct {
	db       *gorm.DB
	schedSvc scheduling.Service
	waitSvc  waitlist.Service
	pub      *events.Publisher
	booking  config.BookingConfig
}

func New(db *gorm.DB, schedSvc scheduling.Service, waitSvc waitlist.Service, pub *events.Publisher, booking config.BookingConfig) Service {
	return &reservationService{
		db:       db,
		schedSvc: schedSvc,
		waitSvc:  waitSvc,
		pub:      pub,
		booking:  booking,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *reservationService) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if _, err := model.ParseDate(req.Date); err != nil {
		return nil, err
	}
	if req.StartMin >= req.EndMin {
		return nil, ErrInvalidRange
	}

	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, "id = ?", req.ResourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load resource: %w", err)
	}
	if !resource.Active {
		return nil, ErrResourceInactive
	}

	var facility model.Facility
	if err := s.db.WithContext(ctx).First(&facility, "id = ?", resource.FacilityID).Error; err != nil {
		return nil, fmt.Errorf("load facility: %w", err)
	}

	hours, blocked, err := s.schedSvc.HoursFor(ctx, resource.FacilityID, req.Date)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrDateBlocked
	}
	if !scheduling.WithinHours(hours, req.StartMin, req.EndMin) {
		return nil, ErrOutsideHours
	}

	rate := resource.HourlyRate
	if req.HourlyRateOverride != nil {
		rate = *req.HourlyRateOverride
	}
	takeRate := pricing.TakeRateForTier(facility.Tier, s.booking)
	if req.TakeRateOverride != nil {
		takeRate = *req.TakeRateOverride
	}
	quote := pricing.Quote(rate, req.EndMin-req.StartMin, takeRate, s.booking.FlatFee)

	rsv := &model.Reservation{
		ID:              uuid.New(),
		ResourceID:      resource.ID,
		FacilityID:      resource.FacilityID,
		Date:            req.Date,
		StartMin:        req.StartMin,
		EndMin:          req.EndMin,
		RequesterID:     req.RequesterID,
		ContactEmail:    req.ContactEmail,
		Status:          model.ReservationConfirmed,
		BaseAmount:      quote.BaseAmount,
		PlatformFee:     quote.PlatformFee,
		TakeAmount:      quote.TakeAmount,
		OwnerPayout:     quote.OwnerPayout,
		TotalCharged:    quote.TotalCharged,
		TakeRatePercent: quote.TakeRatePercent,
		PaymentStatus:   model.PaymentPending,
		RecurringRuleID: req.RecurringRuleID,
	}
	if req.PaymentRef != nil && *req.PaymentRef != "" {
		rsv.PaymentRef = req.PaymentRef
		rsv.PaymentStatus = model.PaymentPaid
	}

	retries := s.booking.CreateRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		lastErr = s.createWithNoOverlap(ctx, rsv)
		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, ErrSlotTaken) || !isSerializationFailure(lastErr) {
			return nil, lastErr
		}
		// Lost the transactional race; back off briefly and retry.
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.schedSvc.InvalidateAvailability(ctx, rsv.ResourceID, rsv.Date)
	s.pub.Publish(ctx, events.SubjectReservationCreated, rsv.ID.String(), reservationEvent(rsv))

	slog.Info("reservation created",
		"reservation_id", rsv.ID,
		"resource_id", rsv.ResourceID,
		"date", rsv.Date,
		"start_min", rsv.StartMin,
		"total_charged", rsv.TotalCharged,
	)
	return rsv, nil
}

// createWithNoOverlap runs the conflict check and insert as one transaction.
// Row locks cannot guard an empty slot, so on postgres the transaction takes
// an advisory lock keyed on (resource, date) before checking: concurrent
// creates for the same calendar day serialize even when no candidate rows
// exist yet, while distinct resources or dates never contend. sqlite has no
// advisory locks; its single-writer transaction lock serializes instead.
func (s *reservationService) createWithNoOverlap(ctx context.Context, rsv *model.Reservation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			err := tx.Exec("SELECT pg_advisory_xact_lock(?)", slotLockKey(rsv.ResourceID, rsv.Date)).Error
			if err != nil {
				return fmt.Errorf("acquire slot lock: %w", err)
			}
		}

		var existing model.Reservation
		err := tx.Model(&model.Reservation{}).
			Where("resource_id = ? AND date = ? AND status = ?",
				rsv.ResourceID, rsv.Date, model.ReservationConfirmed).
			Where("start_min < ? AND end_min > ?", rsv.EndMin, rsv.StartMin).
			Take(&existing).Error

		if err == nil {
			return ErrSlotTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("conflict check: %w", err)
		}

		return tx.Create(rsv).Error
	})
}

// slotLockKey derives the advisory lock key for one resource's calendar day.
// The key must be stable across processes, so it hashes the textual identity.
// A hash collision only widens the critical section, it never loses safety.
func slotLockKey(resourceID uuid.UUID, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(resourceID.String()))
	h.Write([]byte{'|'})
	h.Write([]byte(date))
	return int64(h.Sum64())
}

// isSerializationFailure matches the transient lock/serialization errors
// worth one more attempt. Everything else surfaces immediately.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") || // serialization_failure
		strings.Contains(msg, "40P01") || // deadlock_detected
		strings.Contains(msg, "database is locked") // sqlite under test
}

// ---------------------------------------------------------------------------
// Cancel
// ---------------------------------------------------------------------------

func (s *reservationService) Cancel(ctx context.Context, reservationID, callerID uuid.UUID) error {
	rsv, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if rsv.RequesterID != callerID {
		var facility model.Facility
		if err := s.db.WithContext(ctx).First(&facility, "id = ?", rsv.FacilityID).Error; err != nil {
			return fmt.Errorf("load facility: %w", err)
		}
		if facility.OwnerID != callerID {
			return ErrForbidden
		}
	}

	if rsv.Status != model.ReservationConfirmed {
		return ErrInvalidTransition
	}

	requestedBy := model.CancelByRequester
	if rsv.RequesterID != callerID {
		requestedBy = model.CancelByFacility
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":              model.ReservationCancelled,
		"cancelled_at":        now,
		"cancel_requested_by": requestedBy,
	}
	// Refund is recorded, not executed: the payment collaborator settles it.
	if rsv.PaymentStatus == model.PaymentPaid {
		updates["payment_status"] = model.PaymentRefunded
	}

	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND status = ?", reservationID, model.ReservationConfirmed).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("cancel reservation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	s.schedSvc.InvalidateAvailability(ctx, rsv.ResourceID, rsv.Date)

	// The cancellation stands regardless of what happens here.
	if _, err := s.waitSvc.PromoteOnCancellation(ctx, rsv.ResourceID, rsv.Date, rsv.StartMin, rsv.EndMin); err != nil {
		slog.Error("waitlist promotion failed after cancellation",
			"reservation_id", reservationID,
			"resource_id", rsv.ResourceID,
			"date", rsv.Date,
			"err", err,
		)
	}

	s.pub.Publish(ctx, events.SubjectReservationCancelled, rsv.ID.String(), reservationEvent(rsv))

	slog.Info("reservation cancelled",
		"reservation_id", reservationID,
		"requested_by", requestedBy,
	)
	return nil
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

func (s *reservationService) Complete(ctx context.Context, reservationID, facilityID uuid.UUID) error {
	return s.transition(ctx, reservationID, facilityID, model.ReservationCompleted)
}

func (s *reservationService) MarkNoShow(ctx context.Context, reservationID, facilityID uuid.UUID) error {
	return s.transition(ctx, reservationID, facilityID, model.ReservationNoShow)
}

// transition moves confirmed -> to. Any other source state is an error,
// never a silent no-op. The caller's facility must own the reservation.
func (s *reservationService) transition(ctx context.Context, reservationID, facilityID uuid.UUID, to model.ReservationStatus) error {
	rsv, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if rsv.FacilityID != facilityID {
		return ErrForbidden
	}

	updates := map[string]any{"status": to}
	if to == model.ReservationCompleted {
		updates["completed_at"] = time.Now().UTC()
	}

	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND status = ?", reservationID, model.ReservationConfirmed).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
			Where("id = ?", reservationID).Count(&count).Error; err != nil {
			return fmt.Errorf("check reservation: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (s *reservationService) GetByID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error) {
	var rsv model.Reservation
	if err := s.db.WithContext(ctx).First(&rsv, "id = ?", reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &rsv, nil
}

func (s *reservationService) ListForResourceAndDate(ctx context.Context, resourceID uuid.UUID, date string) ([]*model.Reservation, error) {
	var out []*model.Reservation
	err := s.db.WithContext(ctx).
		Where("resource_id = ? AND date = ? AND status <> ?", resourceID, date, model.ReservationCancelled).
		Order("start_min ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (s *reservationService) List(ctx context.Context, req ListRequest) ([]*model.Reservation, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	offset := (req.Page - 1) * req.PerPage

	q := s.db.WithContext(ctx).Model(&model.Reservation{})
	if req.RequesterID != nil {
		q = q.Where("requester_id = ?", *req.RequesterID)
	}
	if req.ResourceID != nil {
		q = q.Where("resource_id = ?", *req.ResourceID)
	}
	if req.FacilityID != nil {
		q = q.Where("facility_id = ?", *req.FacilityID)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.From != nil {
		q = q.Where("date >= ?", *req.From)
	}
	if req.To != nil {
		q = q.Where("date < ?", *req.To)
	}

	var out []*model.Reservation
	err := q.Order("date DESC, start_min DESC").
		Offset(offset).Limit(req.PerPage).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (s *reservationService) CompletePast(ctx context.Context, today string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("status = ? AND date < ?", model.ReservationConfirmed, today).
		Updates(map[string]any{
			"status":       model.ReservationCompleted,
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("complete past reservations: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func reservationEvent(rsv *model.Reservation) events.ReservationEvent {
	return events.ReservationEvent{
		ReservationID: rsv.ID.String(),
		ResourceID:    rsv.ResourceID.String(),
		FacilityID:    rsv.FacilityID.String(),
		RequesterID:   rsv.RequesterID.String(),
		Date:          rsv.Date,
		StartMin:      rsv.StartMin,
		EndMin:        rsv.EndMin,
		ContactEmail:  rsv.ContactEmail,
	}
}
