package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/internal/model"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// AvailableSlots resolves the bookable slot list for a resource on a
	// date: calendar capacity minus confirmed occupancy. Read-only; it may
	// race with concurrent bookings, the store stays the source of truth.
	AvailableSlots(ctx context.Context, resourceID uuid.UUID, date string) ([]Slot, error)

	// HoursFor returns the operating-hours row for the date's weekday and
	// whether the date is blocked, for the resource's owning facility.
	HoursFor(ctx context.Context, facilityID uuid.UUID, date string) (*model.FacilityHours, bool, error)

	// InvalidateAvailability drops the cached snapshot for a slot key.
	// Called by the store after a successful create or cancel.
	InvalidateAvailability(ctx context.Context, resourceID uuid.UUID, date string)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// New builds the resolver. rdb may be nil; caching is then disabled.
func New(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) Service {
	return &schedulingService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func availabilityKey(resourceID uuid.UUID, date string) string {
	return fmt.Sprintf("avail:%s:%s", resourceID, date)
}

func (s *schedulingService) AvailableSlots(ctx context.Context, resourceID uuid.UUID, date string) ([]Slot, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	if cached, ok := s.cacheGet(ctx, resourceID, date); ok {
		return cached, nil
	}

	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, "id = ? AND active = ?", resourceID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("load resource: %w", err)
	}

	hours, blocked, err := s.HoursFor(ctx, resource.FacilityID, date)
	if err != nil {
		return nil, err
	}

	slots := SlotsForDay(hours, blocked)
	if len(slots) == 0 {
		s.cacheSet(ctx, resourceID, date, []Slot{})
		return []Slot{}, nil
	}

	booked, err := s.bookedIntervals(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	slots = MarkBooked(slots, booked)
	s.cacheSet(ctx, resourceID, date, slots)
	return slots, nil
}

func (s *schedulingService) HoursFor(ctx context.Context, facilityID uuid.UUID, date string) (*model.FacilityHours, bool, error) {
	weekday := model.WeekdayOf(date)

	var hours model.FacilityHours
	err := s.db.WithContext(ctx).
		Where("facility_id = ? AND weekday = ?", facilityID, weekday).
		First(&hours).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No hours row means the facility never opens that weekday.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load hours: %w", err)
	}

	var blockedCount int64
	err = s.db.WithContext(ctx).Model(&model.BlockedDate{}).
		Where("facility_id = ? AND date = ?", facilityID, date).
		Count(&blockedCount).Error
	if err != nil {
		return nil, false, fmt.Errorf("check blocked date: %w", err)
	}

	return &hours, blockedCount > 0, nil
}

func (s *schedulingService) bookedIntervals(ctx context.Context, resourceID uuid.UUID, date string) ([]*model.Reservation, error) {
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

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func (s *schedulingService) cacheGet(ctx context.Context, resourceID uuid.UUID, date string) ([]Slot, bool) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, availabilityKey(resourceID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (s *schedulingService) cacheSet(ctx context.Context, resourceID uuid.UUID, date string, slots []Slot) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, availabilityKey(resourceID, date), raw, s.cacheTTL).Err(); err != nil {
		slog.Debug("availability cache set failed", "err", err)
	}
}

func (s *schedulingService) InvalidateAvailability(ctx context.Context, resourceID uuid.UUID, date string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, availabilityKey(resourceID, date)).Err(); err != nil {
		slog.Debug("availability cache invalidate failed", "err", err)
	}
}
