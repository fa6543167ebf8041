package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/internal/events"
	"github.com/playvenue/playvenue_backend/internal/model"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type JoinRequest struct {
	ResourceID   uuid.UUID
	Date         string
	StartMin     int
	EndMin       int
	RequesterID  uuid.UUID
	ContactEmail string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Join(ctx context.Context, req JoinRequest) (*model.WaitlistEntry, error)

	// PromoteOnCancellation marks the longest-waiting entry for the exact
	// freed slot as notified. Promotion never auto-books: the promoted
	// player still goes through the store's conflict-checked create.
	PromoteOnCancellation(ctx context.Context, resourceID uuid.UUID, date string, startMin, endMin int) (*model.WaitlistEntry, error)

	// MarkBooked flips a notified entry after its owner completed a
	// booking. Only the entry's own requester may flip it.
	MarkBooked(ctx context.Context, entryID, callerID uuid.UUID) error

	ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.WaitlistEntry, error)

	// SweepExpired expires every waiting/notified entry whose date has
	// passed. Returns the number of rows swept.
	SweepExpired(ctx context.Context, today string) (int64, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type waitlistService struct {
	db  *gorm.DB
	pub *events.Publisher
}

func New(db *gorm.DB, pub *events.Publisher) Service {
	return &waitlistService{db: db, pub: pub}
}

func (s *waitlistService) Join(ctx context.Context, req JoinRequest) (*model.WaitlistEntry, error) {
	if _, err := model.ParseDate(req.Date); err != nil {
		return nil, err
	}
	if req.StartMin >= req.EndMin {
		return nil, ErrInvalidRange
	}

	// One active entry per (resource, date, slot, requester).
	var dup int64
	err := s.db.WithContext(ctx).Model(&model.WaitlistEntry{}).
		Where("resource_id = ? AND date = ? AND start_min = ? AND requester_id = ?",
			req.ResourceID, req.Date, req.StartMin, req.RequesterID).
		Where("status IN ?", []model.WaitlistStatus{model.WaitlistWaiting, model.WaitlistNotified}).
		Count(&dup).Error
	if err != nil {
		return nil, fmt.Errorf("check duplicate entry: %w", err)
	}
	if dup > 0 {
		return nil, ErrDuplicateEntry
	}

	// Joining only makes sense when the slot is actually taken.
	var occupied int64
	err = s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("resource_id = ? AND date = ? AND status = ?", req.ResourceID, req.Date, model.ReservationConfirmed).
		Where("start_min < ? AND end_min > ?", req.EndMin, req.StartMin).
		Count(&occupied).Error
	if err != nil {
		return nil, fmt.Errorf("check slot occupancy: %w", err)
	}
	if occupied == 0 {
		return nil, ErrSlotNotFull
	}

	entry := &model.WaitlistEntry{
		ID:           uuid.New(),
		ResourceID:   req.ResourceID,
		Date:         req.Date,
		StartMin:     req.StartMin,
		EndMin:       req.EndMin,
		RequesterID:  req.RequesterID,
		ContactEmail: req.ContactEmail,
		Status:       model.WaitlistWaiting,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("create waitlist entry: %w", err)
	}
	return entry, nil
}

func (s *waitlistService) PromoteOnCancellation(ctx context.Context, resourceID uuid.UUID, date string, startMin, endMin int) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := s.db.WithContext(ctx).
		Where("resource_id = ? AND date = ? AND start_min = ? AND end_min = ? AND status = ?",
			resourceID, date, startMin, endMin, model.WaitlistWaiting).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // nobody waiting
		}
		return nil, fmt.Errorf("find waiting entry: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&model.WaitlistEntry{}).
		Where("id = ? AND status = ?", entry.ID, model.WaitlistWaiting).
		Update("status", model.WaitlistNotified)
	if res.Error != nil {
		return nil, fmt.Errorf("promote entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with a concurrent promotion or sweep.
		return nil, nil
	}
	entry.Status = model.WaitlistNotified

	s.pub.Publish(ctx, events.SubjectWaitlistPromoted, entry.ID.String(), events.WaitlistEvent{
		EntryID:      entry.ID.String(),
		ResourceID:   entry.ResourceID.String(),
		RequesterID:  entry.RequesterID.String(),
		Date:         entry.Date,
		StartMin:     entry.StartMin,
		EndMin:       entry.EndMin,
		ContactEmail: entry.ContactEmail,
	})

	slog.Info("waitlist entry promoted",
		"entry_id", entry.ID,
		"resource_id", entry.ResourceID,
		"date", entry.Date,
		"start_min", entry.StartMin,
	)
	return &entry, nil
}

func (s *waitlistService) MarkBooked(ctx context.Context, entryID, callerID uuid.UUID) error {
	var entry model.WaitlistEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load entry: %w", err)
	}
	if entry.RequesterID != callerID {
		return ErrForbidden
	}

	res := s.db.WithContext(ctx).Model(&model.WaitlistEntry{}).
		Where("id = ? AND status = ?", entryID, model.WaitlistNotified).
		Update("status", model.WaitlistBooked)
	if res.Error != nil {
		return fmt.Errorf("mark booked: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *waitlistService) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.WaitlistEntry, error) {
	var out []*model.WaitlistEntry
	err := s.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list waitlist entries: %w", err)
	}
	return out, nil
}

func (s *waitlistService) SweepExpired(ctx context.Context, today string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.WaitlistEntry{}).
		Where("date < ?", today).
		Where("status IN ?", []model.WaitlistStatus{model.WaitlistWaiting, model.WaitlistNotified}).
		Update("status", model.WaitlistExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("sweep expired entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
