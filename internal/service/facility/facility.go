package facility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateFacilityRequest struct {
	Name string
	Tier model.SubscriptionTier
}

type CreateResourceRequest struct {
	Name       string
	Kind       string
	HourlyRate int64
}

type SetHoursRequest struct {
	Weekday  int
	OpensAt  int
	ClosesAt int
	Closed   bool
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateFacilityRequest) (*model.Facility, error)
	GetByID(ctx context.Context, facilityID uuid.UUID) (*model.Facility, error)

	// Resource management
	CreateResource(ctx context.Context, ownerID, facilityID uuid.UUID, req CreateResourceRequest) (*model.Resource, error)
	ListResources(ctx context.Context, facilityID uuid.UUID) ([]*model.Resource, error)
	GetResource(ctx context.Context, resourceID uuid.UUID) (*model.Resource, error)
	DeactivateResource(ctx context.Context, ownerID, facilityID, resourceID uuid.UUID) error

	// Operating calendar
	SetHours(ctx context.Context, ownerID, facilityID uuid.UUID, reqs []SetHoursRequest) error
	ListHours(ctx context.Context, facilityID uuid.UUID) ([]*model.FacilityHours, error)
	AddBlockedDate(ctx context.Context, ownerID, facilityID uuid.UUID, date, reason string) (*model.BlockedDate, error)
	RemoveBlockedDate(ctx context.Context, ownerID, facilityID uuid.UUID, date string) error
	ListBlockedDates(ctx context.Context, facilityID uuid.UUID, from string) ([]*model.BlockedDate, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type facilityService struct {
	db   *gorm.DB
	auth authorize.IAuthorization
}

// New builds the facility service. auth may be nil; role grants are then
// skipped (tests, offline tooling).
func New(db *gorm.DB, auth authorize.IAuthorization) Service {
	return &facilityService{db: db, auth: auth}
}

func (s *facilityService) Create(ctx context.Context, ownerID uuid.UUID, req CreateFacilityRequest) (*model.Facility, error) {
	tier := req.Tier
	if tier == "" {
		tier = model.TierStandard
	}
	f := &model.Facility{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    req.Name,
		Tier:    tier,
		Active:  true,
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}

	if s.auth != nil {
		if err := authorize.AssignFacilityRole(ctx, s.auth, ownerID.String(), f.ID.String(), authorize.RoleFacilityOwner); err != nil {
			slog.Error("failed to grant owner role", "facility_id", f.ID, "owner_id", ownerID, "err", err)
		}
	}
	return f, nil
}

func (s *facilityService) GetByID(ctx context.Context, facilityID uuid.UUID) (*model.Facility, error) {
	var f model.Facility
	if err := s.db.WithContext(ctx).First(&f, "id = ?", facilityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return &f, nil
}

// requireOwner loads the facility and checks the requester owns it.
func (s *facilityService) requireOwner(ctx context.Context, ownerID, facilityID uuid.UUID) (*model.Facility, error) {
	f, err := s.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

func (s *facilityService) CreateResource(ctx context.Context, ownerID, facilityID uuid.UUID, req CreateResourceRequest) (*model.Resource, error) {
	if _, err := s.requireOwner(ctx, ownerID, facilityID); err != nil {
		return nil, err
	}
	if req.HourlyRate <= 0 {
		return nil, ErrInvalidRate
	}

	r := &model.Resource{
		ID:         uuid.New(),
		FacilityID: facilityID,
		Name:       req.Name,
		Kind:       req.Kind,
		HourlyRate: req.HourlyRate,
		Active:     true,
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return r, nil
}

func (s *facilityService) ListResources(ctx context.Context, facilityID uuid.UUID) ([]*model.Resource, error) {
	var out []*model.Resource
	err := s.db.WithContext(ctx).
		Where("facility_id = ? AND active = ?", facilityID, true).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return out, nil
}

func (s *facilityService) GetResource(ctx context.Context, resourceID uuid.UUID) (*model.Resource, error) {
	var r model.Resource
	if err := s.db.WithContext(ctx).First(&r, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &r, nil
}

func (s *facilityService) DeactivateResource(ctx context.Context, ownerID, facilityID, resourceID uuid.UUID) error {
	if _, err := s.requireOwner(ctx, ownerID, facilityID); err != nil {
		return err
	}

	// Soft delete: historical reservations keep referencing the row.
	res := s.db.WithContext(ctx).Model(&model.Resource{}).
		Where("id = ? AND facility_id = ?", resourceID, facilityID).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate resource: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operating calendar
// ---------------------------------------------------------------------------

func (s *facilityService) SetHours(ctx context.Context, ownerID, facilityID uuid.UUID, reqs []SetHoursRequest) error {
	if _, err := s.requireOwner(ctx, ownerID, facilityID); err != nil {
		return err
	}

	for _, req := range reqs {
		if req.Weekday < 0 || req.Weekday > 6 {
			return ErrInvalidWeekday
		}
		if !req.Closed && req.OpensAt >= req.ClosesAt {
			return ErrInvalidHours
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, req := range reqs {
			var existing model.FacilityHours
			err := tx.Where("facility_id = ? AND weekday = ?", facilityID, req.Weekday).
				First(&existing).Error
			switch {
			case err == nil:
				existing.OpensAt = req.OpensAt
				existing.ClosesAt = req.ClosesAt
				existing.Closed = req.Closed
				if err := tx.Save(&existing).Error; err != nil {
					return fmt.Errorf("update hours: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := &model.FacilityHours{
					ID:         uuid.New(),
					FacilityID: facilityID,
					Weekday:    req.Weekday,
					OpensAt:    req.OpensAt,
					ClosesAt:   req.ClosesAt,
					Closed:     req.Closed,
				}
				if err := tx.Create(row).Error; err != nil {
					return fmt.Errorf("create hours: %w", err)
				}
			default:
				return fmt.Errorf("load hours: %w", err)
			}
		}
		return nil
	})
}

func (s *facilityService) ListHours(ctx context.Context, facilityID uuid.UUID) ([]*model.FacilityHours, error) {
	var out []*model.FacilityHours
	err := s.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("weekday ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}
	return out, nil
}

func (s *facilityService) AddBlockedDate(ctx context.Context, ownerID, facilityID uuid.UUID, date, reason string) (*model.BlockedDate, error) {
	if _, err := s.requireOwner(ctx, ownerID, facilityID); err != nil {
		return nil, err
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}

	b := &model.BlockedDate{
		ID:         uuid.New(),
		FacilityID: facilityID,
		Date:       date,
		Reason:     reason,
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("add blocked date: %w", err)
	}
	return b, nil
}

func (s *facilityService) RemoveBlockedDate(ctx context.Context, ownerID, facilityID uuid.UUID, date string) error {
	if _, err := s.requireOwner(ctx, ownerID, facilityID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("facility_id = ? AND date = ?", facilityID, date).
		Delete(&model.BlockedDate{})
	if res.Error != nil {
		return fmt.Errorf("remove blocked date: %w", res.Error)
	}
	return nil
}

func (s *facilityService) ListBlockedDates(ctx context.Context, facilityID uuid.UUID, from string) ([]*model.BlockedDate, error) {
	q := s.db.WithContext(ctx).Where("facility_id = ?", facilityID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	var out []*model.BlockedDate
	if err := q.Order("date ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	return out, nil
}
