package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/pricing"
	"github.com/playvenue/playvenue_backend/internal/service/reservation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRuleRequest struct {
	ResourceID  uuid.UUID
	RequesterID uuid.UUID
	StartDate   string
	StartMin    int
	DurationMin int
	Frequency   model.Frequency
	EndDate     *string
}

// Report summarizes one materialization run. Attempted is always
// Created + Skipped.
type Report struct {
	Attempted int `json:"attempted"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// CreateRule stores the rule with the resource's rate and the
	// facility's take rate frozen in, then materializes the first window.
	CreateRule(ctx context.Context, req CreateRuleRequest) (*model.RecurringRule, *Report, error)

	GetRule(ctx context.Context, ruleID uuid.UUID) (*model.RecurringRule, error)
	ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.RecurringRule, error)

	Pause(ctx context.Context, ruleID, callerID uuid.UUID) error
	// Resume reactivates a paused rule and immediately materializes the
	// current window, so the requester never waits for the sweeper.
	Resume(ctx context.Context, ruleID, callerID uuid.UUID) (*Report, error)
	// Cancel stops future materialization. Occurrences already booked
	// stand and are cancelled individually if the requester wants out.
	Cancel(ctx context.Context, ruleID, callerID uuid.UUID) error

	// Materialize books the rule's occurrences that fall inside the
	// rolling horizon, starting from `from`. Occupied slots are skipped,
	// never an error, and re-running over the same window books nothing
	// twice.
	Materialize(ctx context.Context, ruleID uuid.UUID, from string) (*Report, error)

	// MaterializeDue runs Materialize over every active rule. Driven by
	// the sweeper.
	MaterializeDue(ctx context.Context, from string) (*Report, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type recurringService struct {
	db      *gorm.DB
	rsvSvc  reservation.Service
	booking config.BookingConfig
}

func New(db *gorm.DB, rsvSvc reservation.Service, booking config.BookingConfig) Service {
	return &recurringService{db: db, rsvSvc: rsvSvc, booking: booking}
}

func (s *recurringService) CreateRule(ctx context.Context, req CreateRuleRequest) (*model.RecurringRule, *Report, error) {
	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, nil, ErrInvalidDate
	}
	if req.DurationMin <= 0 {
		return nil, nil, ErrInvalidRange
	}
	if req.Frequency != model.FrequencyWeekly && req.Frequency != model.FrequencyBiweekly {
		return nil, nil, ErrBadFrequency
	}
	if req.EndDate != nil {
		if _, err := model.ParseDate(*req.EndDate); err != nil {
			return nil, nil, ErrInvalidDate
		}
		if *req.EndDate < req.StartDate {
			return nil, nil, ErrEndBeforeStart
		}
	}

	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, "id = ? AND active = ?", req.ResourceID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load resource: %w", err)
	}
	var facility model.Facility
	if err := s.db.WithContext(ctx).First(&facility, "id = ?", resource.FacilityID).Error; err != nil {
		return nil, nil, fmt.Errorf("load facility: %w", err)
	}

	rule := &model.RecurringRule{
		ID:              uuid.New(),
		ResourceID:      resource.ID,
		FacilityID:      resource.FacilityID,
		RequesterID:     req.RequesterID,
		Weekday:         int(start.Weekday()),
		StartMin:        req.StartMin,
		DurationMin:     req.DurationMin,
		Frequency:       req.Frequency,
		HourlyRate:      resource.HourlyRate,
		TakeRatePercent: pricing.TakeRateForTier(facility.Tier, s.booking),
		Status:          model.RuleActive,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, nil, fmt.Errorf("create rule: %w", err)
	}

	report, err := s.materialize(ctx, rule, req.StartDate)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("recurring rule created",
		"rule_id", rule.ID,
		"resource_id", rule.ResourceID,
		"frequency", rule.Frequency,
		"created", report.Created,
		"skipped", report.Skipped,
	)
	return rule, report, nil
}

func (s *recurringService) GetRule(ctx context.Context, ruleID uuid.UUID) (*model.RecurringRule, error) {
	var rule model.RecurringRule
	if err := s.db.WithContext(ctx).First(&rule, "id = ?", ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return &rule, nil
}

func (s *recurringService) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.RecurringRule, error) {
	var out []*model.RecurringRule
	err := s.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return out, nil
}

func (s *recurringService) Pause(ctx context.Context, ruleID, callerID uuid.UUID) error {
	return s.setStatus(ctx, ruleID, callerID, model.RuleActive, model.RulePaused, ErrRuleNotActive)
}

func (s *recurringService) Resume(ctx context.Context, ruleID, callerID uuid.UUID) (*Report, error) {
	if err := s.setStatus(ctx, ruleID, callerID, model.RulePaused, model.RuleActive, ErrRuleNotPaused); err != nil {
		return nil, err
	}
	return s.Materialize(ctx, ruleID, model.Today())
}

func (s *recurringService) Cancel(ctx context.Context, ruleID, callerID uuid.UUID) error {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if rule.RequesterID != callerID {
		return ErrForbidden
	}
	if rule.Status == model.RuleCancelled {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.RecurringRule{}).
		Where("id = ?", ruleID).
		Update("status", model.RuleCancelled).Error
}

func (s *recurringService) setStatus(ctx context.Context, ruleID, callerID uuid.UUID, from, to model.RuleStatus, stateErr error) error {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if rule.RequesterID != callerID {
		return ErrForbidden
	}

	res := s.db.WithContext(ctx).Model(&model.RecurringRule{}).
		Where("id = ? AND status = ?", ruleID, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("update rule status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return stateErr
	}
	return nil
}

// ---------------------------------------------------------------------------
// Materialization
// ---------------------------------------------------------------------------

func (s *recurringService) Materialize(ctx context.Context, ruleID uuid.UUID, from string) (*Report, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.Status != model.RuleActive {
		return nil, ErrRuleNotActive
	}
	return s.materialize(ctx, rule, from)
}

func (s *recurringService) MaterializeDue(ctx context.Context, from string) (*Report, error) {
	var rules []*model.RecurringRule
	if err := s.db.WithContext(ctx).Where("status = ?", model.RuleActive).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load active rules: %w", err)
	}

	total := &Report{}
	for _, rule := range rules {
		report, err := s.materialize(ctx, rule, from)
		if err != nil {
			slog.Error("materialization failed", "rule_id", rule.ID, "err", err)
			continue
		}
		total.Attempted += report.Attempted
		total.Created += report.Created
		total.Skipped += report.Skipped
	}
	return total, nil
}

func (s *recurringService) materialize(ctx context.Context, rule *model.RecurringRule, from string) (*Report, error) {
	report := &Report{}
	for _, date := range s.occurrenceDates(rule, from) {
		report.Attempted++

		exists, err := s.occurrenceExists(ctx, rule.ID, date)
		if err != nil {
			return nil, err
		}
		if exists {
			report.Skipped++
			continue
		}

		_, err = s.rsvSvc.Create(ctx, reservation.CreateRequest{
			ResourceID:         rule.ResourceID,
			Date:               date,
			StartMin:           rule.StartMin,
			EndMin:             rule.StartMin + rule.DurationMin,
			RequesterID:        rule.RequesterID,
			RecurringRuleID:    &rule.ID,
			HourlyRateOverride: &rule.HourlyRate,
			TakeRateOverride:   &rule.TakeRatePercent,
		})
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, reservation.ErrSlotTaken),
			errors.Is(err, reservation.ErrOutsideHours),
			errors.Is(err, reservation.ErrDateBlocked):
			// Occupied or unbookable dates are skipped, not fatal.
			report.Skipped++
		default:
			return nil, fmt.Errorf("materialize %s: %w", date, err)
		}
	}

	if report.Created > 0 {
		err := s.db.WithContext(ctx).Model(&model.RecurringRule{}).
			Where("id = ?", rule.ID).
			Update("occurrences_created", gorm.Expr("occurrences_created + ?", report.Created)).Error
		if err != nil {
			return nil, fmt.Errorf("bump occurrence counter: %w", err)
		}
	}
	return report, nil
}

// occurrenceDates lists the rule's anchor dates that fall inside the rolling
// horizon window [from, from + horizon weeks], clamped to the rule's own
// start and end dates.
func (s *recurringService) occurrenceDates(rule *model.RecurringRule, from string) []string {
	fromT, err := model.ParseDate(from)
	if err != nil {
		return nil
	}
	startT, err := model.ParseDate(rule.StartDate)
	if err != nil {
		return nil
	}

	horizon := s.booking.RecurringHorizon
	if horizon < 1 {
		horizon = 1
	}
	windowEnd := fromT.AddDate(0, 0, horizon*7)

	var dates []string
	for t := startT; !t.After(windowEnd); t = t.AddDate(0, 0, rule.Frequency.Interval()) {
		if t.Before(fromT) {
			continue
		}
		date := model.FormatDate(t)
		if rule.EndDate != nil && date > *rule.EndDate {
			break
		}
		dates = append(dates, date)
	}
	return dates
}

func (s *recurringService) occurrenceExists(ctx context.Context, ruleID uuid.UUID, date string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("recurring_rule_id = ? AND date = ? AND status <> ?",
			ruleID, date, model.ReservationCancelled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check occurrence: %w", err)
	}
	return count > 0, nil
}
