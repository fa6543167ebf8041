package model

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// Interval returns the day step between occurrences.
func (f Frequency) Interval() int {
	if f == FrequencyBiweekly {
		return 14
	}
	return 7
}

type RuleStatus string

const (
	RuleActive    RuleStatus = "active"
	RulePaused    RuleStatus = "paused"
	RuleCancelled RuleStatus = "cancelled"
)

// RecurringRule is a template for repeat bookings. Rate and take rate are
// captured at rule creation and reused for every materialized occurrence.
type RecurringRule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID  uuid.UUID `gorm:"type:uuid;index;not null" json:"resource_id"`
	FacilityID  uuid.UUID `gorm:"type:uuid;index;not null" json:"facility_id"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null" json:"requester_id"`

	// Weekday follows time.Weekday: 0=Sunday .. 6=Saturday.
	Weekday     int       `gorm:"not null" json:"weekday"`
	StartMin    int       `gorm:"not null" json:"start_min"`
	DurationMin int       `gorm:"not null" json:"duration_min"`
	Frequency   Frequency `gorm:"type:varchar(16);not null" json:"frequency"`

	HourlyRate      int64 `gorm:"not null" json:"hourly_rate"`
	TakeRatePercent int   `gorm:"not null" json:"take_rate_percent"`

	Status             RuleStatus `gorm:"type:varchar(16);index;not null;default:'active'" json:"status"`
	OccurrencesCreated int        `gorm:"not null;default:0" json:"occurrences_created"`

	// StartDate anchors the series; occurrences fall on StartDate + k*interval.
	StartDate string  `gorm:"type:varchar(10);not null" json:"start_date"`
	EndDate   *string `gorm:"type:varchar(10)" json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
