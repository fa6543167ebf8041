package model

import (
	"time"

	"github.com/google/uuid"
)

// FacilityHours is one weekday row of a facility's operating calendar.
// OpensAt/ClosesAt are minutes since midnight; OpensAt < ClosesAt unless
// Closed is set.
type FacilityHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FacilityID uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_facility_weekday;not null" json:"facility_id"`
	// Weekday follows time.Weekday: 0=Sunday .. 6=Saturday.
	Weekday   int       `gorm:"uniqueIndex:ux_facility_weekday;not null" json:"weekday"`
	OpensAt   int       `gorm:"not null" json:"opens_at"`
	ClosesAt  int       `gorm:"not null" json:"closes_at"`
	Closed    bool      `gorm:"not null;default:false" json:"closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockedDate marks a whole facility closed on one calendar date
// (holiday, maintenance). Date is a plain YYYY-MM-DD string.
type BlockedDate struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FacilityID uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_facility_blocked_date;not null" json:"facility_id"`
	Date       string    `gorm:"type:varchar(10);uniqueIndex:ux_facility_blocked_date;not null" json:"date"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
