package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierStandard SubscriptionTier = "standard"
	TierPro      SubscriptionTier = "pro"
)

// Facility is an owner-operated venue that lists bookable resources.
type Facility struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID        `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name      string           `gorm:"not null" json:"name"`
	Tier      SubscriptionTier `gorm:"type:varchar(16);not null;default:'standard'" json:"tier"`
	Active    bool             `gorm:"not null" json:"active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Resource is a single bookable unit (court, studio) inside a facility.
// Deactivated rather than deleted so historical reservations keep a valid
// reference.
type Resource struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FacilityID uuid.UUID `gorm:"type:uuid;index;not null" json:"facility_id"`
	Name       string    `gorm:"not null" json:"name"`
	Kind       string    `gorm:"type:varchar(32);not null" json:"kind"`
	// HourlyRate is in minor currency units (cents).
	HourlyRate int64     `gorm:"not null" json:"hourly_rate"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
