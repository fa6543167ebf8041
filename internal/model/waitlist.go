package model

import (
	"time"

	"github.com/google/uuid"
)

type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistNotified WaitlistStatus = "notified"
	WaitlistBooked   WaitlistStatus = "booked"
	WaitlistExpired  WaitlistStatus = "expired"
)

// WaitlistEntry records a player waiting for a full slot. CreatedAt is the
// FIFO ordering key: promotion always picks the earliest waiting entry.
type WaitlistEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID  uuid.UUID `gorm:"type:uuid;index:idx_waitlist_slot;not null" json:"resource_id"`
	Date        string    `gorm:"type:varchar(10);index:idx_waitlist_slot;not null" json:"date"`
	StartMin    int       `gorm:"index:idx_waitlist_slot;not null" json:"start_min"`
	EndMin      int       `gorm:"not null" json:"end_min"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null" json:"requester_id"`

	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email,omitempty"`

	Status WaitlistStatus `gorm:"type:varchar(16);index;not null;default:'waiting'" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
