package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type CancelRequestedBy string

const (
	CancelByRequester CancelRequestedBy = "requester"
	CancelByFacility  CancelRequestedBy = "facility"
)

// Reservation is the authoritative booking record. For a given
// (resource_id, date), no two confirmed reservations may have overlapping
// [start_min, end_min) intervals.
//
// Date is a plain YYYY-MM-DD string; StartMin/EndMin are minutes since
// midnight. Money fields are snapshots in minor currency units, frozen at
// creation time.
type Reservation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResourceID  uuid.UUID `gorm:"type:uuid;index:idx_resource_date;not null" json:"resource_id"`
	FacilityID  uuid.UUID `gorm:"type:uuid;index;not null" json:"facility_id"`
	Date        string    `gorm:"type:varchar(10);index:idx_resource_date;not null" json:"date"`
	StartMin    int       `gorm:"not null" json:"start_min"`
	EndMin      int       `gorm:"not null" json:"end_min"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null" json:"requester_id"`

	// ContactEmail is optional; identity lives at the gateway, so bookings
	// carry their own mail address when the requester wants a receipt.
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email,omitempty"`

	Status ReservationStatus `gorm:"type:varchar(16);index;not null;default:'confirmed'" json:"status"`

	BaseAmount      int64 `gorm:"not null" json:"base_amount"`
	PlatformFee     int64 `gorm:"not null" json:"platform_fee"`
	TakeAmount      int64 `gorm:"not null" json:"take_amount"`
	OwnerPayout     int64 `gorm:"not null" json:"owner_payout"`
	TotalCharged    int64 `gorm:"not null" json:"total_charged"`
	TakeRatePercent int   `gorm:"not null" json:"take_rate_percent"`

	// PaymentRef is an opaque reference supplied by the payment collaborator;
	// the engine never interprets it.
	PaymentRef    *string       `json:"payment_ref,omitempty"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"payment_status"`

	RecurringRuleID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_rule_id,omitempty"`

	CancelRequestedBy *CancelRequestedBy `gorm:"type:varchar(16)" json:"cancel_requested_by,omitempty"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps reports whether two half-open minute intervals conflict.
// [s1,e1) and [s2,e2) conflict iff s1 < e2 && s2 < e1.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}
