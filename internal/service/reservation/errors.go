package reservation

import "errors"

var (
	ErrNotFound          = errors.New("reservation not found")
	ErrSlotTaken         = errors.New("slot is no longer available")
	ErrOutsideHours      = errors.New("slot is outside the facility's operating hours")
	ErrDateBlocked       = errors.New("facility is closed on this date")
	ErrResourceInactive  = errors.New("resource is not active")
	ErrInvalidRange      = errors.New("end_min must be after start_min")
	ErrForbidden         = errors.New("requester may not modify this reservation")
	ErrInvalidTransition = errors.New("invalid status transition")
)
