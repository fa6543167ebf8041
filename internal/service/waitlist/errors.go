package waitlist

import "errors"

var (
	ErrNotFound       = errors.New("waitlist entry not found")
	ErrDuplicateEntry = errors.New("requester already waiting for this slot")
	ErrSlotNotFull    = errors.New("slot is still open; book it directly")
	ErrInvalidRange   = errors.New("end_min must be after start_min")
	ErrForbidden      = errors.New("entry belongs to another requester")
)
