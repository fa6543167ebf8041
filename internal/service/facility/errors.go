package facility

import "errors"

var (
	ErrNotFound         = errors.New("facility not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrNotOwner         = errors.New("requester does not own this facility")
	ErrInvalidHours     = errors.New("opens_at must be before closes_at")
	ErrInvalidWeekday   = errors.New("weekday must be between 0 and 6")
	ErrInvalidRate      = errors.New("hourly_rate must be positive")
)
