package recurring

import "errors"

var (
	ErrNotFound       = errors.New("recurring rule not found")
	ErrInvalidRange   = errors.New("duration_min must be positive")
	ErrInvalidDate    = errors.New("invalid date")
	ErrBadFrequency   = errors.New("frequency must be weekly or biweekly")
	ErrEndBeforeStart = errors.New("end_date precedes start_date")
	ErrForbidden      = errors.New("requester may not modify this rule")
	ErrRuleNotActive  = errors.New("rule is not active")
	ErrRuleNotPaused  = errors.New("rule is not paused")
)
