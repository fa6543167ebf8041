package scheduling

import "errors"

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidDate      = errors.New("invalid date")
)
