package model

// All returns every model the engine persists, in migration order.
func All() []any {
	return []any{
		&Facility{},
		&Resource{},
		&FacilityHours{},
		&BlockedDate{},
		&Reservation{},
		&RecurringRule{},
		&WaitlistEntry{},
		&Notification{},
	}
}
