package scheduling

import (
	"github.com/playvenue/playvenue_backend/internal/model"
)

// SlotMinutes is the fixed hourly granularity of the marketplace.
const SlotMinutes = 60

// Slot is one candidate booking interval on a resource and date.
// StartMin/EndMin are minutes since midnight.
type Slot struct {
	StartMin  int  `json:"start_min"`
	EndMin    int  `json:"end_min"`
	Available bool `json:"available"`
}

// SlotsForDay generates the hourly candidate slots for one weekday's
// operating hours. It defines capacity only; occupancy is resolved
// separately. Returns nil when the day is closed or blocked.
func SlotsForDay(hours *model.FacilityHours, blocked bool) []Slot {
	if hours == nil || hours.Closed || blocked {
		return nil
	}

	var slots []Slot
	for start := hours.OpensAt; start+SlotMinutes <= hours.ClosesAt; start += SlotMinutes {
		slots = append(slots, Slot{
			StartMin:  start,
			EndMin:    start + SlotMinutes,
			Available: true,
		})
	}
	return slots
}

// MarkBooked flags every candidate slot that overlaps a booked interval,
// using the same overlap predicate the reservation store enforces. The
// symmetry matters: what this advertises as open is exactly what the store
// will accept.
func MarkBooked(slots []Slot, booked []*model.Reservation) []Slot {
	for i := range slots {
		for _, r := range booked {
			if model.Overlaps(slots[i].StartMin, slots[i].EndMin, r.StartMin, r.EndMin) {
				slots[i].Available = false
				break
			}
		}
	}
	return slots
}

// WithinHours reports whether [startMin, endMin) lies inside the weekday's
// operating window.
func WithinHours(hours *model.FacilityHours, startMin, endMin int) bool {
	if hours == nil || hours.Closed {
		return false
	}
	return startMin >= hours.OpensAt && endMin <= hours.ClosesAt
}
