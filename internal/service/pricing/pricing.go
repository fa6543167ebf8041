// Package pricing computes fee breakdowns for bookings. All functions are
// pure; rates are resolved once at reservation creation and frozen onto the
// record, so historical payouts never shift when a facility's tier changes.
package pricing

import (
	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/model"
)

// Breakdown is the monetary split for one booking, in minor currency units.
type Breakdown struct {
	// BaseAmount is hourlyRate prorated over the booked duration.
	BaseAmount int64 `json:"base_amount"`
	// PlatformFee is the flat per-booking fee, charged on top.
	PlatformFee int64 `json:"platform_fee"`
	// TakeAmount is the platform's percentage cut of BaseAmount.
	TakeAmount int64 `json:"take_amount"`
	// OwnerPayout is BaseAmount minus TakeAmount.
	OwnerPayout int64 `json:"owner_payout"`
	// TotalCharged is BaseAmount plus PlatformFee.
	TotalCharged int64 `json:"total_charged"`
	// TakeRatePercent is the rate the take was computed with.
	TakeRatePercent int `json:"take_rate_percent"`
}

// Quote computes the breakdown for a booking of durationMin minutes at
// hourlyRate, with the given take rate and flat fee.
//
// Invariants: OwnerPayout + TakeAmount == BaseAmount and
// TotalCharged == BaseAmount + PlatformFee.
func Quote(hourlyRate int64, durationMin int, takeRatePercent int, flatFee int64) Breakdown {
	base := roundDiv(hourlyRate*int64(durationMin), 60)
	take := roundDiv(base*int64(takeRatePercent), 100)

	return Breakdown{
		BaseAmount:      base,
		PlatformFee:     flatFee,
		TakeAmount:      take,
		OwnerPayout:     base - take,
		TotalCharged:    base + flatFee,
		TakeRatePercent: takeRatePercent,
	}
}

// TakeRateForTier resolves a facility's take rate from its subscription tier.
func TakeRateForTier(tier model.SubscriptionTier, cfg config.BookingConfig) int {
	if tier == model.TierPro {
		return cfg.ProTakeRatePercent
	}
	return cfg.StandardTakeRatePercent
}

// roundDiv divides num by den rounding half away from zero.
func roundDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	half := den / 2
	if num >= 0 {
		return (num + half) / den
	}
	return (num - half) / den
}
