package pricing

import (
	"math/rand"
	"testing"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/model"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name        string
		hourlyRate  int64
		durationMin int
		takeRate    int
		flatFee     int64
		want        Breakdown
	}{
		{
			name:        "one hour at standard rate",
			hourlyRate:  4000,
			durationMin: 60,
			takeRate:    8,
			flatFee:     300,
			want: Breakdown{
				BaseAmount:      4000,
				PlatformFee:     300,
				TakeAmount:      320,
				OwnerPayout:     3680,
				TotalCharged:    4300,
				TakeRatePercent: 8,
			},
		},
		{
			name:        "ninety minutes pro tier",
			hourlyRate:  5000,
			durationMin: 90,
			takeRate:    5,
			flatFee:     300,
			want: Breakdown{
				BaseAmount:      7500,
				PlatformFee:     300,
				TakeAmount:      375,
				OwnerPayout:     7125,
				TotalCharged:    7800,
				TakeRatePercent: 5,
			},
		},
		{
			name:        "rounding half away from zero",
			hourlyRate:  2550, // 30 min -> 1275; 8% -> 102
			durationMin: 30,
			takeRate:    8,
			flatFee:     0,
			want: Breakdown{
				BaseAmount:      1275,
				PlatformFee:     0,
				TakeAmount:      102,
				OwnerPayout:     1173,
				TotalCharged:    1275,
				TakeRatePercent: 8,
			},
		},
		{
			name:        "odd base forces half-cent rounding up",
			hourlyRate:  1250, // 30 min -> 625; 8% -> 50
			durationMin: 30,
			takeRate:    8,
			flatFee:     100,
			want: Breakdown{
				BaseAmount:      625,
				PlatformFee:     100,
				TakeAmount:      50,
				OwnerPayout:     575,
				TotalCharged:    725,
				TakeRatePercent: 8,
			},
		},
		{
			name:        "zero duration",
			hourlyRate:  4000,
			durationMin: 0,
			takeRate:    8,
			flatFee:     300,
			want: Breakdown{
				BaseAmount:      0,
				PlatformFee:     300,
				TakeAmount:      0,
				OwnerPayout:     0,
				TotalCharged:    300,
				TakeRatePercent: 8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(tt.hourlyRate, tt.durationMin, tt.takeRate, tt.flatFee)
			if got != tt.want {
				t.Errorf("Quote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// The split must be lossless for any non-negative input: every cent of the
// base amount ends up with either the owner or the platform.
func TestQuoteConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		hourlyRate := rng.Int63n(1_000_000)
		durationMin := rng.Intn(8 * 60)
		takeRate := rng.Intn(101)
		flatFee := rng.Int63n(10_000)

		b := Quote(hourlyRate, durationMin, takeRate, flatFee)

		if b.OwnerPayout+b.TakeAmount != b.BaseAmount {
			t.Fatalf("payout %d + take %d != base %d (rate=%d dur=%d pct=%d)",
				b.OwnerPayout, b.TakeAmount, b.BaseAmount, hourlyRate, durationMin, takeRate)
		}
		if b.TotalCharged != b.BaseAmount+b.PlatformFee {
			t.Fatalf("total %d != base %d + fee %d", b.TotalCharged, b.BaseAmount, b.PlatformFee)
		}
		if b.TakeAmount < 0 || b.BaseAmount < 0 {
			t.Fatalf("negative amounts for non-negative input: %+v", b)
		}
	}
}

func TestRoundDiv(t *testing.T) {
	tests := []struct {
		num, den, want int64
	}{
		{10, 4, 3},   // 2.5 -> 3
		{9, 4, 2},    // 2.25 -> 2
		{11, 4, 3},   // 2.75 -> 3
		{-10, 4, -3}, // -2.5 -> -3 (away from zero)
		{0, 60, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := roundDiv(tt.num, tt.den); got != tt.want {
			t.Errorf("roundDiv(%d, %d) = %d, want %d", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestTakeRateForTier(t *testing.T) {
	cfg := config.BookingConfig{StandardTakeRatePercent: 8, ProTakeRatePercent: 5}

	if got := TakeRateForTier(model.TierStandard, cfg); got != 8 {
		t.Errorf("standard tier rate = %d, want 8", got)
	}
	if got := TakeRateForTier(model.TierPro, cfg); got != 5 {
		t.Errorf("pro tier rate = %d, want 5", got)
	}
}
