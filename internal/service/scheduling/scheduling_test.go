package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/playvenue/playvenue_backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	facility model.Facility
	resource model.Resource
	date     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	fac := model.Facility{ID: uuid.New(), OwnerID: uuid.New(), Name: "Southside Arena", Tier: model.TierStandard, Active: true}
	if err := db.Create(&fac).Error; err != nil {
		t.Fatalf("seed facility: %v", err)
	}
	res := model.Resource{ID: uuid.New(), FacilityID: fac.ID, Name: "Pitch 1", Kind: "pitch", HourlyRate: 4000, Active: true}
	if err := db.Create(&res).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	// Open 09:00-17:00 every day except weekday 0, which has no row.
	for wd := 1; wd < 7; wd++ {
		h := model.FacilityHours{ID: uuid.New(), FacilityID: fac.ID, Weekday: wd, OpensAt: 540, ClosesAt: 1020}
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed hours: %v", err)
		}
	}

	return &fixture{
		db:       db,
		svc:      New(db, nil, 0),
		facility: fac,
		resource: res,
		date:     "2026-09-07", // a Monday, weekday 1
	}
}

func (f *fixture) book(t *testing.T, startMin, endMin int) {
	t.Helper()
	rsv := model.Reservation{
		ID:          uuid.New(),
		ResourceID:  f.resource.ID,
		FacilityID:  f.facility.ID,
		Date:        f.date,
		StartMin:    startMin,
		EndMin:      endMin,
		RequesterID: uuid.New(),
		Status:      model.ReservationConfirmed,
	}
	if err := f.db.Create(&rsv).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
}

func TestSlotsForDay(t *testing.T) {
	t.Run("generates hourly slots inside hours", func(t *testing.T) {
		hours := &model.FacilityHours{OpensAt: 540, ClosesAt: 1020}
		slots := SlotsForDay(hours, false)
		if len(slots) != 8 {
			t.Fatalf("slots = %d, want 8", len(slots))
		}
		if slots[0].StartMin != 540 || slots[0].EndMin != 600 {
			t.Errorf("first slot = [%d,%d)", slots[0].StartMin, slots[0].EndMin)
		}
		if last := slots[len(slots)-1]; last.EndMin != 1020 {
			t.Errorf("last slot ends at %d, want 1020", last.EndMin)
		}
		for _, s := range slots {
			if !s.Available {
				t.Errorf("slot [%d,%d) not available", s.StartMin, s.EndMin)
			}
		}
	})

	t.Run("drops partial trailing hour", func(t *testing.T) {
		hours := &model.FacilityHours{OpensAt: 540, ClosesAt: 630}
		slots := SlotsForDay(hours, false)
		if len(slots) != 1 {
			t.Fatalf("slots = %d, want 1", len(slots))
		}
	})

	t.Run("closed day yields nothing", func(t *testing.T) {
		hours := &model.FacilityHours{OpensAt: 540, ClosesAt: 1020, Closed: true}
		if slots := SlotsForDay(hours, false); slots != nil {
			t.Fatalf("slots = %v, want nil", slots)
		}
	})

	t.Run("blocked date yields nothing", func(t *testing.T) {
		hours := &model.FacilityHours{OpensAt: 540, ClosesAt: 1020}
		if slots := SlotsForDay(hours, true); slots != nil {
			t.Fatalf("slots = %v, want nil", slots)
		}
	})

	t.Run("missing hours row yields nothing", func(t *testing.T) {
		if slots := SlotsForDay(nil, false); slots != nil {
			t.Fatalf("slots = %v, want nil", slots)
		}
	})
}

func TestWithinHours(t *testing.T) {
	hours := &model.FacilityHours{OpensAt: 540, ClosesAt: 1020}
	cases := []struct {
		name     string
		start    int
		end      int
		expected bool
	}{
		{"inside", 600, 660, true},
		{"exact window", 540, 1020, true},
		{"starts before open", 480, 600, false},
		{"ends after close", 960, 1080, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinHours(hours, tc.start, tc.end); got != tc.expected {
				t.Errorf("WithinHours(%d, %d) = %v, want %v", tc.start, tc.end, got, tc.expected)
			}
		})
	}
	if WithinHours(nil, 600, 660) {
		t.Error("nil hours should never be within")
	}
	if WithinHours(&model.FacilityHours{OpensAt: 540, ClosesAt: 1020, Closed: true}, 600, 660) {
		t.Error("closed day should never be within")
	}
}

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("open day lists every slot", func(t *testing.T) {
		f := newFixture(t)
		slots, err := f.svc.AvailableSlots(ctx, f.resource.ID, f.date)
		if err != nil {
			t.Fatalf("AvailableSlots: %v", err)
		}
		if len(slots) != 8 {
			t.Fatalf("slots = %d, want 8", len(slots))
		}
	})

	t.Run("booked slots are never advertised", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, 600, 660)
		f.book(t, 720, 840) // two-hour block

		slots, err := f.svc.AvailableSlots(ctx, f.resource.ID, f.date)
		if err != nil {
			t.Fatalf("AvailableSlots: %v", err)
		}
		for _, s := range slots {
			overlapsBooking := model.Overlaps(s.StartMin, s.EndMin, 600, 660) ||
				model.Overlaps(s.StartMin, s.EndMin, 720, 840)
			if s.Available && overlapsBooking {
				t.Errorf("slot [%d,%d) advertised while booked", s.StartMin, s.EndMin)
			}
			if !s.Available && !overlapsBooking {
				t.Errorf("slot [%d,%d) hidden while free", s.StartMin, s.EndMin)
			}
		}
	})

	t.Run("cancelled reservations do not consume capacity", func(t *testing.T) {
		f := newFixture(t)
		rsv := model.Reservation{
			ID: uuid.New(), ResourceID: f.resource.ID, FacilityID: f.facility.ID,
			Date: f.date, StartMin: 600, EndMin: 660,
			RequesterID: uuid.New(), Status: model.ReservationCancelled,
		}
		if err := f.db.Create(&rsv).Error; err != nil {
			t.Fatalf("seed reservation: %v", err)
		}

		slots, err := f.svc.AvailableSlots(ctx, f.resource.ID, f.date)
		if err != nil {
			t.Fatalf("AvailableSlots: %v", err)
		}
		for _, s := range slots {
			if !s.Available {
				t.Errorf("slot [%d,%d) hidden by a cancelled booking", s.StartMin, s.EndMin)
			}
		}
	})

	t.Run("closed weekday yields empty list", func(t *testing.T) {
		f := newFixture(t)
		slots, err := f.svc.AvailableSlots(ctx, f.resource.ID, "2026-09-06") // Sunday, no hours row
		if err != nil {
			t.Fatalf("AvailableSlots: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("slots = %d, want 0", len(slots))
		}
	})

	t.Run("blocked date yields empty list", func(t *testing.T) {
		f := newFixture(t)
		b := model.BlockedDate{ID: uuid.New(), FacilityID: f.facility.ID, Date: f.date, Reason: "maintenance"}
		if err := f.db.Create(&b).Error; err != nil {
			t.Fatalf("seed blocked date: %v", err)
		}
		slots, err := f.svc.AvailableSlots(ctx, f.resource.ID, f.date)
		if err != nil {
			t.Fatalf("AvailableSlots: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("slots = %d, want 0", len(slots))
		}
	})

	t.Run("inactive resource rejected", func(t *testing.T) {
		f := newFixture(t)
		if err := f.db.Model(&model.Resource{}).Where("id = ?", f.resource.ID).Update("active", false).Error; err != nil {
			t.Fatalf("deactivate resource: %v", err)
		}
		_, err := f.svc.AvailableSlots(ctx, f.resource.ID, f.date)
		if !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("err = %v, want ErrResourceNotFound", err)
		}
	})

	t.Run("unknown resource rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AvailableSlots(ctx, uuid.New(), f.date)
		if !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("err = %v, want ErrResourceNotFound", err)
		}
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AvailableSlots(ctx, f.resource.ID, "07-09-2026")
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("err = %v, want ErrInvalidDate", err)
		}
	})
}
