package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/playvenue/playvenue_backend/config"
	"github.com/playvenue/playvenue_backend/internal/model"
	"github.com/playvenue/playvenue_backend/internal/service/scheduling"
	"github.com/playvenue/playvenue_backend/internal/service/waitlist"
)

func testConfig() config.BookingConfig {
	return config.BookingConfig{
		FlatFee:                 300,
		StandardTakeRatePercent: 8,
		ProTakeRatePercent:      5,
		RecurringHorizon:        4,
		CreateRetries:           3,
	}
}

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
	waitSvc  waitlist.Service
	owner    uuid.UUID
	facility model.Facility
	resource model.Resource
	date     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	owner := uuid.New()
	fac := model.Facility{ID: uuid.New(), OwnerID: owner, Name: "Riverside Courts", Tier: model.TierStandard, Active: true}
	if err := db.Create(&fac).Error; err != nil {
		t.Fatalf("seed facility: %v", err)
	}
	res := model.Resource{ID: uuid.New(), FacilityID: fac.ID, Name: "Court 1", Kind: "court", HourlyRate: 4000, Active: true}
	if err := db.Create(&res).Error; err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	for wd := 0; wd < 7; wd++ {
		h := model.FacilityHours{ID: uuid.New(), FacilityID: fac.ID, Weekday: wd, OpensAt: 540, ClosesAt: 1020}
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed hours: %v", err)
		}
	}

	schedSvc := scheduling.New(db, nil, 0)
	waitSvc := waitlist.New(db, nil)
	svc := New(db, schedSvc, waitSvc, nil, testConfig())

	return &fixture{
		db:       db,
		svc:      svc,
		waitSvc:  waitSvc,
		owner:    owner,
		facility: fac,
		resource: res,
		date:     "2026-09-07",
	}
}

func (f *fixture) create(t *testing.T, requester uuid.UUID, startMin, endMin int) *model.Reservation {
	t.Helper()
	rsv, err := f.svc.Create(context.Background(), CreateRequest{
		ResourceID:  f.resource.ID,
		Date:        f.date,
		StartMin:    startMin,
		EndMin:      endMin,
		RequesterID: requester,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return rsv
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	rsv := f.create(t, uuid.New(), 600, 660)

	if rsv.Status != model.ReservationConfirmed {
		t.Errorf("status = %q, want confirmed", rsv.Status)
	}
	if rsv.PaymentStatus != model.PaymentPending {
		t.Errorf("payment status = %q, want pending", rsv.PaymentStatus)
	}
	if rsv.BaseAmount != 4000 || rsv.TakeAmount != 320 || rsv.OwnerPayout != 3680 || rsv.TotalCharged != 4300 {
		t.Errorf("pricing snapshot = %d/%d/%d/%d, want 4000/320/3680/4300",
			rsv.BaseAmount, rsv.TakeAmount, rsv.OwnerPayout, rsv.TotalCharged)
	}
	if rsv.TakeRatePercent != 8 {
		t.Errorf("take rate = %d, want 8", rsv.TakeRatePercent)
	}
}

func TestCreatePaidUpfront(t *testing.T) {
	f := newFixture(t)
	ref := "pay_123"

	rsv, err := f.svc.Create(context.Background(), CreateRequest{
		ResourceID:  f.resource.ID,
		Date:        f.date,
		StartMin:    600,
		EndMin:      660,
		RequesterID: uuid.New(),
		PaymentRef:  &ref,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rsv.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %q, want paid", rsv.PaymentStatus)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	t.Run("inverted range", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: f.date, StartMin: 660, EndMin: 600, RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("err = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: "07-09-2026", StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
		})
		if err == nil {
			t.Error("expected error for malformed date")
		}
	})

	t.Run("outside hours", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: f.date, StartMin: 480, EndMin: 540, RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrOutsideHours) {
			t.Errorf("err = %v, want ErrOutsideHours", err)
		}
	})

	t.Run("blocked date", func(t *testing.T) {
		blocked := model.BlockedDate{ID: uuid.New(), FacilityID: f.facility.ID, Date: "2026-09-08", Reason: "maintenance"}
		if err := f.db.Create(&blocked).Error; err != nil {
			t.Fatalf("seed blocked date: %v", err)
		}
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: "2026-09-08", StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrDateBlocked) {
			t.Errorf("err = %v, want ErrDateBlocked", err)
		}
	})

	t.Run("inactive resource", func(t *testing.T) {
		inactive := model.Resource{ID: uuid.New(), FacilityID: f.facility.ID, Name: "Court 9", Kind: "court", HourlyRate: 4000, Active: false}
		if err := f.db.Create(&inactive).Error; err != nil {
			t.Fatalf("seed resource: %v", err)
		}
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: inactive.ID, Date: f.date, StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrResourceInactive) {
			t.Errorf("err = %v, want ErrResourceInactive", err)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: uuid.New(), Date: f.date, StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCreateConflict(t *testing.T) {
	f := newFixture(t)
	f.create(t, uuid.New(), 600, 660)

	overlapping := [][2]int{
		{600, 660}, // identical
		{630, 690}, // tail overlap
		{570, 630}, // head overlap
		{540, 720}, // containing
		{615, 645}, // contained
	}
	for _, iv := range overlapping {
		_, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: f.date, StartMin: iv[0], EndMin: iv[1], RequesterID: uuid.New(),
		})
		if !errors.Is(err, ErrSlotTaken) {
			t.Errorf("create [%d,%d): err = %v, want ErrSlotTaken", iv[0], iv[1], err)
		}
	}

	// Adjacent intervals share only an endpoint; no conflict.
	f.create(t, uuid.New(), 660, 720)
	f.create(t, uuid.New(), 540, 600)

	// Same interval on another date or resource is fine too.
	if _, err := f.svc.Create(context.Background(), CreateRequest{
		ResourceID: f.resource.ID, Date: "2026-09-09", StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
	}); err != nil {
		t.Errorf("other date: %v", err)
	}
}

func TestCreateAfterCancellationReopensSlot(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()
	rsv := f.create(t, requester, 600, 660)

	if err := f.svc.Cancel(context.Background(), rsv.ID, requester); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	f.create(t, uuid.New(), 600, 660)
}

func TestConcurrentCreateExactlyOneWins(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), CreateRequest{
				ResourceID: f.resource.ID, Date: f.date, StartMin: 600, EndMin: 660, RequesterID: uuid.New(),
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Errorf("attempt %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}

	var count int64
	if err := f.db.Model(&model.Reservation{}).
		Where("resource_id = ? AND date = ? AND status = ?", f.resource.ID, f.date, model.ReservationConfirmed).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("confirmed rows = %d, want 1", count)
	}
}

func TestSlotLockKey(t *testing.T) {
	res := uuid.New()

	if a, b := slotLockKey(res, "2026-09-07"), slotLockKey(res, "2026-09-07"); a != b {
		t.Errorf("same slot hashed to %d and %d", a, b)
	}
	if slotLockKey(res, "2026-09-07") == slotLockKey(res, "2026-09-08") {
		t.Error("adjacent dates share a lock key")
	}
	if slotLockKey(res, "2026-09-07") == slotLockKey(uuid.New(), "2026-09-07") {
		t.Error("distinct resources share a lock key")
	}
}

func TestCancel(t *testing.T) {
	t.Run("by requester", func(t *testing.T) {
		f := newFixture(t)
		requester := uuid.New()
		ref := "pay_9"
		rsv, err := f.svc.Create(context.Background(), CreateRequest{
			ResourceID: f.resource.ID, Date: f.date, StartMin: 600, EndMin: 660,
			RequesterID: requester, PaymentRef: &ref,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if err := f.svc.Cancel(context.Background(), rsv.ID, requester); err != nil {
			t.Fatalf("cancel: %v", err)
		}

		got, err := f.svc.GetByID(context.Background(), rsv.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != model.ReservationCancelled {
			t.Errorf("status = %q, want cancelled", got.Status)
		}
		if got.PaymentStatus != model.PaymentRefunded {
			t.Errorf("payment status = %q, want refunded", got.PaymentStatus)
		}
		if got.CancelRequestedBy == nil || *got.CancelRequestedBy != model.CancelByRequester {
			t.Errorf("cancel_requested_by = %v, want requester", got.CancelRequestedBy)
		}
		if got.CancelledAt == nil {
			t.Error("cancelled_at not set")
		}
	})

	t.Run("by facility owner", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		if err := f.svc.Cancel(context.Background(), rsv.ID, f.owner); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, _ := f.svc.GetByID(context.Background(), rsv.ID)
		if got.CancelRequestedBy == nil || *got.CancelRequestedBy != model.CancelByFacility {
			t.Errorf("cancel_requested_by = %v, want facility", got.CancelRequestedBy)
		}
	})

	t.Run("by stranger", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		err := f.svc.Cancel(context.Background(), rsv.ID, uuid.New())
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture(t)
		requester := uuid.New()
		rsv := f.create(t, requester, 600, 660)

		if err := f.svc.Cancel(context.Background(), rsv.ID, requester); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		err := f.svc.Cancel(context.Background(), rsv.ID, requester)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Cancel(context.Background(), uuid.New(), uuid.New())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCancelPromotesEarliestWaitlisted(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()
	rsv := f.create(t, requester, 600, 660)

	first := uuid.New()
	second := uuid.New()
	entryA, err := f.waitSvc.Join(context.Background(), waitlist.JoinRequest{
		ResourceID: f.resource.ID, Date: f.date, StartMin: 600, EndMin: 660, RequesterID: first,
	})
	if err != nil {
		t.Fatalf("join A: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct created_at ordering
	entryB, err := f.waitSvc.Join(context.Background(), waitlist.JoinRequest{
		ResourceID: f.resource.ID, Date: f.date, StartMin: 600, EndMin: 660, RequesterID: second,
	})
	if err != nil {
		t.Fatalf("join B: %v", err)
	}

	if err := f.svc.Cancel(context.Background(), rsv.ID, requester); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var a, b model.WaitlistEntry
	if err := f.db.First(&a, "id = ?", entryA.ID).Error; err != nil {
		t.Fatalf("reload A: %v", err)
	}
	if err := f.db.First(&b, "id = ?", entryB.ID).Error; err != nil {
		t.Fatalf("reload B: %v", err)
	}
	if a.Status != model.WaitlistNotified {
		t.Errorf("entry A status = %q, want notified", a.Status)
	}
	if b.Status != model.WaitlistWaiting {
		t.Errorf("entry B status = %q, want waiting", b.Status)
	}
}

func TestTransitions(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		if err := f.svc.Complete(context.Background(), rsv.ID, f.facility.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		got, _ := f.svc.GetByID(context.Background(), rsv.ID)
		if got.Status != model.ReservationCompleted {
			t.Errorf("status = %q, want completed", got.Status)
		}
		if got.CompletedAt == nil {
			t.Error("completed_at not set")
		}
	})

	t.Run("no-show", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		if err := f.svc.MarkNoShow(context.Background(), rsv.ID, f.facility.ID); err != nil {
			t.Fatalf("no-show: %v", err)
		}
		got, _ := f.svc.GetByID(context.Background(), rsv.ID)
		if got.Status != model.ReservationNoShow {
			t.Errorf("status = %q, want no_show", got.Status)
		}
	})

	t.Run("no-show after complete", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		if err := f.svc.Complete(context.Background(), rsv.ID, f.facility.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		err := f.svc.MarkNoShow(context.Background(), rsv.ID, f.facility.ID)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Complete(context.Background(), uuid.New(), f.facility.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("another facility cannot transition", func(t *testing.T) {
		f := newFixture(t)
		rsv := f.create(t, uuid.New(), 600, 660)

		if err := f.svc.Complete(context.Background(), rsv.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
			t.Errorf("complete err = %v, want ErrForbidden", err)
		}
		if err := f.svc.MarkNoShow(context.Background(), rsv.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
			t.Errorf("no-show err = %v, want ErrForbidden", err)
		}
		got, _ := f.svc.GetByID(context.Background(), rsv.ID)
		if got.Status != model.ReservationConfirmed {
			t.Errorf("status = %q, want confirmed after rejected transitions", got.Status)
		}
	})
}

func TestListForResourceAndDate(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()

	f.create(t, requester, 660, 720)
	f.create(t, requester, 540, 600)
	cancelled := f.create(t, requester, 780, 840)
	if err := f.svc.Cancel(context.Background(), cancelled.ID, requester); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := f.svc.ListForResourceAndDate(context.Background(), f.resource.ID, f.date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (cancelled excluded)", len(got))
	}
	if got[0].StartMin != 540 || got[1].StartMin != 660 {
		t.Errorf("order = %d,%d, want 540,660", got[0].StartMin, got[1].StartMin)
	}
}

func TestCompletePast(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()

	past, err := f.svc.Create(context.Background(), CreateRequest{
		ResourceID: f.resource.ID, Date: "2026-09-01", StartMin: 600, EndMin: 660, RequesterID: requester,
	})
	if err != nil {
		t.Fatalf("create past: %v", err)
	}
	future := f.create(t, requester, 600, 660)

	n, err := f.svc.CompletePast(context.Background(), "2026-09-05")
	if err != nil {
		t.Fatalf("complete past: %v", err)
	}
	if n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}

	gotPast, _ := f.svc.GetByID(context.Background(), past.ID)
	if gotPast.Status != model.ReservationCompleted {
		t.Errorf("past status = %q, want completed", gotPast.Status)
	}
	gotFuture, _ := f.svc.GetByID(context.Background(), future.ID)
	if gotFuture.Status != model.ReservationConfirmed {
		t.Errorf("future status = %q, want confirmed", gotFuture.Status)
	}
}
