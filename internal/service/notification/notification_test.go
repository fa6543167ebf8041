package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/playvenue/playvenue_backend/internal/model"
)

func newTestSvc(t *testing.T) Service {
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
	return New(db)
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestSvc(t)
	userID := uuid.New()

	n, err := svc.Create(ctx, CreateRequest{
		UserID: userID,
		Type:   "reservation_created",
		Title:  "Booking confirmed",
		Data:   map[string]any{"reservation_id": uuid.New().String(), "start_min": 600},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ReadAt != nil {
		t.Error("new notification should be unread")
	}

	var data map[string]any
	if err := json.Unmarshal(n.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["start_min"] != float64(600) {
		t.Errorf("data = %v", data)
	}

	list, err := svc.List(ctx, userID, false, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d, want 1", len(list))
	}

	// Other users see nothing.
	list, err = svc.List(ctx, uuid.New(), false, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("list = %d, want 0", len(list))
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := newTestSvc(t)
	userID := uuid.New()

	n, err := svc.Create(ctx, CreateRequest{UserID: userID, Type: "waitlist_promoted", Title: "Your slot opened up"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkRead(ctx, n.ID, userID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, err := svc.List(ctx, userID, true, 1, 20)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("unread = %d, want 0", len(unread))
	}

	// Marking again is a no-op, not an error.
	if err := svc.MarkRead(ctx, n.ID, userID); err != nil {
		t.Fatalf("second mark read: %v", err)
	}

	t.Run("unknown id", func(t *testing.T) {
		if err := svc.MarkRead(ctx, uuid.New(), userID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("foreign notification", func(t *testing.T) {
		if err := svc.MarkRead(ctx, n.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc := newTestSvc(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateRequest{UserID: userID, Type: "reservation_created", Title: "Booking confirmed"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := svc.MarkAllRead(ctx, userID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	unread, err := svc.List(ctx, userID, true, 1, 20)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("unread = %d, want 0", len(unread))
	}
}
