package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/pkg/reqctx"
)

func TestSubjectFromContext(t *testing.T) {
	t.Run("returns subject when identity present", func(t *testing.T) {
		userID := uuid.New()
		ctx := reqctx.WithIdentity(context.Background(), &reqctx.Identity{UserID: userID})

		subject, err := SubjectFromContext(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if subject != GroupSubject(userID.String()) {
			t.Errorf("subject = %q, want %q", subject, userID)
		}
	})

	t.Run("errors on empty context", func(t *testing.T) {
		_, err := SubjectFromContext(context.Background())
		if err != ErrNoSubjectInContext {
			t.Errorf("err = %v, want ErrNoSubjectInContext", err)
		}
	})

	t.Run("errors on nil user id", func(t *testing.T) {
		ctx := reqctx.WithIdentity(context.Background(), &reqctx.Identity{})
		_, err := SubjectFromContext(ctx)
		if err != ErrNoSubjectInContext {
			t.Errorf("err = %v, want ErrNoSubjectInContext", err)
		}
	})
}

func TestUserIDFromContext(t *testing.T) {
	userID := uuid.New()
	ctx := reqctx.WithIdentity(context.Background(), &reqctx.Identity{UserID: userID})

	got, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("user id = %v, want %v", got, userID)
	}
}

func TestDomainFromResource(t *testing.T) {
	facilityID := uuid.New().String()
	userID := uuid.New().String()

	tests := []struct {
		name       string
		facilityID *string
		userID     *string
		want       Domain
	}{
		{"facility wins", &facilityID, &userID, FacilityDomain(facilityID)},
		{"user fallback", nil, &userID, UserDomain(userID)},
		{"sys default", nil, nil, DomainSys},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainFromResource(tt.facilityID, tt.userID); got != tt.want {
				t.Errorf("DomainFromResource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainFromContext(t *testing.T) {
	t.Run("facility scoped", func(t *testing.T) {
		userID := uuid.New()
		facilityID := uuid.New()
		ctx := reqctx.WithIdentity(context.Background(), &reqctx.Identity{UserID: userID, FacilityID: &facilityID})

		got, err := DomainFromContext(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != FacilityDomain(facilityID.String()) {
			t.Errorf("domain = %q, want facility domain", got)
		}
	})

	t.Run("user scoped", func(t *testing.T) {
		userID := uuid.New()
		ctx := reqctx.WithIdentity(context.Background(), &reqctx.Identity{UserID: userID})

		got, err := DomainFromContext(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != UserDomain(userID.String()) {
			t.Errorf("domain = %q, want user domain", got)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		if _, err := DomainFromContext(context.Background()); err != ErrNoSubjectInContext {
			t.Errorf("err = %v, want ErrNoSubjectInContext", err)
		}
	})
}
