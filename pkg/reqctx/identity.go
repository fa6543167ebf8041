package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the requester identity forwarded by the platform gateway.
// The engine trusts these values; authentication happens upstream.
type Identity struct {
	// UserID is the authenticated user's ID.
	UserID uuid.UUID

	// Role is the gateway-asserted role (player, owner, staff, admin).
	Role string

	// FacilityID is set when the requester acts on behalf of a facility.
	FacilityID *uuid.UUID
}

// WithIdentity stores the requester identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, keyIdentity, id)
}

// IdentityFromContext retrieves the requester identity from the context.
// Returns nil if not set (anonymous request).
func IdentityFromContext(ctx context.Context) *Identity {
	v := ctx.Value(keyIdentity)
	if v == nil {
		return nil
	}
	id, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return id
}

// UserIDFromContext returns the requester's user ID, if present.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id := IdentityFromContext(ctx)
	if id == nil {
		return uuid.Nil, false
	}
	return id.UserID, true
}

// IsAuthenticated reports whether the request carries a requester identity.
func IsAuthenticated(ctx context.Context) bool {
	id := IdentityFromContext(ctx)
	return id != nil && id.UserID != uuid.Nil
}
