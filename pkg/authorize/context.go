package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext extracts the GroupSubject (user ID) from the request
// identity placed in context by the identity middleware.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	id := reqctx.IdentityFromContext(ctx)
	if id == nil || id.UserID == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return GroupSubject(id.UserID.String()), nil
}

// MustSubjectFromContext extracts the GroupSubject from context or panics.
// Use only when the identity middleware is guaranteed to have run.
func MustSubjectFromContext(ctx context.Context) GroupSubject {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		panic(err)
	}
	return subject
}

// UserIDFromContext extracts the user ID as uuid.UUID from context.
// Returns uuid.Nil and error if not found.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	id := reqctx.IdentityFromContext(ctx)
	if id == nil || id.UserID == uuid.Nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	return id.UserID, nil
}

// DomainFromResource determines the appropriate domain based on resource ownership.
// - If facilityID is provided, returns facility:<uuid> domain
// - If userID is provided, returns user:<uuid> domain
// - Otherwise returns sys domain
func DomainFromResource(facilityID, userID *string) Domain {
	if facilityID != nil && *facilityID != "" {
		return FacilityDomain(*facilityID)
	}
	if userID != nil && *userID != "" {
		return UserDomain(*userID)
	}
	return DomainSys
}

// DomainFromContext determines the domain based on the current identity.
// The facility domain wins when the gateway scoped the request to a venue.
func DomainFromContext(ctx context.Context) (Domain, error) {
	id := reqctx.IdentityFromContext(ctx)
	if id == nil || id.UserID == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	if id.FacilityID != nil {
		return FacilityDomain(id.FacilityID.String()), nil
	}
	return UserDomain(id.UserID.String()), nil
}
