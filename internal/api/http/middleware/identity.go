package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/playvenue/playvenue_backend/pkg/reqctx"
)

const (
	HeaderUserID     = "X-User-Id"
	HeaderUserRole   = "X-User-Role"
	HeaderFacilityID = "X-Facility-Id"

	LocalsIdentity = "identity"
)

// Identity reads the gateway-forwarded identity headers and attaches a
// reqctx.Identity to the request context. Authentication happens upstream;
// the engine only trusts and interprets what the gateway asserts.
func Identity() fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := c.Get(HeaderUserID)
		if raw == "" {
			return c.Next()
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		id := &reqctx.Identity{
			UserID: userID,
			Role:   c.Get(HeaderUserRole),
		}
		if fid := c.Get(HeaderFacilityID); fid != "" {
			facilityID, err := uuid.Parse(fid)
			if err != nil {
				return fiber.ErrBadRequest
			}
			id.FacilityID = &facilityID
		}

		c.Locals(LocalsIdentity, id)
		c.SetContext(reqctx.WithIdentity(c.Context(), id))

		return c.Next()
	}
}

// IdentityRequired rejects requests that did not carry identity headers.
func IdentityRequired() fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, ok := IdentityFromFiber(c); !ok {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}

// IdentityFromFiber retrieves the parsed identity from Fiber locals.
func IdentityFromFiber(c fiber.Ctx) (*reqctx.Identity, bool) {
	v := c.Locals(LocalsIdentity)
	id, ok := v.(*reqctx.Identity)
	return id, ok && id != nil && id.UserID != uuid.Nil
}
