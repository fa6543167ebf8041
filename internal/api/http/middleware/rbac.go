package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/playvenue/playvenue_backend/pkg/authorize"
)

// RequirePermission checks if the identified user has the given permission
// in the current facility domain (from the X-Facility-Id header) or their
// own user domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := IdentityFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var domain authorize.Domain
		if id.FacilityID != nil {
			domain = authorize.FacilityDomain(id.FacilityID.String())
		} else {
			domain = authorize.UserDomain(id.UserID.String())
		}

		subject := authorize.GroupSubject(id.UserID.String())
		if err := auth.MustEnforce(c.Context(), subject, domain, resource, action); err != nil {
			if err == authorize.ErrForbidden {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
