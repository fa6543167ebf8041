package authorize

import (
	"context"
	"log/slog"
)

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	// System-level policies (domain: sys)
	sysPolicies := []PermissionPolicy{
		// SuperAdmin: god mode
		{RolePlatformSuperAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow},
	}

	// Facility-level policies (domain: facility:*)
	facilityPolicies := []PermissionPolicy{
		// Owner: full control over the venue and its calendar
		{RoleFacilityOwner, WildcardDomain, ResourceFacility, ActionRead, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceFacility, ActionUpdate, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceCourt, ActionCreate, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceCourt, ActionDelete, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceHours, ActionUpdate, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceBlockedDate, ActionCreate, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceBlockedDate, ActionDelete, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceReservation, ActionList, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceReservation, ActionRead, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceReservation, ActionCancel, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceReservation, ActionComplete, EffectAllow},
		{RoleFacilityOwner, WildcardDomain, ResourceRBAC, ActionGrant, EffectAllow},

		// Staff: run the front desk, no venue or RBAC management
		{RoleFacilityStaff, WildcardDomain, ResourceReservation, ActionList, EffectAllow},
		{RoleFacilityStaff, WildcardDomain, ResourceReservation, ActionRead, EffectAllow},
		{RoleFacilityStaff, WildcardDomain, ResourceReservation, ActionCancel, EffectAllow},
		{RoleFacilityStaff, WildcardDomain, ResourceReservation, ActionComplete, EffectAllow},
		{RoleFacilityStaff, WildcardDomain, ResourceBlockedDate, ActionCreate, EffectAllow},
		{RoleFacilityStaff, WildcardDomain, ResourceBlockedDate, ActionDelete, EffectAllow},
	}

	// Player policies (domain: user:*)
	playerPolicies := []PermissionPolicy{
		{RolePlayer, WildcardDomain, ResourceAvailability, ActionRead, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceFacility, ActionCreate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceReservation, ActionCreate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceReservation, ActionRead, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceReservation, ActionList, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceReservation, ActionCancel, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceRecurringRule, ActionCreate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceRecurringRule, ActionRead, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceRecurringRule, ActionList, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceRecurringRule, ActionUpdate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceRecurringRule, ActionCancel, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceWaitlist, ActionCreate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceWaitlist, ActionRead, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceWaitlist, ActionUpdate, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceNotification, ActionRead, EffectAllow},
		{RolePlayer, WildcardDomain, ResourceNotification, ActionUpdate, EffectAllow},
	}

	allPolicies := append(append(sysPolicies, facilityPolicies...), playerPolicies...)

	for _, p := range allPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(allPolicies))
	return nil
}

// AssignPlayerRole assigns the player role in the user's private domain.
// Call this the first time a player is seen.
func AssignPlayerRole(ctx context.Context, auth IAuthorization, userID string) error {
	domain := UserDomain(userID)
	subject := GroupSubject(userID)

	_, err := auth.AddRoleForUserInDomain(ctx, subject, RolePlayer, domain)
	return err
}

// AssignFacilityRole assigns a facility role to a user for a specific venue.
// Valid roles: RoleFacilityOwner, RoleFacilityStaff
func AssignFacilityRole(ctx context.Context, auth IAuthorization, userID, facilityID string, role Role) error {
	switch role {
	case RoleFacilityOwner, RoleFacilityStaff:
	default:
		return ErrInvalidArgs
	}

	domain := FacilityDomain(facilityID)
	subject := GroupSubject(userID)

	_, err := auth.AddRoleForUserInDomain(ctx, subject, role, domain)
	return err
}

// RemoveFacilityRole removes a facility role from a user for a specific venue.
func RemoveFacilityRole(ctx context.Context, auth IAuthorization, userID, facilityID string, role Role) error {
	domain := FacilityDomain(facilityID)
	subject := GroupSubject(userID)

	_, err := auth.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	return err
}

// GetFacilityRoles returns all roles a user has at a specific venue.
func GetFacilityRoles(ctx context.Context, auth IAuthorization, userID, facilityID string) ([]Role, error) {
	domain := FacilityDomain(facilityID)
	subject := GroupSubject(userID)

	return auth.GetRolesForUserInDomain(ctx, subject, domain)
}

// AssignSystemRole assigns a system-level role to a user.
// Note: RolePlatformSuperAdmin should be assigned manually/carefully.
func AssignSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	if role != RolePlatformSuperAdmin {
		return ErrInvalidArgs
	}

	subject := GroupSubject(userID)
	_, err := auth.AddRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}

// RemoveSystemRole removes a system-level role from a user.
func RemoveSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	subject := GroupSubject(userID)
	_, err := auth.RemoveRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}
