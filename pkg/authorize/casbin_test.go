package authorize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/google/uuid"
)

// createTestEnforcer creates an in-memory Casbin enforcer for testing
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	// Create temp directory for test files
	tmpDir := t.TempDir()

	// Write model config
	modelPath := filepath.Join(tmpDir, "model.conf")
	modelContent := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (g(r.sub, p.sub, r.dom) || g2(r.sub, p.sub)) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || keyMatch(r.act, p.act))
`
	if err := os.WriteFile(modelPath, []byte(modelContent), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}

	// Write empty policy file
	policyPath := filepath.Join(tmpDir, "policy.csv")
	if err := os.WriteFile(policyPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	// Create adapter with file
	a := fileadapter.NewAdapter(policyPath)

	e, err := casbin.NewDistributedEnforcer(modelPath, a)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}

	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e
}

func newTestAuthorization(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("failed to create authorization: %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil)
		if err == nil {
			t.Error("Expected error for nil enforcer")
		}
	})

	t.Run("succeeds with valid enforcer", func(t *testing.T) {
		e := createTestEnforcer(t)
		auth, err := NewAuthorization(e)
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if auth == nil {
			t.Error("Expected non-nil authorization")
		}
	})
}

func TestEnforce(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	ownerID := uuid.New().String()
	facilityID := uuid.New().String()
	domain := FacilityDomain(facilityID)

	if _, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(ownerID), RoleFacilityOwner, domain); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := auth.AddPermission(ctx, RoleFacilityOwner, domain, ResourceCourt, ActionManage, EffectAllow); err != nil {
		t.Fatalf("add permission: %v", err)
	}

	tests := []struct {
		name     string
		subject  GroupSubject
		domain   Domain
		resource Resource
		action   Action
		want     bool
		wantErr  bool
	}{
		{
			name:     "owner can manage courts in own facility",
			subject:  GroupSubject(ownerID),
			domain:   domain,
			resource: ResourceCourt,
			action:   ActionManage,
			want:     true,
		},
		{
			name:     "owner cannot touch rbac",
			subject:  GroupSubject(ownerID),
			domain:   domain,
			resource: ResourceRBAC,
			action:   ActionGrant,
			want:     false,
		},
		{
			name:     "stranger has nothing",
			subject:  GroupSubject(uuid.New().String()),
			domain:   domain,
			resource: ResourceCourt,
			action:   ActionManage,
			want:     false,
		},
		{
			name:     "invalid domain rejected",
			subject:  GroupSubject(ownerID),
			domain:   Domain("invalid"),
			resource: ResourceCourt,
			action:   ActionManage,
			wantErr:  true,
		},
		{
			name:     "unknown resource rejected",
			subject:  GroupSubject(ownerID),
			domain:   domain,
			resource: Resource("unknown"),
			action:   ActionManage,
			wantErr:  true,
		},
		{
			name:     "empty subject rejected",
			subject:  GroupSubject(""),
			domain:   domain,
			resource: ResourceCourt,
			action:   ActionManage,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := auth.Enforce(ctx, tt.subject, tt.domain, tt.resource, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if allowed != tt.want {
				t.Errorf("allowed = %v, want %v", allowed, tt.want)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	staffID := uuid.New().String()
	domain := FacilityDomain(uuid.New().String())

	auth.AddRoleForUserInDomain(ctx, GroupSubject(staffID), RoleFacilityStaff, domain)
	auth.AddPermission(ctx, RoleFacilityStaff, domain, ResourceReservation, ActionCancel, EffectAllow)

	t.Run("allowed returns nil", func(t *testing.T) {
		err := auth.MustEnforce(ctx, GroupSubject(staffID), domain, ResourceReservation, ActionCancel)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("denied returns ErrForbidden", func(t *testing.T) {
		err := auth.MustEnforce(ctx, GroupSubject(staffID), domain, ResourceRBAC, ActionGrant)
		if err != ErrForbidden {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
}

func TestSuperadminBypass(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	adminID := uuid.New().String()
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(adminID), RolePlatformSuperAdmin, DomainSys)
	if err != nil {
		t.Fatalf("add role: %v", err)
	}

	// No explicit policy for this resource; bypass should still allow.
	allowed, err := auth.Enforce(ctx, GroupSubject(adminID), DomainSys, ResourceFacility, ActionDelete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("superadmin should bypass explicit policies")
	}
}

func TestRoleManagement(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	userID := uuid.New().String()
	domain := FacilityDomain(uuid.New().String())

	t.Run("add role", func(t *testing.T) {
		added, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), RoleFacilityStaff, domain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !added {
			t.Error("expected role to be added")
		}
	})

	t.Run("get roles", func(t *testing.T) {
		roles, err := auth.GetRolesForUserInDomain(ctx, GroupSubject(userID), domain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(roles) != 1 || roles[0] != RoleFacilityStaff {
			t.Errorf("roles = %v, want [%s]", roles, RoleFacilityStaff)
		}
	})

	t.Run("remove role", func(t *testing.T) {
		removed, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(userID), RoleFacilityStaff, domain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !removed {
			t.Error("expected role to be removed")
		}
		roles, _ := auth.GetRolesForUserInDomain(ctx, GroupSubject(userID), domain)
		if len(roles) != 0 {
			t.Errorf("roles after removal = %v, want empty", roles)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), Role("invalid-role"), domain)
		if err == nil {
			t.Error("expected error for unknown role")
		}
	})
}

func TestPermissionManagement(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	t.Run("add permission", func(t *testing.T) {
		added, err := auth.AddPermission(ctx, RolePlayer, WildcardDomain, ResourceWaitlist, ActionCreate, EffectAllow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !added {
			t.Error("expected permission to be added")
		}
	})

	t.Run("remove permission", func(t *testing.T) {
		removed, err := auth.RemovePermission(ctx, RolePlayer, WildcardDomain, ResourceWaitlist, ActionCreate, EffectAllow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !removed {
			t.Error("expected permission to be removed")
		}
	})

	t.Run("invalid effect rejected", func(t *testing.T) {
		_, err := auth.AddPermission(ctx, RolePlayer, DomainSys, ResourceWaitlist, ActionRead, PolicyEffect("invalid"))
		if err == nil {
			t.Error("expected error for invalid effect")
		}
	})
}

func TestSeedDefaultPolicies(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	if err := SeedDefaultPolicies(ctx, auth); err != nil {
		t.Fatalf("seed: %v", err)
	}

	playerID := uuid.New().String()
	if err := AssignPlayerRole(ctx, auth, playerID); err != nil {
		t.Fatalf("assign player role: %v", err)
	}

	domain := UserDomain(playerID)
	allowed, err := auth.Enforce(ctx, GroupSubject(playerID), domain, ResourceReservation, ActionCreate)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !allowed {
		t.Error("seeded player should be able to create reservations")
	}
}
