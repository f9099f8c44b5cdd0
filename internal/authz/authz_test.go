package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/hierarchy"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func userWithRole(role models.Role, unitIDs ...uuid.UUID) *models.User {
	strs := make([]string, len(unitIDs))
	for i, id := range unitIDs {
		strs[i] = id.String()
	}
	return &models.User{
		ID:                            uuid.New(),
		Role:                          role,
		IsActive:                      true,
		AssociatedAdministrativeUnits: datatypes.JSONSlice[string](strs),
	}
}

func assertDenied(t *testing.T, err error, reason Reason) {
	t.Helper()
	var authzErr *Error
	require.ErrorAs(t, err, &authzErr)
	assert.Equal(t, reason, authzErr.Reason)
}

func TestCanAccessUnit(t *testing.T) {
	// Country <- State <- District, plus a sibling State under Country.
	units := storetest.NewUnitStore()
	country := units.Seed(&models.AdminUnit{Name: "Country", Type: models.UnitCountry})
	state := units.Seed(&models.AdminUnit{Name: "State", Type: models.UnitState, ParentID: &country.ID})
	district := units.Seed(&models.AdminUnit{Name: "District", Type: models.UnitDistrict, ParentID: &state.ID})
	sibling := units.Seed(&models.AdminUnit{Name: "Sibling", Type: models.UnitState, ParentID: &country.ID})

	engine := NewEngine(hierarchy.NewEngine(units))
	ctx := context.Background()

	t.Run("admin scoped to state reaches descendant district", func(t *testing.T) {
		admin := userWithRole(models.RoleAdmin, state.ID)
		assert.NoError(t, engine.CanAccessUnit(ctx, admin, district.ID))
	})

	t.Run("admin scoped to state denied sibling subtree", func(t *testing.T) {
		admin := userWithRole(models.RoleAdmin, state.ID)
		assertDenied(t, engine.CanAccessUnit(ctx, admin, sibling.ID), ReasonOutOfScope)
	})

	t.Run("admin with no associated units has empty scope", func(t *testing.T) {
		admin := userWithRole(models.RoleAdmin)
		assertDenied(t, engine.CanAccessUnit(ctx, admin, country.ID), ReasonOutOfScope)
	})

	t.Run("super admin and read only reach every unit", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleSuperAdmin, models.RoleGeneralReadOnly} {
			caller := userWithRole(role)
			assert.NoError(t, engine.CanAccessUnit(ctx, caller, district.ID), string(role))
		}
	})

	t.Run("user role is scope-bound like admin", func(t *testing.T) {
		u := userWithRole(models.RoleUser, district.ID)
		assert.NoError(t, engine.CanAccessUnit(ctx, u, district.ID))
		assertDenied(t, engine.CanAccessUnit(ctx, u, state.ID), ReasonOutOfScope)
	})
}

func TestCanRegister(t *testing.T) {
	tests := []struct {
		name    string
		caller  models.Role
		newRole models.Role
		reason  Reason // empty means allowed
	}{
		{"super admin assigns super admin", models.RoleSuperAdmin, models.RoleSuperAdmin, ""},
		{"super admin assigns admin", models.RoleSuperAdmin, models.RoleAdmin, ""},
		{"admin assigns user", models.RoleAdmin, models.RoleUser, ""},
		{"admin assigns read only", models.RoleAdmin, models.RoleGeneralReadOnly, ""},
		{"admin assigns admin", models.RoleAdmin, models.RoleAdmin, ReasonForbiddenRole},
		{"admin assigns super admin", models.RoleAdmin, models.RoleSuperAdmin, ReasonForbiddenRole},
		{"user registers nobody", models.RoleUser, models.RoleUser, ReasonForbiddenRole},
		{"read only registers nobody", models.RoleGeneralReadOnly, models.RoleUser, ReasonForbiddenRole},
	}

	engine := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.CanRegister(userWithRole(tt.caller), tt.newRole)
			if tt.reason == "" {
				assert.NoError(t, err)
			} else {
				assertDenied(t, err, tt.reason)
			}
		})
	}
}

func TestCanViewUser(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("admin cannot view other admins", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		target := userWithRole(models.RoleAdmin)
		assertDenied(t, engine.CanViewUser(caller, target), ReasonSuperAdminProtected)
	})

	t.Run("admin views plain users", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		assert.NoError(t, engine.CanViewUser(caller, userWithRole(models.RoleUser)))
	})

	t.Run("plain user denied", func(t *testing.T) {
		caller := userWithRole(models.RoleUser)
		assertDenied(t, engine.CanViewUser(caller, userWithRole(models.RoleUser)), ReasonForbiddenRole)
	})

	t.Run("super admin views anyone", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		assert.NoError(t, engine.CanViewUser(caller, userWithRole(models.RoleSuperAdmin)))
	})
}

func TestCanChangeRole(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("self role change always blocked", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		for _, newRole := range models.ValidRoles() {
			assertDenied(t, engine.CanChangeRole(caller, caller, newRole), ReasonSelfModification)
		}
	})

	t.Run("super admin cannot be demoted", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		target := userWithRole(models.RoleSuperAdmin)
		assertDenied(t, engine.CanChangeRole(caller, target, models.RoleAdmin), ReasonSuperAdminProtected)
	})

	t.Run("super admin to super admin is a no-op, allowed", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		target := userWithRole(models.RoleSuperAdmin)
		assert.NoError(t, engine.CanChangeRole(caller, target, models.RoleSuperAdmin))
	})

	t.Run("admin cannot change roles at all", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		target := userWithRole(models.RoleUser)
		assertDenied(t, engine.CanChangeRole(caller, target, models.RoleGeneralReadOnly), ReasonForbiddenRole)
	})

	t.Run("super admin promotes a user", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		target := userWithRole(models.RoleUser)
		assert.NoError(t, engine.CanChangeRole(caller, target, models.RoleAdmin))
	})
}

func TestCanUpdateUser(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("admin cannot assign elevated role on update", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		target := userWithRole(models.RoleUser)
		assertDenied(t, engine.CanUpdateUser(caller, target, models.RoleAdmin), ReasonForbiddenRole)
		assertDenied(t, engine.CanUpdateUser(caller, target, models.RoleSuperAdmin), ReasonForbiddenRole)
	})

	t.Run("admin cannot touch protected targets", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		target := userWithRole(models.RoleSuperAdmin)
		assertDenied(t, engine.CanUpdateUser(caller, target, ""), ReasonSuperAdminProtected)
	})

	t.Run("admin cannot change own role via admin endpoint", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		assertDenied(t, engine.CanUpdateUser(caller, caller, models.RoleUser), ReasonSelfModification)
	})

	t.Run("super admin update with demotion of peer is blocked", func(t *testing.T) {
		caller := userWithRole(models.RoleSuperAdmin)
		target := userWithRole(models.RoleSuperAdmin)
		assertDenied(t, engine.CanUpdateUser(caller, target, models.RoleUser), ReasonSuperAdminProtected)
	})
}

func TestCanSetStatusAndDelete(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("nobody deactivates themselves", func(t *testing.T) {
		for _, role := range models.ValidRoles() {
			caller := userWithRole(role)
			assertDenied(t, engine.CanSetStatus(caller, caller), ReasonSelfModification)
		}
	})

	t.Run("admin cannot deactivate an admin", func(t *testing.T) {
		caller := userWithRole(models.RoleAdmin)
		assertDenied(t, engine.CanSetStatus(caller, userWithRole(models.RoleAdmin)), ReasonSuperAdminProtected)
	})

	t.Run("only super admin deletes, never self", func(t *testing.T) {
		super := userWithRole(models.RoleSuperAdmin)
		assert.NoError(t, engine.CanDeleteUser(super, userWithRole(models.RoleUser)))
		assertDenied(t, engine.CanDeleteUser(super, super), ReasonSelfModification)
		assertDenied(t, engine.CanDeleteUser(userWithRole(models.RoleAdmin), userWithRole(models.RoleUser)), ReasonForbiddenRole)
	})
}

func TestErrorShape(t *testing.T) {
	err := NewEngine(nil).CanDeleteUser(userWithRole(models.RoleUser), userWithRole(models.RoleUser))
	assert.EqualError(t, err, "authorization denied: forbidden_role")

	var authzErr *Error
	assert.True(t, errors.As(err, &authzErr))
}
