// Package authz holds the role + scope decision tables. Decisions are pure
// functions over (caller, target); only unit-scope checks touch storage,
// through the hierarchy engine.
package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/hierarchy"
	"github.com/gramseva/admin-backend/internal/models"
)

// Reason is a machine-readable denial code.
type Reason string

const (
	ReasonForbiddenRole       Reason = "forbidden_role"
	ReasonOutOfScope          Reason = "out_of_scope"
	ReasonSelfModification    Reason = "self_modification_blocked"
	ReasonSuperAdminProtected Reason = "super_admin_protected"
	ReasonHasChildren         Reason = "has_children"
)

// Error is an authorization denial. Every denial carries a distinct reason so
// the transport layer can surface it without guessing.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return "authorization denied: " + string(e.Reason)
}

func deny(reason Reason) error {
	return &Error{Reason: reason}
}

type Engine struct {
	hierarchy *hierarchy.Engine
}

func NewEngine(h *hierarchy.Engine) *Engine {
	return &Engine{hierarchy: h}
}

// manageable reports whether target's role is one an admin may act on.
func manageable(role models.Role) bool {
	return role == models.RoleUser || role == models.RoleGeneralReadOnly
}

// UnitScope returns the caller's expanded unit scope. all=true means
// unrestricted (super_admin and general_read_only see every unit). For
// admin/user callers an empty associated-unit list expands to an empty scope.
func (e *Engine) UnitScope(ctx context.Context, caller *models.User) (all bool, scope map[uuid.UUID]struct{}, err error) {
	switch caller.Role {
	case models.RoleSuperAdmin, models.RoleGeneralReadOnly:
		return true, nil, nil
	case models.RoleAdmin, models.RoleUser:
		scope, err = e.hierarchy.Descendants(ctx, caller.AssociatedUnitIDs())
		if err != nil {
			return false, nil, fmt.Errorf("failed to expand unit scope: %w", err)
		}
		return false, scope, nil
	}
	return false, nil, deny(ReasonForbiddenRole)
}

// CanAccessUnit decides unit-level read access for the caller.
func (e *Engine) CanAccessUnit(ctx context.Context, caller *models.User, unitID uuid.UUID) error {
	all, scope, err := e.UnitScope(ctx, caller)
	if err != nil {
		return err
	}
	if all {
		return nil
	}
	if _, ok := scope[unitID]; !ok {
		return deny(ReasonOutOfScope)
	}
	return nil
}

// CanManageUnits gates unit mutations (create/update/delete).
func (e *Engine) CanManageUnits(caller *models.User) error {
	if caller.Role != models.RoleSuperAdmin {
		return deny(ReasonForbiddenRole)
	}
	return nil
}

// CanRegister decides whether caller may create a new user with the given
// role. Super admins assign any role; admins only user/general_read_only.
func (e *Engine) CanRegister(caller *models.User, newRole models.Role) error {
	switch caller.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
		if !manageable(newRole) {
			return deny(ReasonForbiddenRole)
		}
		return nil
	}
	return deny(ReasonForbiddenRole)
}

// CanViewUser decides whether caller may read target's record or audit log.
func (e *Engine) CanViewUser(caller, target *models.User) error {
	switch caller.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
		if caller.ID != target.ID && !manageable(target.Role) {
			return deny(ReasonSuperAdminProtected)
		}
		return nil
	}
	return deny(ReasonForbiddenRole)
}

// CanUpdateUser decides whether caller may update target's fields through the
// administrative endpoints. newRole, when non-empty, is the role the update
// would assign.
func (e *Engine) CanUpdateUser(caller, target *models.User, newRole models.Role) error {
	switch caller.Role {
	case models.RoleSuperAdmin:
		if newRole != "" {
			return e.CanChangeRole(caller, target, newRole)
		}
		return nil
	case models.RoleAdmin:
		if caller.ID != target.ID && !manageable(target.Role) {
			return deny(ReasonSuperAdminProtected)
		}
		if newRole != "" {
			if caller.ID == target.ID {
				return deny(ReasonSelfModification)
			}
			if !manageable(newRole) {
				return deny(ReasonForbiddenRole)
			}
		}
		return nil
	}
	return deny(ReasonForbiddenRole)
}

// CanChangeRole decides a role change. Only super admins change roles, never
// their own, and a super_admin can never be demoted.
func (e *Engine) CanChangeRole(caller, target *models.User, newRole models.Role) error {
	if caller.Role != models.RoleSuperAdmin {
		return deny(ReasonForbiddenRole)
	}
	if caller.ID == target.ID {
		return deny(ReasonSelfModification)
	}
	if target.Role == models.RoleSuperAdmin && newRole != models.RoleSuperAdmin {
		return deny(ReasonSuperAdminProtected)
	}
	return nil
}

// CanSetStatus decides an is_active change; self-deactivation through the
// administrative endpoint is always blocked.
func (e *Engine) CanSetStatus(caller, target *models.User) error {
	if caller.ID == target.ID {
		return deny(ReasonSelfModification)
	}
	switch caller.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
		if !manageable(target.Role) {
			return deny(ReasonSuperAdminProtected)
		}
		return nil
	}
	return deny(ReasonForbiddenRole)
}

// CanDeleteUser decides user deletion: super admins only, never themselves.
func (e *Engine) CanDeleteUser(caller, target *models.User) error {
	if caller.Role != models.RoleSuperAdmin {
		return deny(ReasonForbiddenRole)
	}
	if caller.ID == target.ID {
		return deny(ReasonSelfModification)
	}
	return nil
}
