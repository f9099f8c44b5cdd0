package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/audit"
	"github.com/gramseva/admin-backend/internal/authz"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store"
	"gorm.io/datatypes"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("invalid old password")
	ErrSamePassword       = errors.New("new password cannot be the same as old password")
	ErrInvalidRole        = errors.New("unknown role")
)

// AccountService orchestrates registration, authentication, profile and
// administrative user updates. Every audit-producing path carries the
// authenticated caller's id as the changer.
type AccountService struct {
	users    store.UserStore
	units    store.UnitStore
	creds    *CredentialService
	authz    *authz.Engine
	recorder *audit.Recorder
}

func NewAccountService(users store.UserStore, units store.UnitStore, creds *CredentialService, az *authz.Engine, recorder *audit.Recorder) *AccountService {
	return &AccountService{users: users, units: units, creds: creds, authz: az, recorder: recorder}
}

// Authenticate verifies email+password and rejects inactive users. Lookup
// miss and bad password collapse to one error.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !s.creds.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// CurrentUser resolves a validated token subject to an active user record.
func (s *AccountService) CurrentUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// Register creates a new user on behalf of caller, enforcing the
// role-assignment table and email uniqueness.
func (s *AccountService) Register(ctx context.Context, caller *models.User, req *dto.RegisterUserRequest) (*models.User, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.authz.CanRegister(caller, req.Role); err != nil {
		return nil, err
	}
	if req.Email == "" || req.FirstName == "" || len(req.Password) < 8 {
		return nil, errors.New("first name and email required, password must be at least 8 characters")
	}

	if _, err := s.users.ByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.creds.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	levels, err := s.hierarchyLevels(ctx, req.AssociatedAdministrativeUnits)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:                uuid.New(),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		HashedPassword:    hash,
		Role:              req.Role,
		IsActive:          true,
		ProfilePictureURL: req.ProfilePictureURL,

		AssociatedAdministrativeUnits: datatypes.JSONSlice[string](req.AssociatedAdministrativeUnits),
		AssociatedHierarchyLevels:     datatypes.JSONSlice[string](levels),
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// hierarchyLevels derives the descriptive level names from the associated
// unit ids. Unknown ids are skipped, matching the lookup-utility contract of
// the hierarchy queries.
func (s *AccountService) hierarchyLevels(ctx context.Context, unitIDs []string) ([]string, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(unitIDs))
	for _, raw := range unitIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid administrative unit id %q", raw)
		}
		ids = append(ids, id)
	}
	units, err := s.units.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(units))
	var levels []string
	for _, u := range units {
		level := string(u.Type)
		if _, dup := seen[level]; dup {
			continue
		}
		seen[level] = struct{}{}
		levels = append(levels, level)
	}
	return levels, nil
}

// GetUser returns target if caller may view it.
func (s *AccountService) GetUser(ctx context.Context, caller *models.User, targetID uuid.UUID) (*models.User, error) {
	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewUser(caller, target); err != nil {
		return nil, err
	}
	return target, nil
}

// ListUsers returns the directory page visible to caller. Admins only see
// user and general_read_only records; the filter goes into the store query
// so limit/skip page over visible records, not raw rows.
func (s *AccountService) ListUsers(ctx context.Context, caller *models.User, limit, skip int) ([]models.User, error) {
	switch caller.Role {
	case models.RoleSuperAdmin:
		return s.users.List(ctx, limit, skip)
	case models.RoleAdmin:
		return s.users.List(ctx, limit, skip, models.RoleUser, models.RoleGeneralReadOnly)
	}
	return nil, &authz.Error{Reason: authz.ReasonForbiddenRole}
}

// UpdateProfile applies a self-service update of non-identity fields, with
// audit entries for each changed auditable field.
func (s *AccountService) UpdateProfile(ctx context.Context, caller *models.User, req *dto.UpdateProfileRequest) (*models.User, error) {
	fields := make(map[string]any)
	var changes []audit.Change

	if req.FirstName != nil && *req.FirstName != caller.FirstName {
		fields["first_name"] = *req.FirstName
		changes = audit.Diff(changes, "first_name", caller.FirstName, *req.FirstName)
	}
	if req.LastName != nil && *req.LastName != caller.LastName {
		fields["last_name"] = *req.LastName
		changes = audit.Diff(changes, "last_name", caller.LastName, *req.LastName)
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != caller.PhoneNumber {
		fields["phone_number"] = *req.PhoneNumber
		changes = audit.Diff(changes, "phone_number", caller.PhoneNumber, *req.PhoneNumber)
	}
	if req.ProfilePictureURL != nil && *req.ProfilePictureURL != caller.ProfilePictureURL {
		fields["profile_picture_url"] = *req.ProfilePictureURL
		changes = audit.Diff(changes, "profile_picture_url", caller.ProfilePictureURL, *req.ProfilePictureURL)
	}

	return s.apply(ctx, caller.ID, caller.ID, fields, changes)
}

// ChangePassword verifies the old password, refuses reuse, and stores a new
// hash. Password changes are not auditable fields; no entry is written.
func (s *AccountService) ChangePassword(ctx context.Context, caller *models.User, oldPassword, newPassword string) error {
	if !s.creds.VerifyPassword(oldPassword, caller.HashedPassword) {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetFields(ctx, caller.ID, map[string]any{"hashed_password": hash})
}

// UpdateUser applies an administrative update to target, enforcing the
// decision table and auditing every changed auditable field.
func (s *AccountService) UpdateUser(ctx context.Context, caller *models.User, targetID uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var newRole models.Role
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, ErrInvalidRole
		}
		newRole = *req.Role
	}
	if err := s.authz.CanUpdateUser(caller, target, newRole); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	var changes []audit.Change

	if req.FirstName != nil && *req.FirstName != target.FirstName {
		fields["first_name"] = *req.FirstName
		changes = audit.Diff(changes, "first_name", target.FirstName, *req.FirstName)
	}
	if req.LastName != nil && *req.LastName != target.LastName {
		fields["last_name"] = *req.LastName
		changes = audit.Diff(changes, "last_name", target.LastName, *req.LastName)
	}
	if req.Email != nil && *req.Email != target.Email {
		if other, err := s.users.ByEmail(ctx, *req.Email); err == nil && other.ID != target.ID {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		fields["email"] = *req.Email
		changes = audit.Diff(changes, "email", target.Email, *req.Email)
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != target.PhoneNumber {
		fields["phone_number"] = *req.PhoneNumber
		changes = audit.Diff(changes, "phone_number", target.PhoneNumber, *req.PhoneNumber)
	}
	if req.ProfilePictureURL != nil && *req.ProfilePictureURL != target.ProfilePictureURL {
		fields["profile_picture_url"] = *req.ProfilePictureURL
		changes = audit.Diff(changes, "profile_picture_url", target.ProfilePictureURL, *req.ProfilePictureURL)
	}
	if req.Role != nil && *req.Role != target.Role {
		fields["role"] = string(*req.Role)
		changes = audit.Diff(changes, "role", string(target.Role), string(*req.Role))
	}
	if req.IsActive != nil && *req.IsActive != target.IsActive {
		fields["is_active"] = *req.IsActive
		changes = audit.Diff(changes, "is_active", target.IsActive, *req.IsActive)
	}
	if req.IsVerified != nil && *req.IsVerified != target.IsVerified {
		fields["is_verified"] = *req.IsVerified
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := s.creds.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["hashed_password"] = hash
	}
	if req.AssociatedAdministrativeUnits != nil {
		levels, err := s.hierarchyLevels(ctx, *req.AssociatedAdministrativeUnits)
		if err != nil {
			return nil, err
		}
		fields["associated_administrative_units"] = datatypes.JSONSlice[string](*req.AssociatedAdministrativeUnits)
		fields["associated_hierarchy_levels"] = datatypes.JSONSlice[string](levels)
	}

	return s.apply(ctx, targetID, caller.ID, fields, changes)
}

// SetUserStatus activates or deactivates target.
func (s *AccountService) SetUserStatus(ctx context.Context, caller *models.User, targetID uuid.UUID, active bool) (*models.User, error) {
	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanSetStatus(caller, target); err != nil {
		return nil, err
	}
	if target.IsActive == active {
		return target, nil
	}
	fields := map[string]any{"is_active": active}
	changes := audit.Diff(nil, "is_active", target.IsActive, active)
	return s.apply(ctx, targetID, caller.ID, fields, changes)
}

// SetUserRole changes target's role.
func (s *AccountService) SetUserRole(ctx context.Context, caller *models.User, targetID uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanChangeRole(caller, target, role); err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}
	fields := map[string]any{"role": string(role)}
	changes := audit.Diff(nil, "role", string(target.Role), string(role))
	return s.apply(ctx, targetID, caller.ID, fields, changes)
}

// DeleteUser removes target entirely. Deletion is not audited: the record,
// audit log included, is gone with the user.
func (s *AccountService) DeleteUser(ctx context.Context, caller *models.User, targetID uuid.UUID) error {
	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.authz.CanDeleteUser(caller, target); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// AuditLogFor returns target's audit log under the same visibility rule as
// viewing the user.
func (s *AccountService) AuditLogFor(ctx context.Context, caller *models.User, targetID uuid.UUID) ([]models.AuditLogEntry, error) {
	target, err := s.GetUser(ctx, caller, targetID)
	if err != nil {
		return nil, err
	}
	return target.AuditLog, nil
}

func (s *AccountService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// apply mutates first, then appends audit entries. A failed append is logged
// and swallowed: the authoritative state change wins over the trail.
func (s *AccountService) apply(ctx context.Context, targetID, changedBy uuid.UUID, fields map[string]any, changes []audit.Change) (*models.User, error) {
	if len(fields) > 0 {
		if err := s.users.SetFields(ctx, targetID, fields); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			if errors.Is(err, store.ErrDuplicate) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		if err := s.recorder.Record(ctx, targetID, changedBy, changes); err != nil {
			slog.Error("audit append failed after mutation",
				"user_id", targetID.String(), "changed_by", changedBy.String(), "error", err)
		}
	}
	return s.loadUser(ctx, targetID)
}
