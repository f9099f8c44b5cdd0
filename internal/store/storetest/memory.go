// Package storetest provides deterministic in-memory store implementations
// for service and engine tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store"
	"gorm.io/datatypes"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	// FailAppendAudit forces AppendAudit to return an error, for testing the
	// mutation-then-log ordering.
	FailAppendAudit error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*models.User)}
}

// Seed inserts a user directly, assigning an id when missing.
func (s *UserStore) Seed(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	s.users[user.ID] = &cp
	return user
}

func (s *UserStore) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) List(_ context.Context, limit, skip int, roles ...models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if len(roles) > 0 && !roleIn(u.Role, roles) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if skip > len(all) {
		skip = len(all)
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserStore) SetFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "email":
			u.Email = v.(string)
		case "phone_number":
			u.PhoneNumber = v.(string)
		case "hashed_password":
			u.HashedPassword = v.(string)
		case "role":
			u.Role = toRole(v)
		case "is_active":
			u.IsActive = v.(bool)
		case "is_verified":
			u.IsVerified = v.(bool)
		case "profile_picture_url":
			u.ProfilePictureURL = v.(string)
		case "associated_administrative_units":
			u.AssociatedAdministrativeUnits = datatypes.JSONSlice[string](toStrings(v))
		case "associated_hierarchy_levels":
			u.AssociatedHierarchyLevels = datatypes.JSONSlice[string](toStrings(v))
		}
	}
	return nil
}

func (s *UserStore) AppendAudit(_ context.Context, id uuid.UUID, entries []models.AuditLogEntry) error {
	if s.FailAppendAudit != nil {
		return s.FailAppendAudit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.AuditLog = append(u.AuditLog, entries...)
	return nil
}

func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func roleIn(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func toRole(v any) models.Role {
	switch r := v.(type) {
	case models.Role:
		return r
	case string:
		return models.Role(r)
	}
	return ""
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case datatypes.JSONSlice[string]:
		return s
	case nil:
		return nil
	}
	return nil
}

// UnitStore is an in-memory store.UnitStore.
type UnitStore struct {
	mu    sync.Mutex
	units map[uuid.UUID]*models.AdminUnit
}

func NewUnitStore() *UnitStore {
	return &UnitStore{units: make(map[uuid.UUID]*models.AdminUnit)}
}

// Seed inserts a unit directly, assigning an id when missing.
func (s *UnitStore) Seed(unit *models.AdminUnit) *models.AdminUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	cp := *unit
	s.units[unit.ID] = &cp
	return unit
}

func (s *UnitStore) ByID(_ context.Context, id uuid.UUID) (*models.AdminUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UnitStore) ByIDs(_ context.Context, ids []uuid.UUID) ([]models.AdminUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AdminUnit, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.units[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *UnitStore) All(_ context.Context) ([]models.AdminUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AdminUnit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *UnitStore) Children(_ context.Context, parentID uuid.UUID) ([]models.AdminUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AdminUnit
	for _, u := range s.units {
		if u.ParentID != nil && *u.ParentID == parentID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *UnitStore) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	children, err := s.Children(ctx, parentID)
	if err != nil {
		return 0, err
	}
	return int64(len(children)), nil
}

func (s *UnitStore) Create(_ context.Context, unit *models.AdminUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	cp := *unit
	s.units[unit.ID] = &cp
	return nil
}

func (s *UnitStore) SetFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "parent_id":
			switch p := v.(type) {
			case *uuid.UUID:
				u.ParentID = p
			case uuid.UUID:
				u.ParentID = &p
			case nil:
				u.ParentID = nil
			}
		case "metadata":
			switch m := v.(type) {
			case datatypes.JSONMap:
				u.Metadata = m
			case map[string]any:
				u.Metadata = datatypes.JSONMap(m)
			}
		}
	}
	return nil
}

func (s *UnitStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.units, id)
	return nil
}
