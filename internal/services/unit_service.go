package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/authz"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/hierarchy"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store"
	"gorm.io/datatypes"
)

var (
	ErrUnitNotFound    = errors.New("administrative unit not found")
	ErrParentNotFound  = errors.New("parent unit not found")
	ErrUnitHasChildren = errors.New("unit has children and cannot be deleted")
	ErrInvalidUnitType = errors.New("unknown unit type")
)

// UnitService is CRUD over administrative units plus the hierarchy queries.
// Mutations are super_admin only; reads are scope-filtered.
type UnitService struct {
	units     store.UnitStore
	hierarchy *hierarchy.Engine
	authz     *authz.Engine
}

func NewUnitService(units store.UnitStore, h *hierarchy.Engine, az *authz.Engine) *UnitService {
	return &UnitService{units: units, hierarchy: h, authz: az}
}

// Create validates the declared parent before any mutation.
func (s *UnitService) Create(ctx context.Context, caller *models.User, req *dto.CreateUnitRequest) (*models.AdminUnit, error) {
	if err := s.authz.CanManageUnits(caller); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, errors.New("unit name is required")
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidUnitType
	}
	if req.ParentID != nil {
		if _, err := s.units.ByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to check parent: %w", err)
		}
	}

	unit := &models.AdminUnit{
		ID:       uuid.New(),
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		Metadata: datatypes.JSONMap(req.Metadata),
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// List returns the units visible to caller: everything for super_admin and
// general_read_only, the expanded associated-unit scope for admin and user.
func (s *UnitService) List(ctx context.Context, caller *models.User) ([]models.AdminUnit, error) {
	all, scope, err := s.authz.UnitScope(ctx, caller)
	if err != nil {
		return nil, err
	}
	if all {
		return s.units.All(ctx)
	}
	if len(scope) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(scope))
	for id := range scope {
		ids = append(ids, id)
	}
	return s.units.ByIDs(ctx, ids)
}

// Get returns one unit if it lies inside caller's scope.
func (s *UnitService) Get(ctx context.Context, caller *models.User, id uuid.UUID) (*models.AdminUnit, error) {
	unit, err := s.loadUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanAccessUnit(ctx, caller, id); err != nil {
		return nil, err
	}
	return unit, nil
}

// Update mutates name/parent/metadata. An explicit null parent detaches the
// unit to a root; an omitted parent field leaves it unchanged.
func (s *UnitService) Update(ctx context.Context, caller *models.User, id uuid.UUID, req *dto.UpdateUnitRequest) (*models.AdminUnit, error) {
	if err := s.authz.CanManageUnits(caller); err != nil {
		return nil, err
	}
	unit, err := s.loadUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if req.Name != nil && *req.Name != "" {
		fields["name"] = *req.Name
	}
	if req.ParentID.Set {
		if req.ParentID.Value != nil {
			if *req.ParentID.Value == id {
				return nil, errors.New("unit cannot be its own parent")
			}
			if _, err := s.units.ByID(ctx, *req.ParentID.Value); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, ErrParentNotFound
				}
				return nil, fmt.Errorf("failed to check parent: %w", err)
			}
		}
		fields["parent_id"] = req.ParentID.Value
	}
	if req.Metadata != nil {
		fields["metadata"] = datatypes.JSONMap(*req.Metadata)
	}
	if len(fields) == 0 {
		return unit, nil
	}

	if err := s.units.SetFields(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return s.loadUnit(ctx, id)
}

// Delete removes a childless unit; a unit with children is a conflict.
func (s *UnitService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	if err := s.authz.CanManageUnits(caller); err != nil {
		return err
	}
	if _, err := s.loadUnit(ctx, id); err != nil {
		return err
	}
	count, err := s.units.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUnitHasChildren
	}
	if err := s.units.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnitNotFound
		}
		return err
	}
	return nil
}

// Children returns the immediate children of a unit within caller's scope.
func (s *UnitService) Children(ctx context.Context, caller *models.User, id uuid.UUID) ([]models.AdminUnit, error) {
	if _, err := s.loadUnit(ctx, id); err != nil {
		return nil, err
	}
	if err := s.authz.CanAccessUnit(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.hierarchy.Children(ctx, id)
}

// Ancestors returns the parent chain of a unit, topmost first.
func (s *UnitService) Ancestors(ctx context.Context, caller *models.User, id uuid.UUID) ([]models.AdminUnit, error) {
	if _, err := s.loadUnit(ctx, id); err != nil {
		return nil, err
	}
	if err := s.authz.CanAccessUnit(ctx, caller, id); err != nil {
		return nil, err
	}
	ids, err := s.hierarchy.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	units, err := s.units.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// preserve root-first chain order over the store's return order
	byID := make(map[uuid.UUID]models.AdminUnit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	ordered := make([]models.AdminUnit, 0, len(ids))
	for _, aid := range ids {
		if u, ok := byID[aid]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// Scope returns the caller's full expanded unit scope as ids.
func (s *UnitService) Scope(ctx context.Context, caller *models.User) ([]uuid.UUID, error) {
	all, scope, err := s.authz.UnitScope(ctx, caller)
	if err != nil {
		return nil, err
	}
	if all {
		units, err := s.units.All(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(units))
		for _, u := range units {
			ids = append(ids, u.ID)
		}
		return ids, nil
	}
	ids := make([]uuid.UUID, 0, len(scope))
	for id := range scope {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *UnitService) loadUnit(ctx context.Context, id uuid.UUID) (*models.AdminUnit, error) {
	unit, err := s.units.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	return unit, nil
}
