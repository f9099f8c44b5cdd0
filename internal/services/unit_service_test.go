package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/authz"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/hierarchy"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type unitFixture struct {
	svc   *UnitService
	units *storetest.UnitStore
}

func newUnitFixture() *unitFixture {
	units := storetest.NewUnitStore()
	h := hierarchy.NewEngine(units)
	return &unitFixture{
		svc:   NewUnitService(units, h, authz.NewEngine(h)),
		units: units,
	}
}

func superAdmin() *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleSuperAdmin, IsActive: true}
}

func scopedUser(role models.Role, unitIDs ...uuid.UUID) *models.User {
	ids := make([]string, 0, len(unitIDs))
	for _, id := range unitIDs {
		ids = append(ids, id.String())
	}
	return &models.User{
		ID:                            uuid.New(),
		Role:                          role,
		IsActive:                      true,
		AssociatedAdministrativeUnits: datatypes.JSONSlice[string](ids),
	}
}

func TestCreateUnit(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()

	country, err := f.svc.Create(ctx, superAdmin(), &dto.CreateUnitRequest{
		Name: "India",
		Type: models.UnitCountry,
	})
	require.NoError(t, err)

	state, err := f.svc.Create(ctx, superAdmin(), &dto.CreateUnitRequest{
		Name:     "Maharashtra",
		Type:     models.UnitState,
		ParentID: &country.ID,
		Metadata: map[string]any{"population": 126000000},
	})
	require.NoError(t, err)
	require.NotNil(t, state.ParentID)
	assert.Equal(t, country.ID, *state.ParentID)
}

func TestCreateUnitValidation(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, superAdmin(), &dto.CreateUnitRequest{Type: models.UnitCountry})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, superAdmin(), &dto.CreateUnitRequest{Name: "X", Type: "continent"})
	assert.ErrorIs(t, err, ErrInvalidUnitType)

	ghost := uuid.New()
	_, err = f.svc.Create(ctx, superAdmin(), &dto.CreateUnitRequest{
		Name: "Orphan", Type: models.UnitState, ParentID: &ghost,
	})
	assert.ErrorIs(t, err, ErrParentNotFound)

	var denied *authz.Error
	_, err = f.svc.Create(ctx, &models.User{Role: models.RoleAdmin}, &dto.CreateUnitRequest{
		Name: "Nope", Type: models.UnitCountry,
	})
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, authz.ReasonForbiddenRole, denied.Reason)
}

func TestListUnitsScoped(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()

	country := f.units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	state := f.units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})
	district := f.units.Seed(&models.AdminUnit{Name: "Pune", Type: models.UnitDistrict, ParentID: &state.ID})
	f.units.Seed(&models.AdminUnit{Name: "Gujarat", Type: models.UnitState, ParentID: &country.ID})

	all, err := f.svc.List(ctx, superAdmin())
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// general_read_only sees everything too
	readers, err := f.svc.List(ctx, scopedUser(models.RoleGeneralReadOnly))
	require.NoError(t, err)
	assert.Len(t, readers, 4)

	// an admin scoped to Maharashtra sees the state and its descendants only
	scoped, err := f.svc.List(ctx, scopedUser(models.RoleAdmin, state.ID))
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	names := []string{scoped[0].Name, scoped[1].Name}
	assert.ElementsMatch(t, []string{"Maharashtra", "Pune"}, names)

	// an admin with no associated units sees nothing
	empty, err := f.svc.List(ctx, scopedUser(models.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, empty)

	// out-of-scope Get is denied
	var denied *authz.Error
	_, err = f.svc.Get(ctx, scopedUser(models.RoleAdmin, district.ID), state.ID)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, authz.ReasonOutOfScope, denied.Reason)
}

func TestUpdateUnitParent(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()
	caller := superAdmin()

	country := f.units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	state := f.units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})

	// omitted parent field leaves the parent untouched
	updated, err := f.svc.Update(ctx, caller, state.ID, &dto.UpdateUnitRequest{
		Name: strptr("Maharashtra State"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra State", updated.Name)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, country.ID, *updated.ParentID)

	// explicit null detaches to a root
	updated, err = f.svc.Update(ctx, caller, state.ID, &dto.UpdateUnitRequest{
		ParentID: dto.OptionalID{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)

	// reattach
	updated, err = f.svc.Update(ctx, caller, state.ID, &dto.UpdateUnitRequest{
		ParentID: dto.OptionalID{Set: true, Value: &country.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, country.ID, *updated.ParentID)

	// a unit cannot parent itself
	_, err = f.svc.Update(ctx, caller, state.ID, &dto.UpdateUnitRequest{
		ParentID: dto.OptionalID{Set: true, Value: &state.ID},
	})
	assert.Error(t, err)

	// unknown parent rejected before mutation
	ghost := uuid.New()
	_, err = f.svc.Update(ctx, caller, state.ID, &dto.UpdateUnitRequest{
		ParentID: dto.OptionalID{Set: true, Value: &ghost},
	})
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestDeleteUnit(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()
	caller := superAdmin()

	country := f.units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	state := f.units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})

	assert.ErrorIs(t, f.svc.Delete(ctx, caller, country.ID), ErrUnitHasChildren)

	require.NoError(t, f.svc.Delete(ctx, caller, state.ID))
	require.NoError(t, f.svc.Delete(ctx, caller, country.ID))

	assert.ErrorIs(t, f.svc.Delete(ctx, caller, state.ID), ErrUnitNotFound)
}

func TestUnitChildrenAndAncestors(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()
	caller := superAdmin()

	country := f.units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	state := f.units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})
	district := f.units.Seed(&models.AdminUnit{Name: "Pune", Type: models.UnitDistrict, ParentID: &state.ID})

	children, err := f.svc.Children(ctx, caller, country.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, state.ID, children[0].ID)

	ancestors, err := f.svc.Ancestors(ctx, caller, district.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, country.ID, ancestors[0].ID)
	assert.Equal(t, state.ID, ancestors[1].ID)

	roots, err := f.svc.Ancestors(ctx, caller, country.ID)
	require.NoError(t, err)
	assert.Empty(t, roots)

	_, err = f.svc.Children(ctx, caller, uuid.New())
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestUnitScope(t *testing.T) {
	f := newUnitFixture()
	ctx := context.Background()

	country := f.units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	state := f.units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})
	district := f.units.Seed(&models.AdminUnit{Name: "Pune", Type: models.UnitDistrict, ParentID: &state.ID})

	ids, err := f.svc.Scope(ctx, superAdmin())
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	ids, err = f.svc.Scope(ctx, scopedUser(models.RoleUser, state.ID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{state.ID, district.ID}, ids)

	ids, err = f.svc.Scope(ctx, scopedUser(models.RoleUser))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
