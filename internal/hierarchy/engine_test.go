package hierarchy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTree(t *testing.T) (*storetest.UnitStore, map[string]uuid.UUID) {
	t.Helper()
	units := storetest.NewUnitStore()
	ids := make(map[string]uuid.UUID)

	country := units.Seed(&models.AdminUnit{Name: "India", Type: models.UnitCountry})
	ids["country"] = country.ID

	state := units.Seed(&models.AdminUnit{Name: "Maharashtra", Type: models.UnitState, ParentID: &country.ID})
	ids["state"] = state.ID

	district := units.Seed(&models.AdminUnit{Name: "Pune", Type: models.UnitDistrict, ParentID: &state.ID})
	ids["district"] = district.ID

	sibling := units.Seed(&models.AdminUnit{Name: "Gujarat", Type: models.UnitState, ParentID: &country.ID})
	ids["sibling"] = sibling.ID

	return units, ids
}

func TestDescendants(t *testing.T) {
	units, ids := seedTree(t)
	engine := NewEngine(units)
	ctx := context.Background()

	t.Run("empty seed yields empty set", func(t *testing.T) {
		got, err := engine.Descendants(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("seed is always included", func(t *testing.T) {
		got, err := engine.Descendants(ctx, []uuid.UUID{ids["district"]})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Contains(t, got, ids["district"])
	})

	t.Run("expands transitively from root", func(t *testing.T) {
		got, err := engine.Descendants(ctx, []uuid.UUID{ids["country"]})
		require.NoError(t, err)
		assert.Len(t, got, 4)
		for _, id := range ids {
			assert.Contains(t, got, id)
		}
	})

	t.Run("mid-tree seed excludes siblings", func(t *testing.T) {
		got, err := engine.Descendants(ctx, []uuid.UUID{ids["state"]})
		require.NoError(t, err)
		assert.Contains(t, got, ids["state"])
		assert.Contains(t, got, ids["district"])
		assert.NotContains(t, got, ids["sibling"])
		assert.NotContains(t, got, ids["country"])
	})

	t.Run("multiple independent seeds form a forest", func(t *testing.T) {
		got, err := engine.Descendants(ctx, []uuid.UUID{ids["state"], ids["sibling"]})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("duplicate seeds are harmless", func(t *testing.T) {
		got, err := engine.Descendants(ctx, []uuid.UUID{ids["state"], ids["state"]})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestDescendantsTerminatesOnCycle(t *testing.T) {
	units := storetest.NewUnitStore()
	a := units.Seed(&models.AdminUnit{Name: "A", Type: models.UnitState})
	b := units.Seed(&models.AdminUnit{Name: "B", Type: models.UnitDistrict, ParentID: &a.ID})
	// malformed: point A back at its own descendant
	require.NoError(t, units.SetFields(context.Background(), a.ID, map[string]any{"parent_id": &b.ID}))

	engine := NewEngine(units)
	got, err := engine.Descendants(context.Background(), []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAncestors(t *testing.T) {
	units, ids := seedTree(t)
	engine := NewEngine(units)
	ctx := context.Background()

	t.Run("ordered root first, excluding self", func(t *testing.T) {
		got, err := engine.Ancestors(ctx, ids["district"])
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ids["country"], ids["state"]}, got)
	})

	t.Run("root has no ancestors", func(t *testing.T) {
		got, err := engine.Ancestors(ctx, ids["country"])
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown unit yields empty chain", func(t *testing.T) {
		got, err := engine.Ancestors(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("terminates on malformed cycle", func(t *testing.T) {
		cyc := storetest.NewUnitStore()
		a := cyc.Seed(&models.AdminUnit{Name: "A", Type: models.UnitState})
		b := cyc.Seed(&models.AdminUnit{Name: "B", Type: models.UnitDistrict, ParentID: &a.ID})
		require.NoError(t, cyc.SetFields(ctx, a.ID, map[string]any{"parent_id": &b.ID}))

		got, err := NewEngine(cyc).Ancestors(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a.ID}, got)
	})
}

func TestChildren(t *testing.T) {
	units, ids := seedTree(t)
	engine := NewEngine(units)

	got, err := engine.Children(context.Background(), ids["country"])
	require.NoError(t, err)
	require.Len(t, got, 2)

	names := []string{got[0].Name, got[1].Name}
	assert.ElementsMatch(t, []string{"Maharashtra", "Gujarat"}, names)
}
