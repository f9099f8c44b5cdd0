// Package hierarchy expands seed units into the full administrative scope
// (self plus all transitive descendants) and walks parent chains.
package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store"
)

// UnitReader is the slice of the unit store the engine needs.
type UnitReader interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.AdminUnit, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.AdminUnit, error)
}

type Engine struct {
	units UnitReader
}

func NewEngine(units UnitReader) *Engine {
	return &Engine{units: units}
}

// Descendants returns the seed ids union all transitive children, via
// breadth-first expansion. The visited set guards against malformed parent
// pointers: a unit is never expanded twice, so an accidental cycle in the
// stored tree cannot cause non-termination.
func (e *Engine) Descendants(ctx context.Context, seeds []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	result := make(map[uuid.UUID]struct{}, len(seeds))
	if len(seeds) == 0 {
		return result, nil
	}

	queue := make([]uuid.UUID, 0, len(seeds))
	for _, id := range seeds {
		if _, seen := result[id]; !seen {
			result[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := e.units.Children(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("failed to expand unit %s: %w", current, err)
		}
		for _, child := range children {
			if _, seen := result[child.ID]; seen {
				continue
			}
			result[child.ID] = struct{}{}
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}

// Ancestors walks parent_id from the given unit to the root and returns the
// chain ordered topmost ancestor first, excluding the unit itself. An unknown
// unit yields an empty chain rather than an error: this is a lookup utility,
// not a validator.
func (e *Engine) Ancestors(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{id: {}}
	var chain []uuid.UUID

	current, err := e.units.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	for current.ParentID != nil {
		parentID := *current.ParentID
		if _, dup := seen[parentID]; dup {
			// malformed tree; stop rather than loop
			break
		}
		seen[parentID] = struct{}{}
		chain = append(chain, parentID)

		current, err = e.units.ByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				break
			}
			return nil, err
		}
	}

	// collected child-to-root; reverse to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Children returns the immediate children of a unit, one store query.
func (e *Engine) Children(ctx context.Context, id uuid.UUID) ([]models.AdminUnit, error) {
	return e.units.Children(ctx, id)
}
