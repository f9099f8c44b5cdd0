package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
)

type CreateUnitRequest struct {
	Name     string          `json:"name"`
	Type     models.UnitType `json:"type"`
	ParentID *uuid.UUID      `json:"parent_id"`
	Metadata map[string]any  `json:"metadata"`
}

// OptionalID distinguishes an omitted JSON field (Set=false) from an explicit
// null (Set=true, Value=nil). Needed because clearing a unit's parent is an
// explicit null, not an absent field.
type OptionalID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", s, err)
	}
	o.Value = &id
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value.String())
}

type UpdateUnitRequest struct {
	Name     *string         `json:"name,omitempty"`
	ParentID OptionalID      `json:"parent_id"`
	Metadata *map[string]any `json:"metadata,omitempty"`
}

type UnitScopeResponse struct {
	UnitIDs []uuid.UUID `json:"unit_ids"`
}
