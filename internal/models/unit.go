package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UnitType is the level of an administrative unit, ordered broadest first.
type UnitType string

const (
	UnitCountry  UnitType = "country"
	UnitState    UnitType = "state"
	UnitDistrict UnitType = "district"
	UnitCity     UnitType = "city"
	UnitTaluka   UnitType = "taluka"
	UnitMohalla  UnitType = "mohalla"
)

var unitTypeOrder = []UnitType{
	UnitCountry, UnitState, UnitDistrict, UnitCity, UnitTaluka, UnitMohalla,
}

func UnitTypes() []UnitType {
	return unitTypeOrder
}

func (t UnitType) Valid() bool {
	for _, u := range unitTypeOrder {
		if t == u {
			return true
		}
	}
	return false
}

// AdminUnit is a node in the administrative hierarchy. The parent relation is
// a nullable id reference, never an embedded link, so the tree stays flat on
// the wire and in storage (arena-style, traversed by repeated lookup).
type AdminUnit struct {
	ID       uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string            `gorm:"size:255;not null;index" json:"name"`
	Type     UnitType          `gorm:"size:20;not null" json:"type"`
	ParentID *uuid.UUID        `gorm:"type:uuid;index" json:"parent_id"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
