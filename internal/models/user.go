package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role is the closed set of privilege levels, ordered
// super_admin > admin > user > general_read_only.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleAdmin           Role = "admin"
	RoleUser            Role = "user"
	RoleGeneralReadOnly Role = "general_read_only"
)

// higher rank = more privileges
var roleRank = map[Role]int{
	RoleGeneralReadOnly: 0,
	RoleUser:            1,
	RoleAdmin:           2,
	RoleSuperAdmin:      3,
}

func ValidRoles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleUser, RoleGeneralReadOnly}
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
// Unknown roles never satisfy anything.
func (r Role) AtLeast(other Role) bool {
	rr, ok1 := roleRank[r]
	or, ok2 := roleRank[other]
	return ok1 && ok2 && rr >= or
}

// AuditLogEntry documents one field change on a user. Entries are immutable
// and only ever appended to the owning user's audit_log.
type AuditLogEntry struct {
	ChangedByUserID uuid.UUID `json:"changed_by_user_id"`
	Timestamp       time.Time `json:"timestamp"`
	FieldName       string    `json:"field_name"`
	OldValue        any       `json:"old_value"`
	NewValue        any       `json:"new_value"`
}

// User is a directory record. AssociatedAdministrativeUnits defines the
// authority scope for admins and users; a super_admin is unrestricted by
// role and typically carries an empty list.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName         string    `gorm:"size:100;not null" json:"first_name"`
	LastName          string    `gorm:"size:100" json:"last_name,omitempty"`
	Email             string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	PhoneNumber       string    `gorm:"size:30" json:"phone_number,omitempty"`
	HashedPassword    string    `gorm:"not null" json:"-"`
	Role              Role      `gorm:"size:20;not null;default:'user'" json:"role"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	IsVerified        bool      `gorm:"not null;default:false" json:"is_verified"`
	ProfilePictureURL string    `gorm:"size:512" json:"profile_picture_url,omitempty"`

	AssociatedAdministrativeUnits datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"associated_administrative_units"`
	AssociatedHierarchyLevels     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"associated_hierarchy_levels"`

	AuditLog datatypes.JSONSlice[AuditLogEntry] `gorm:"type:jsonb" json:"audit_log"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssociatedUnitIDs parses the stored unit id strings, skipping malformed ones.
func (u *User) AssociatedUnitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.AssociatedAdministrativeUnits))
	for _, s := range u.AssociatedAdministrativeUnits {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
