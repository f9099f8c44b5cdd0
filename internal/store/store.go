package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint (users.email) was violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the data access surface for user records.
type UserStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	// List pages over users ordered by creation time. A non-empty roles list
	// restricts the page to those roles, applied before limit/skip so pages
	// stay full.
	List(ctx context.Context, limit, skip int, roles ...models.Role) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	// SetFields applies a partial update; keys are column names.
	SetFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// AppendAudit concatenates entries onto the user's audit_log in a single
	// statement, preserving order and never touching existing entries.
	AppendAudit(ctx context.Context, id uuid.UUID, entries []models.AuditLogEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitStore is the data access surface for the administrative unit tree.
type UnitStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.AdminUnit, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdminUnit, error)
	All(ctx context.Context) ([]models.AdminUnit, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.AdminUnit, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	Create(ctx context.Context, unit *models.AdminUnit) error
	SetFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
