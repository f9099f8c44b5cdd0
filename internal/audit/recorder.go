// Package audit appends immutable change records to a user's audit log.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/store"
)

// Change is one observed field difference. Old and New hold the stored and
// incoming values verbatim.
type Change struct {
	Field string
	Old   any
	New   any
}

// Diff compares a stored value against an incoming one and appends a Change
// when they differ. No-op updates produce no change and therefore no entry.
func Diff(changes []Change, field string, old, new any) []Change {
	if old == new {
		return changes
	}
	return append(changes, Change{Field: field, Old: old, New: new})
}

type Recorder struct {
	users store.UserStore
}

func NewRecorder(users store.UserStore) *Recorder {
	return &Recorder{users: users}
}

// Record stamps and appends one entry per change, all in a single store
// append so entries from one logical update land together and in order.
// Callers invoke this after the field mutation has succeeded; a failed append
// is reported but must not roll the mutation back.
func (r *Recorder) Record(ctx context.Context, targetID, changedBy uuid.UUID, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	entries := make([]models.AuditLogEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, models.AuditLogEntry{
			ChangedByUserID: changedBy,
			Timestamp:       now,
			FieldName:       c.Field,
			OldValue:        c.Old,
			NewValue:        c.New,
		})
	}
	if err := r.users.AppendAudit(ctx, targetID, entries); err != nil {
		return fmt.Errorf("failed to record audit entries for user %s: %w", targetID, err)
	}
	return nil
}
