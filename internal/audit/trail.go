package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

// Actor identifies who performed a change. The name is stored alongside the
// id so history stays readable after the user is renamed or removed.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// Context carries the optional change metadata supplied by the caller.
type Context struct {
	Reason   string
	OriginIP string
}

// RecordCreate writes the create entry for a freshly inserted order, carrying
// its full snapshot. Must run on the same transaction as the insert.
func RecordCreate(tx *gorm.DB, o *models.Order, actor Actor, meta Context) error {
	snap, err := marshalState(Capture(o))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	entry := models.AuditEntry{
		EntityType:   models.EntityTypeOrder,
		EntityID:     o.ID,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       models.ActionCreate,
		Snapshot:     snap,
		ChangeReason: meta.Reason,
		OriginIP:     meta.OriginIP,
		Timestamp:    time.Now().UTC(),
	}
	return tx.Create(&entry).Error
}

// RecordUpdate diffs two field maps and writes one update entry per field
// whose canonical serialized value changed. Unchanged fields produce no
// entry; the reconstructor relies on that sparsity. Returns the number of
// entries written — zero for a no-op update is a valid outcome, not an
// error. Must run on the same transaction as the order mutation.
func RecordUpdate(tx *gorm.DB, entityID uuid.UUID, oldState, newState FieldMap, actor Actor, meta Context) (int, error) {
	return recordDiff(tx, entityID, oldState, newState, actor, meta, models.ActionUpdate)
}

// RecordBulkUpdate is RecordUpdate with action=bulk_update, used when one
// request touches many orders. Entries carry the same per-field diffs so
// replay treats them identically.
func RecordBulkUpdate(tx *gorm.DB, entityID uuid.UUID, oldState, newState FieldMap, actor Actor, meta Context) (int, error) {
	return recordDiff(tx, entityID, oldState, newState, actor, meta, models.ActionBulkUpdate)
}

func recordDiff(tx *gorm.DB, entityID uuid.UUID, oldState, newState FieldMap, actor Actor, meta Context, action models.AuditAction) (int, error) {
	now := time.Now().UTC()
	written := 0
	// Sorted field order keeps sequence ids deterministic for entries
	// sharing this timestamp.
	for _, name := range sortedFields(newState) {
		if provenance[name] {
			continue
		}
		newVal := newState[name]
		oldVal, existed := oldState[name]
		if existed && equalValue(oldVal, newVal) {
			continue
		}
		field := name
		entry := models.AuditEntry{
			EntityType:   models.EntityTypeOrder,
			EntityID:     entityID,
			ActorID:      actor.ID,
			ActorName:    actor.Name,
			Action:       action,
			FieldName:    &field,
			OldValue:     copyValue(oldVal),
			NewValue:     copyValue(newVal),
			ChangeReason: meta.Reason,
			OriginIP:     meta.OriginIP,
			Timestamp:    now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// RecordDelete writes the delete entry carrying the order's final snapshot.
// Deletion is logical; history remains intact and replayable.
func RecordDelete(tx *gorm.DB, o *models.Order, actor Actor, meta Context) error {
	return recordFinalSnapshot(tx, o, actor, meta, models.ActionDelete)
}

// RecordBulkDelete is RecordDelete with action=bulk_delete.
func RecordBulkDelete(tx *gorm.DB, o *models.Order, actor Actor, meta Context) error {
	return recordFinalSnapshot(tx, o, actor, meta, models.ActionBulkDelete)
}

func recordFinalSnapshot(tx *gorm.DB, o *models.Order, actor Actor, meta Context, action models.AuditAction) error {
	snap, err := marshalState(Capture(o))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	entry := models.AuditEntry{
		EntityType:   models.EntityTypeOrder,
		EntityID:     o.ID,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       action,
		Snapshot:     snap,
		ChangeReason: meta.Reason,
		OriginIP:     meta.OriginIP,
		Timestamp:    time.Now().UTC(),
	}
	return tx.Create(&entry).Error
}

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyValue(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
