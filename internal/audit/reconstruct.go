package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

// SnapshotAt reconstructs the order's virtual state as of the instant at by
// replaying ordered field diffs onto the creation snapshot. It returns
// ErrUnreconstructable when no create entry exists or when at precedes
// creation. Pure read; safe to run concurrently with live mutations because
// entries are append-only and immutable.
func (t *Trail) SnapshotAt(entityID uuid.UUID, at time.Time) (FieldMap, error) {
	var created models.AuditEntry
	err := t.db.
		Where("entity_type = ? AND entity_id = ? AND action = ?",
			models.EntityTypeOrder, entityID, models.ActionCreate).
		Order("timestamp ASC, id ASC").
		First(&created).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnreconstructable
		}
		return nil, err
	}

	if at.Before(created.Timestamp) {
		return nil, ErrUnreconstructable
	}

	state, err := unmarshalState(created.Snapshot)
	if err != nil {
		return nil, err
	}

	// bulk_update entries carry the same per-field diffs as update and
	// replay identically. A revert entry carries the full post-revert
	// snapshot and rebases the state wholesale; without that, a revert
	// would be invisible to later reconstructions.
	var diffs []models.AuditEntry
	err = t.db.
		Where("entity_type = ? AND entity_id = ? AND action IN ? AND timestamp > ? AND timestamp <= ?",
			models.EntityTypeOrder, entityID,
			[]models.AuditAction{models.ActionUpdate, models.ActionBulkUpdate, models.ActionRevert},
			created.Timestamp, at).
		Order("timestamp ASC, id ASC").
		Find(&diffs).Error
	if err != nil {
		return nil, err
	}

	for _, d := range diffs {
		if d.Action == models.ActionRevert {
			rebased, err := unmarshalState(d.Snapshot)
			if err != nil {
				return nil, err
			}
			state = rebased
			continue
		}
		if d.FieldName == nil || d.NewValue == nil {
			continue
		}
		state[*d.FieldName] = copyValue(d.NewValue)
	}
	return state, nil
}
