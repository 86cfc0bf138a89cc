package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

// Revert moves the live order back to its reconstructed state at the instant
// at, or fails with no partial effect. The entity write and the revert entry
// commit in one transaction. The pre-revert snapshot is captured immediately
// before the write, so a concurrent edit landing between reconstruction and
// revert is still audited correctly; last-writer-wins on the order itself is
// accepted.
func (t *Trail) Revert(entityID uuid.UUID, at time.Time, actor Actor, meta Context) (*models.Order, error) {
	target, err := t.SnapshotAt(entityID, at)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", entityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		oldValues := Capture(&order)

		if err := applyState(&order, target); err != nil {
			return err
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		// Re-capture after the write so the entry reflects the state that
		// actually resulted, including refreshed provenance fields.
		newValues := Capture(&order)

		newSnap, err := marshalState(newValues)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		oldSnap, err := marshalState(oldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		reason := fmt.Sprintf("reverted to state at %s", at.UTC().Format(time.RFC3339))
		if meta.Reason != "" {
			reason = reason + ": " + meta.Reason
		}

		entry := models.AuditEntry{
			EntityType:   models.EntityTypeOrder,
			EntityID:     order.ID,
			ActorID:      actor.ID,
			ActorName:    actor.Name,
			Action:       models.ActionRevert,
			Snapshot:     newSnap,
			OldState:     oldSnap,
			ChangeReason: reason,
			OriginIP:     meta.OriginIP,
			Timestamp:    time.Now().UTC(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
