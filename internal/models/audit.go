package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionCreate     AuditAction = "create"
	ActionUpdate     AuditAction = "update"
	ActionDelete     AuditAction = "delete"
	ActionBulkUpdate AuditAction = "bulk_update"
	ActionBulkDelete AuditAction = "bulk_delete"
	ActionRevert     AuditAction = "revert"
)

// AuditEntry is one row of the append-only change log. Rows are never
// updated or deleted once written. The autoincrement ID doubles as the
// tie-breaker when several entries share a timestamp.
type AuditEntry struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string      `gorm:"size:50;not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2" json:"entity_id"`
	ActorID    uuid.UUID   `gorm:"type:uuid;index:idx_audit_actor,priority:1" json:"actor_id"`
	ActorName  string      `gorm:"size:100" json:"actor_name"` // denormalized so history survives renames
	Action     AuditAction `gorm:"size:20;not null" json:"action"`

	// Set only for update/bulk_update, one entry per changed field.
	FieldName *string `gorm:"size:100" json:"field_name,omitempty"`
	OldValue  *string `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  *string `gorm:"type:text" json:"new_value,omitempty"`

	// Set only for create/delete/bulk_delete/revert.
	Snapshot datatypes.JSON `gorm:"type:jsonb" json:"snapshot,omitempty"`
	// Set only for revert: the live state immediately before the revert.
	OldState datatypes.JSON `gorm:"type:jsonb" json:"old_state,omitempty"`

	ChangeReason string `gorm:"size:255" json:"change_reason,omitempty"`
	OriginIP     string `gorm:"size:45" json:"origin_ip,omitempty"`

	// Server-assigned, the replay ordering key.
	Timestamp time.Time `gorm:"not null;index:idx_audit_entity,priority:3;index:idx_audit_actor,priority:2" json:"timestamp"`
}
