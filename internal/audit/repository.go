package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

// Trail is the read/replay surface over the append-only log. Writes go
// through the Record* functions on the caller's transaction; Trail itself
// only appends during Revert.
type Trail struct {
	db *gorm.DB
}

func NewTrail(db *gorm.DB) *Trail {
	return &Trail{db: db}
}

// History returns an order's audit entries newest-first. limit <= 0 means
// no cap.
func (t *Trail) History(entityID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	q := t.db.
		Where("entity_type = ? AND entity_id = ?", models.EntityTypeOrder, entityID).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []models.AuditEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ActivitySummary aggregates one actor's entries by action over the trailing
// window. Pure aggregation over the log, no replay.
type ActivitySummary struct {
	ActorID  uuid.UUID                    `json:"actor_id"`
	Since    time.Time                    `json:"since"`
	Total    int64                        `json:"total"`
	ByAction map[models.AuditAction]int64 `json:"by_action"`
}

func (t *Trail) ActivitySummary(actorID uuid.UUID, windowDays int) (*ActivitySummary, error) {
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	var rows []struct {
		Action models.AuditAction
		Count  int64
	}
	err := t.db.Model(&models.AuditEntry{}).
		Select("action, COUNT(*) as count").
		Where("actor_id = ? AND timestamp >= ?", actorID, since).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &ActivitySummary{
		ActorID:  actorID,
		Since:    since,
		ByAction: make(map[models.AuditAction]int64, len(rows)),
	}
	for _, r := range rows {
		summary.ByAction[r.Action] = r.Count
		summary.Total += r.Count
	}
	return summary, nil
}
