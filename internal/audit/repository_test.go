package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordertrail/ordertrail/internal/models"
)

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	seedHistory(t, db, o, t0)
	seedDiff(t, db, o.ID, models.ActionUpdate, "status", "draft", "confirmed", t0.Add(time.Minute))
	seedDiff(t, db, o.ID, models.ActionUpdate, "status", "confirmed", "shipped", t0.Add(2*time.Minute))

	entries, err := trail.History(o.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ActionUpdate, entries[0].Action)
	assert.Equal(t, "shipped", *entries[0].NewValue)
	assert.Equal(t, models.ActionCreate, entries[2].Action)

	capped, err := trail.History(o.ID, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, entries[0].ID, capped[0].ID)
}

func TestHistoryScopedToEntity(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	a := newTestOrder()
	b := newTestOrder()
	b.OrderNumber = "SO-1002"
	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	seedHistory(t, db, a, t0)
	seedHistory(t, db, b, t0)

	entries, err := trail.History(a.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].EntityID)
}

func TestActivitySummaryCountsByActionWithinWindow(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	otherActor := uuid.New()
	now := time.Now().UTC()

	write := func(actorID uuid.UUID, action models.AuditAction, ts time.Time) {
		require.NoError(t, db.Create(&models.AuditEntry{
			EntityType: models.EntityTypeOrder,
			EntityID:   uuid.New(),
			ActorID:    actorID,
			Action:     action,
			Timestamp:  ts,
		}).Error)
	}

	write(testActor.ID, models.ActionCreate, now.Add(-time.Hour))
	write(testActor.ID, models.ActionUpdate, now.Add(-2*time.Hour))
	write(testActor.ID, models.ActionUpdate, now.Add(-24*time.Hour))
	write(testActor.ID, models.ActionRevert, now.Add(-48*time.Hour))
	// Outside the 7-day window.
	write(testActor.ID, models.ActionDelete, now.AddDate(0, 0, -10))
	// Someone else entirely.
	write(otherActor, models.ActionUpdate, now.Add(-time.Hour))

	summary, err := trail.ActivitySummary(testActor.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, testActor.ID, summary.ActorID)
	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, int64(1), summary.ByAction[models.ActionCreate])
	assert.Equal(t, int64(2), summary.ByAction[models.ActionUpdate])
	assert.Equal(t, int64(1), summary.ByAction[models.ActionRevert])
	assert.Zero(t, summary.ByAction[models.ActionDelete])
}

func TestActivitySummaryEmptyWindow(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	summary, err := trail.ActivitySummary(uuid.New(), 30)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.ByAction)
}
