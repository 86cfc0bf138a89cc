package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

// mutate applies a change the way the CRUD layer does: save plus diff
// entries in lockstep.
func mutate(t *testing.T, db *gorm.DB, o *models.Order, change func(*models.Order)) {
	t.Helper()
	before := Capture(o)
	change(o)
	require.NoError(t, db.Save(o).Error)
	_, err := RecordUpdate(db, o.ID, before, Capture(o), testActor, Context{})
	require.NoError(t, err)
}

func TestRevertRoundTrip(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	seedOrder(t, db, o)

	time.Sleep(5 * time.Millisecond)
	mutate(t, db, o, func(o *models.Order) { o.Quantity = 5 })
	t1 := time.Now().UTC()

	time.Sleep(5 * time.Millisecond)
	mutate(t, db, o, func(o *models.Order) {
		o.CustomerName = "Globex"
		o.Quantity = 9
	})

	target, err := trail.SnapshotAt(o.ID, t1)
	require.NoError(t, err)

	reverted, err := trail.Revert(o.ID, t1, testActor, Context{})
	require.NoError(t, err)
	assert.Equal(t, 5, reverted.Quantity)
	assert.Equal(t, "Acme Corp", reverted.CustomerName)

	now, err := trail.SnapshotAt(o.ID, time.Now().UTC())
	require.NoError(t, err)
	for _, f := range orderSchema {
		if provenance[f.name] {
			continue
		}
		assert.Equal(t, target[f.name], now[f.name], "field %q", f.name)
	}
}

func TestRevertWritesExactlyOneEntryWithBothStates(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	seedOrder(t, db, o)

	time.Sleep(5 * time.Millisecond)
	t1 := time.Now().UTC()
	time.Sleep(5 * time.Millisecond)
	mutate(t, db, o, func(o *models.Order) { o.Status = "confirmed" })

	preRevert := Capture(o)

	_, err := trail.Revert(o.ID, t1, testActor, Context{Reason: "bad status change"})
	require.NoError(t, err)

	var entries []models.AuditEntry
	require.NoError(t, db.Where("entity_id = ? AND action = ?", o.ID, models.ActionRevert).Find(&entries).Error)
	require.Len(t, entries, 1)
	entry := entries[0]

	oldState, err := unmarshalState(entry.OldState)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", fieldVal(t, oldState, "status"))
	assert.Equal(t, preRevert["status"], oldState["status"])

	newState, err := unmarshalState(entry.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, "draft", fieldVal(t, newState, "status"))

	assert.Contains(t, entry.ChangeReason, "reverted to state at "+t1.Format(time.RFC3339))
	assert.Contains(t, entry.ChangeReason, "bad status change")
}

func TestRevertBeforeCreationAborts(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	created := seedOrder(t, db, o)

	_, err := trail.Revert(o.ID, created.Add(-time.Hour), testActor, Context{})
	assert.ErrorIs(t, err, ErrUnreconstructable)

	var count int64
	db.Model(&models.AuditEntry{}).Where("action = ?", models.ActionRevert).Count(&count)
	assert.Zero(t, count)
}

func TestRevertMissingLiveOrderAborts(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	seedOrder(t, db, o)
	require.NoError(t, db.Delete(o).Error)

	time.Sleep(5 * time.Millisecond)
	_, err := trail.Revert(o.ID, time.Now().UTC(), testActor, Context{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevertCoercionFailureLeavesOrderUntouched(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	created := seedOrder(t, db, o)

	// A historical value that no longer parses as the field's native type.
	seedDiff(t, db, o.ID, models.ActionUpdate, "quantity", "3", "not-a-number", created.Add(time.Minute))

	_, err := trail.Revert(o.ID, created.Add(time.Minute), testActor, Context{})
	var coercion *CoercionError
	require.ErrorAs(t, err, &coercion)
	assert.Equal(t, "quantity", coercion.Field)
	assert.Equal(t, "not-a-number", coercion.Value)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", o.ID).Error)
	assert.Equal(t, 3, reloaded.Quantity)

	var count int64
	db.Model(&models.AuditEntry{}).Where("action = ?", models.ActionRevert).Count(&count)
	assert.Zero(t, count)
}

func TestRevertPreservesProtectedFields(t *testing.T) {
	db := newTestDB(t)
	trail := NewTrail(db)

	o := newTestOrder()
	seedOrder(t, db, o)
	originalID := o.ID
	originalCreatedBy := o.CreatedBy
	originalCreatedAt := o.CreatedAt

	time.Sleep(5 * time.Millisecond)
	t1 := time.Now().UTC()
	time.Sleep(5 * time.Millisecond)
	mutate(t, db, o, func(o *models.Order) { o.Quantity = 20 })

	reverted, err := trail.Revert(o.ID, t1, testActor, Context{})
	require.NoError(t, err)

	assert.Equal(t, originalID, reverted.ID)
	assert.Equal(t, originalCreatedBy, reverted.CreatedBy)
	assert.WithinDuration(t, originalCreatedAt, reverted.CreatedAt, time.Second)
	assert.Equal(t, 3, reverted.Quantity)
}
