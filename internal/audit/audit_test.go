package audit

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/models"
)

var testActor = Actor{
	ID:   uuid.MustParse("8f1c2b34-0a6d-4e29-9c51-7d3e8a90f412"),
	Name: "Jane Operator",
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.AuditEntry{}))
	return db
}

// The models must carry no dialect-specific column defaults, or migration
// breaks on the SQLite driver the tests run against.
func TestSchemaMigratesOnSQLite(t *testing.T) {
	db := newTestDB(t)
	assert.True(t, db.Migrator().HasTable(&models.Order{}))
	assert.True(t, db.Migrator().HasTable(&models.AuditEntry{}))
}

func newTestOrder() *models.Order {
	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	notes := "rush delivery"
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "SO-1001",
		CustomerName:    "Acme Corp",
		CustomerEmail:   "purchasing@acme.test",
		CustomerPhone:   "+1-555-0100",
		Status:          "draft",
		Quantity:        3,
		UnitPrice:       19.9,
		DiscountRate:    0.1,
		TotalAmount:     53.73,
		Currency:        "USD",
		ShippingAddress: "1 Main St, Springfield",
		Notes:           &notes,
		DueDate:         &due,
		CreatedBy:       testActor.ID,
	}
}

// seedOrder persists the order and its create entry the way the CRUD layer
// does, returning the creation instant.
func seedOrder(t *testing.T, db *gorm.DB, o *models.Order) time.Time {
	t.Helper()
	require.NoError(t, db.Create(o).Error)
	require.NoError(t, RecordCreate(db, o, testActor, Context{}))

	var created models.AuditEntry
	require.NoError(t, db.Where("entity_id = ? AND action = ?", o.ID, models.ActionCreate).First(&created).Error)
	return created.Timestamp
}

func fieldVal(t *testing.T, state FieldMap, name string) string {
	t.Helper()
	v, ok := state[name]
	require.True(t, ok, "field %q missing from state", name)
	require.NotNil(t, v, "field %q is null", name)
	return *v
}
