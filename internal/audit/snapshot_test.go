package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureIsIdempotent(t *testing.T) {
	o := newTestOrder()
	first := Capture(o)
	second := Capture(o)
	assert.Equal(t, first, second)
}

func TestCaptureCoversFullSchema(t *testing.T) {
	state := Capture(newTestOrder())
	require.Len(t, state, len(orderSchema))
	for _, f := range orderSchema {
		_, ok := state[f.name]
		assert.True(t, ok, "field %q missing", f.name)
	}
}

func TestCaptureCanonicalForms(t *testing.T) {
	o := newTestOrder()
	state := Capture(o)

	assert.Equal(t, "3", fieldVal(t, state, "quantity"))
	assert.Equal(t, "19.9", fieldVal(t, state, "unit_price"))
	assert.Equal(t, "0.1", fieldVal(t, state, "discount_rate"))
	assert.Equal(t, o.ID.String(), fieldVal(t, state, "id"))
	assert.Equal(t, "2026-09-15T12:00:00Z", fieldVal(t, state, "due_date"))
	assert.Equal(t, "rush delivery", fieldVal(t, state, "notes"))
}

func TestCapturePreservesNull(t *testing.T) {
	o := newTestOrder()
	o.Notes = nil
	o.DueDate = nil
	state := Capture(o)

	v, ok := state["notes"]
	require.True(t, ok)
	assert.Nil(t, v)

	v, ok = state["due_date"]
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestCaptureReturnsIndependentCopies(t *testing.T) {
	o := newTestOrder()
	state := Capture(o)
	*state["customer_name"] = "mutated"
	assert.Equal(t, "Acme Corp", o.CustomerName)
	assert.Equal(t, "Acme Corp", fieldVal(t, Capture(o), "customer_name"))
}
