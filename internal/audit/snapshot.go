package audit

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/ordertrail/ordertrail/internal/models"
)

// Capture produces the canonical field map of an order's current state. It
// always covers the full declared schema, is deterministic, and has no side
// effects.
func Capture(o *models.Order) FieldMap {
	m := make(FieldMap, len(orderSchema))
	for _, f := range orderSchema {
		if v := f.read(o); v != nil {
			s := *v
			m[f.name] = &s
		} else {
			m[f.name] = nil
		}
	}
	return m
}

// marshalState encodes a field map for the jsonb snapshot columns.
func marshalState(m FieldMap) (datatypes.JSON, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// unmarshalState decodes a stored snapshot back into a field map.
func unmarshalState(raw datatypes.JSON) (FieldMap, error) {
	var m FieldMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
