// Package audit maintains the append-only change log for orders and the
// temporal operations built on top of it: point-in-time reconstruction,
// audited reverts, history and per-actor activity queries.
package audit

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ordertrail/ordertrail/internal/models"
)

// FieldMap is a flat snapshot of an order: field name to canonical serialized
// value. A nil value preserves SQL NULL.
type FieldMap map[string]*string

// orderField declares one audited field: how to serialize it canonically and,
// for revertable fields, how to coerce a serialized value back into the
// struct. assign is nil for protected provenance fields (primary key, creator
// reference, creation and last-modified timestamps) which are snapshotted but
// never reverted.
type orderField struct {
	name   string
	read   func(o *models.Order) *string
	assign func(o *models.Order, v *string) error
}

// orderSchema enumerates every persisted order field. Snapshots always cover
// this full set; the schema is the single source of truth for both
// serialization and revert coercion.
var orderSchema = []orderField{
	{
		name: "id",
		read: func(o *models.Order) *string { return ptr(o.ID.String()) },
	},
	{
		name:   "order_number",
		read:   func(o *models.Order) *string { return ptr(o.OrderNumber) },
		assign: assignString(func(o *models.Order, v string) { o.OrderNumber = v }),
	},
	{
		name:   "customer_name",
		read:   func(o *models.Order) *string { return ptr(o.CustomerName) },
		assign: assignString(func(o *models.Order, v string) { o.CustomerName = v }),
	},
	{
		name:   "customer_email",
		read:   func(o *models.Order) *string { return ptr(o.CustomerEmail) },
		assign: assignString(func(o *models.Order, v string) { o.CustomerEmail = v }),
	},
	{
		name:   "customer_phone",
		read:   func(o *models.Order) *string { return ptr(o.CustomerPhone) },
		assign: assignString(func(o *models.Order, v string) { o.CustomerPhone = v }),
	},
	{
		name:   "status",
		read:   func(o *models.Order) *string { return ptr(o.Status) },
		assign: assignString(func(o *models.Order, v string) { o.Status = v }),
	},
	{
		name: "quantity",
		read: func(o *models.Order) *string { return ptr(strconv.Itoa(o.Quantity)) },
		assign: func(o *models.Order, v *string) error {
			if v == nil {
				return fmt.Errorf("quantity cannot be null")
			}
			n, err := strconv.Atoi(*v)
			if err != nil {
				return err
			}
			o.Quantity = n
			return nil
		},
	},
	{
		name:   "unit_price",
		read:   func(o *models.Order) *string { return ptr(formatFloat(o.UnitPrice)) },
		assign: assignFloat(func(o *models.Order, v float64) { o.UnitPrice = v }),
	},
	{
		name:   "discount_rate",
		read:   func(o *models.Order) *string { return ptr(formatFloat(o.DiscountRate)) },
		assign: assignFloat(func(o *models.Order, v float64) { o.DiscountRate = v }),
	},
	{
		name:   "total_amount",
		read:   func(o *models.Order) *string { return ptr(formatFloat(o.TotalAmount)) },
		assign: assignFloat(func(o *models.Order, v float64) { o.TotalAmount = v }),
	},
	{
		name:   "currency",
		read:   func(o *models.Order) *string { return ptr(o.Currency) },
		assign: assignString(func(o *models.Order, v string) { o.Currency = v }),
	},
	{
		name:   "shipping_address",
		read:   func(o *models.Order) *string { return ptr(o.ShippingAddress) },
		assign: assignString(func(o *models.Order, v string) { o.ShippingAddress = v }),
	},
	{
		name: "notes",
		read: func(o *models.Order) *string { return o.Notes },
		assign: func(o *models.Order, v *string) error {
			if v == nil {
				o.Notes = nil
				return nil
			}
			s := *v
			o.Notes = &s
			return nil
		},
	},
	{
		name: "due_date",
		read: func(o *models.Order) *string {
			if o.DueDate == nil {
				return nil
			}
			return ptr(formatTime(*o.DueDate))
		},
		assign: func(o *models.Order, v *string) error {
			if v == nil {
				o.DueDate = nil
				return nil
			}
			t, err := time.Parse(time.RFC3339Nano, *v)
			if err != nil {
				return err
			}
			t = t.UTC()
			o.DueDate = &t
			return nil
		},
	},
	{
		name: "created_by",
		read: func(o *models.Order) *string { return ptr(o.CreatedBy.String()) },
	},
	{
		name: "created_at",
		read: func(o *models.Order) *string { return ptr(formatTime(o.CreatedAt)) },
	},
	{
		name: "updated_at",
		read: func(o *models.Order) *string { return ptr(formatTime(o.UpdatedAt)) },
	},
}

// provenance marks the fields with no coercion rule: primary key, creator
// reference, creation and last-modified timestamps. They are snapshotted but
// never diffed or reverted; the store refreshes updated_at on every write,
// so diffing it would make even a no-op update produce an entry.
var provenance = func() map[string]bool {
	m := make(map[string]bool)
	for _, f := range orderSchema {
		if f.assign == nil {
			m[f.name] = true
		}
	}
	return m
}()

// applyState coerces every revertable field of state onto o. All values are
// parsed against a scratch copy first, so a coercion failure leaves o
// untouched.
func applyState(o *models.Order, state FieldMap) error {
	scratch := *o
	for _, f := range orderSchema {
		if f.assign == nil {
			continue
		}
		v, ok := state[f.name]
		if !ok {
			continue
		}
		if err := f.assign(&scratch, v); err != nil {
			val := ""
			if v != nil {
				val = *v
			}
			return &CoercionError{Field: f.name, Value: val, Err: err}
		}
	}
	*o = scratch
	return nil
}

// sortedFields returns the keys of m in a stable order so that entries
// written at one instant always get sequence ids in the same field order.
func sortedFields(m FieldMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ptr(s string) *string { return &s }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func assignString(set func(*models.Order, string)) func(*models.Order, *string) error {
	return func(o *models.Order, v *string) error {
		if v == nil {
			return fmt.Errorf("value cannot be null")
		}
		set(o, *v)
		return nil
	}
}

func assignFloat(set func(*models.Order, float64)) func(*models.Order, *string) error {
	return func(o *models.Order, v *string) error {
		if v == nil {
			return fmt.Errorf("value cannot be null")
		}
		f, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return err
		}
		set(o, f)
		return nil
	}
}
