package services

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/audit"
	"github.com/ordertrail/ordertrail/internal/models"
)

// OrderService owns every order mutation. Each mutation and its audit
// entries commit in one transaction: both persist or neither does.
type OrderService struct {
	db    *gorm.DB
	trail *audit.Trail
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, trail: audit.NewTrail(db)}
}

func (s *OrderService) Trail() *audit.Trail {
	return s.trail
}

type CreateOrderInput struct {
	OrderNumber     string     `json:"order_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone"`
	Status          string     `json:"status"`
	Quantity        int        `json:"quantity"`
	UnitPrice       float64    `json:"unit_price"`
	DiscountRate    float64    `json:"discount_rate"`
	Currency        string     `json:"currency"`
	ShippingAddress string     `json:"shipping_address"`
	Notes           *string    `json:"notes"`
	DueDate         *time.Time `json:"due_date"`
}

type UpdateOrderInput struct {
	CustomerName    *string    `json:"customer_name"`
	CustomerEmail   *string    `json:"customer_email"`
	CustomerPhone   *string    `json:"customer_phone"`
	Status          *string    `json:"status"`
	Quantity        *int       `json:"quantity"`
	UnitPrice       *float64   `json:"unit_price"`
	DiscountRate    *float64   `json:"discount_rate"`
	Currency        *string    `json:"currency"`
	ShippingAddress *string    `json:"shipping_address"`
	Notes           *string    `json:"notes"`
	DueDate         *time.Time `json:"due_date"`
}

// Create inserts the order and logs its create entry with a full snapshot.
func (s *OrderService) Create(input CreateOrderInput, actor audit.Actor, meta audit.Context) (*models.Order, error) {
	order := models.Order{
		ID:              uuid.New(),
		OrderNumber:     input.OrderNumber,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		Status:          "draft",
		Quantity:        1,
		UnitPrice:       input.UnitPrice,
		DiscountRate:    input.DiscountRate,
		Currency:        "USD",
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		DueDate:         input.DueDate,
		CreatedBy:       actor.ID,
	}
	if input.Status != "" {
		order.Status = input.Status
	}
	if input.Quantity > 0 {
		order.Quantity = input.Quantity
	}
	if input.Currency != "" {
		order.Currency = input.Currency
	}
	order.TotalAmount = orderTotal(order.Quantity, order.UnitPrice, order.DiscountRate)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return audit.RecordCreate(tx, &order, actor, meta)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Update applies the set fields, recomputes the total, and logs one entry
// per field whose serialized value actually changed. Zero changed fields is
// a valid no-op that writes nothing.
func (s *OrderService) Update(id uuid.UUID, input UpdateOrderInput, actor audit.Actor, meta audit.Context) (*models.Order, int, error) {
	var order models.Order
	written := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return audit.ErrNotFound
			}
			return err
		}

		oldState := audit.Capture(&order)
		applyUpdate(&order, input)
		order.TotalAmount = orderTotal(order.Quantity, order.UnitPrice, order.DiscountRate)

		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		n, err := audit.RecordUpdate(tx, order.ID, oldState, audit.Capture(&order), actor, meta)
		if err != nil {
			return err
		}
		written = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &order, written, nil
}

// Delete soft-deletes the order and logs its final snapshot. History is
// preserved and states before the deletion stay reconstructable.
func (s *OrderService) Delete(id uuid.UUID, actor audit.Actor, meta audit.Context) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return audit.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return audit.RecordDelete(tx, &order, actor, meta)
	})
}

// BulkUpdateStatus moves every listed order to status in one transaction,
// logging bulk_update diff entries per order. Any missing id aborts the
// whole batch.
func (s *OrderService) BulkUpdateStatus(ids []uuid.UUID, status string, actor audit.Actor, meta audit.Context) (int, error) {
	written := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			var order models.Order
			if err := tx.First(&order, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return audit.ErrNotFound
				}
				return err
			}

			oldState := audit.Capture(&order)
			order.Status = status
			if err := tx.Save(&order).Error; err != nil {
				return err
			}

			n, err := audit.RecordBulkUpdate(tx, order.ID, oldState, audit.Capture(&order), actor, meta)
			if err != nil {
				return err
			}
			written += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// BulkDelete soft-deletes every listed order in one transaction with
// bulk_delete snapshot entries.
func (s *OrderService) BulkDelete(ids []uuid.UUID, actor audit.Actor, meta audit.Context) (int, error) {
	deleted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			var order models.Order
			if err := tx.First(&order, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return audit.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(&order).Error; err != nil {
				return err
			}
			if err := audit.RecordBulkDelete(tx, &order, actor, meta); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Revert moves the order back to its state at the given instant.
func (s *OrderService) Revert(id uuid.UUID, at time.Time, actor audit.Actor, meta audit.Context) (*models.Order, error) {
	return s.trail.Revert(id, at, actor, meta)
}

func applyUpdate(o *models.Order, in UpdateOrderInput) {
	if in.CustomerName != nil {
		o.CustomerName = *in.CustomerName
	}
	if in.CustomerEmail != nil {
		o.CustomerEmail = *in.CustomerEmail
	}
	if in.CustomerPhone != nil {
		o.CustomerPhone = *in.CustomerPhone
	}
	if in.Status != nil {
		o.Status = *in.Status
	}
	if in.Quantity != nil {
		o.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		o.UnitPrice = *in.UnitPrice
	}
	if in.DiscountRate != nil {
		o.DiscountRate = *in.DiscountRate
	}
	if in.Currency != nil {
		o.Currency = *in.Currency
	}
	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.Notes != nil {
		o.Notes = in.Notes
	}
	if in.DueDate != nil {
		o.DueDate = in.DueDate
	}
}

func orderTotal(quantity int, unitPrice, discountRate float64) float64 {
	total := float64(quantity) * unitPrice * (1 - discountRate)
	return math.Round(total*100) / 100
}
