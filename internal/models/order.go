package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityTypeOrder is the entity_type under which orders are audited.
const EntityTypeOrder = "order"

type Order struct {
	// The service layer assigns the id; no DB-side default so the schema
	// migrates on any dialect.
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string         `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	CustomerName    string         `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail   string         `gorm:"size:100" json:"customer_email"`
	CustomerPhone   string         `gorm:"size:32" json:"customer_phone"`
	Status          string         `gorm:"size:20;default:'draft'" json:"status"` // draft, confirmed, shipped, delivered, cancelled
	Quantity        int            `gorm:"default:1" json:"quantity"`
	UnitPrice       float64        `gorm:"default:0" json:"unit_price"`
	DiscountRate    float64        `gorm:"default:0" json:"discount_rate"` // 0..1
	TotalAmount     float64        `gorm:"default:0" json:"total_amount"`
	Currency        string         `gorm:"size:3;default:'USD'" json:"currency"`
	ShippingAddress string         `gorm:"type:text" json:"shipping_address"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	DueDate         *time.Time     `json:"due_date"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
