package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/audit"
	"github.com/ordertrail/ordertrail/internal/models"
	"github.com/ordertrail/ordertrail/internal/services"
)

type OrderHandler struct {
	db      *gorm.DB
	service *services.OrderService
}

func NewOrderHandler(db *gorm.DB, service *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, service: service}
}

// ListOrders returns orders newest-first, filterable by status and customer.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	status := c.Query("status", "")
	customer := c.Query("customer", "")

	query := h.db.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customer != "" {
		query = query.Where("customer_name ILIKE ?", "%"+customer+"%")
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list orders",
		})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Order not found",
		})
	}
	return c.JSON(order)
}

// CreateOrder creates an order; the create audit entry commits with it.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if req.OrderNumber == "" || req.CustomerName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Order number and customer name are required",
		})
	}

	order, err := h.service.Create(req, actorFromCtx(c), changeMeta(c, ""))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to create order",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateOrder applies a partial update; only fields whose serialized value
// changed produce audit entries.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	var req struct {
		services.UpdateOrderInput
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	order, changed, err := h.service.Update(id, req.UpdateOrderInput, actorFromCtx(c), changeMeta(c, req.Reason))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update order",
		})
	}
	return c.JSON(fiber.Map{
		"order":          order,
		"changed_fields": changed,
	})
}

// DeleteOrder soft-deletes an order; its history stays queryable.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	if err := h.service.Delete(id, actorFromCtx(c), changeMeta(c, "")); err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to delete order",
		})
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// BulkUpdateStatus moves a batch of orders to a new status atomically.
func (h *OrderHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req struct {
		IDs    []uuid.UUID `json:"ids"`
		Status string      `json:"status"`
		Reason string      `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "ids and status are required",
		})
	}

	changed, err := h.service.BulkUpdateStatus(req.IDs, req.Status, actorFromCtx(c), changeMeta(c, req.Reason))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "One or more orders not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update orders",
		})
	}
	return c.JSON(fiber.Map{
		"orders":         len(req.IDs),
		"changed_fields": changed,
	})
}

// BulkDelete soft-deletes a batch of orders atomically.
func (h *OrderHandler) BulkDelete(c *fiber.Ctx) error {
	var req struct {
		IDs    []uuid.UUID `json:"ids"`
		Reason string      `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "ids are required",
		})
	}

	deleted, err := h.service.BulkDelete(req.IDs, actorFromCtx(c), changeMeta(c, req.Reason))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "One or more orders not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to delete orders",
		})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
