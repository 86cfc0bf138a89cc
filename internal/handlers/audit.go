package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordertrail/ordertrail/internal/audit"
	"github.com/ordertrail/ordertrail/internal/models"
	"github.com/ordertrail/ordertrail/internal/services"
)

type AuditHandler struct {
	db      *gorm.DB
	trail   *audit.Trail
	service *services.OrderService
}

func NewAuditHandler(db *gorm.DB, service *services.OrderService) *AuditHandler {
	return &AuditHandler{db: db, trail: service.Trail(), service: service}
}

// GetOrderHistory returns an order's audit entries newest-first.
func (h *AuditHandler) GetOrderHistory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 {
		limit = 50
	}

	entries, err := h.trail.History(id, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load history",
		})
	}
	return c.JSON(fiber.Map{
		"order_id": id,
		"entries":  entries,
		"count":    len(entries),
	})
}

// GetOrderSnapshot returns the order's reconstructed state at ?at=<RFC3339>.
// An unreconstructable instant is 422, distinct from 404.
func (h *AuditHandler) GetOrderSnapshot(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	at, err := time.Parse(time.RFC3339Nano, c.Query("at"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Query parameter 'at' must be an RFC 3339 timestamp",
		})
	}

	state, err := h.trail.SnapshotAt(id, at)
	if err != nil {
		if errors.Is(err, audit.ErrUnreconstructable) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   true,
				"message": "No reconstructable state at the requested time",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to reconstruct state",
		})
	}
	return c.JSON(fiber.Map{
		"order_id": id,
		"at":       at,
		"state":    state,
	})
}

// RevertOrder moves the live order back to its state at the given timestamp.
func (h *AuditHandler) RevertOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid order ID",
		})
	}

	var req struct {
		Timestamp time.Time `json:"timestamp"`
		Reason    string    `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || req.Timestamp.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "timestamp is required",
		})
	}

	order, err := h.service.Revert(id, req.Timestamp, actorFromCtx(c), changeMeta(c, req.Reason))
	if err != nil {
		var coercion *audit.CoercionError
		switch {
		case errors.Is(err, audit.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "Order not found",
			})
		case errors.Is(err, audit.ErrUnreconstructable):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   true,
				"message": "No reconstructable state at the requested time",
			})
		case errors.As(err, &coercion):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   true,
				"message": coercion.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to revert order",
			})
		}
	}
	return c.JSON(order)
}

// GetActivitySummary aggregates an actor's entries by action over a trailing
// window of days.
func (h *AuditHandler) GetActivitySummary(c *fiber.Ctx) error {
	actorID, err := uuid.Parse(c.Query("actor_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid actor ID",
		})
	}

	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days < 1 {
		days = 30
	}

	summary, err := h.trail.ActivitySummary(actorID, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to build activity summary",
		})
	}
	return c.JSON(summary)
}

// ListAuditLogs returns paginated audit entries, filterable by actor, action
// and entity.
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "50"))
	action := c.Query("action", "")
	actorID := c.Query("actor_id", "")
	entityID := c.Query("entity_id", "")

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := h.db.Model(&models.AuditEntry{})

	if action != "" {
		query = query.Where("action = ?", action)
	}
	if actorID != "" {
		query = query.Where("actor_id = ?", actorID)
	}
	if entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var total int64
	query.Count(&total)

	var entries []models.AuditEntry
	if err := query.Order("timestamp DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list audit logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs":     entries,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
