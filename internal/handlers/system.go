package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const Version = "1.2.0"

type SystemHandler struct {
	db *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	dbStatus := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  Version,
		"database": dbStatus,
	})
}
