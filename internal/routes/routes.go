package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordertrail/ordertrail/internal/config"
	"github.com/ordertrail/ordertrail/internal/handlers"
	"github.com/ordertrail/ordertrail/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	orderHandler *handlers.OrderHandler,
	auditHandler *handlers.AuditHandler,
	systemHandler *handlers.SystemHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", systemHandler.Health)

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/refresh", authHandler.Refresh)

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	// Auth (protected)
	api.Get("/auth/me", authHandler.Me)

	// Orders
	api.Get("/orders", orderHandler.ListOrders)
	api.Post("/orders", orderHandler.CreateOrder)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Put("/orders/:id", orderHandler.UpdateOrder)
	api.Delete("/orders/:id", orderHandler.DeleteOrder)
	api.Post("/orders/bulk/status", orderHandler.BulkUpdateStatus)
	api.Post("/orders/bulk/delete", orderHandler.BulkDelete)

	// Temporal audit trail
	api.Get("/orders/:id/history", auditHandler.GetOrderHistory)
	api.Get("/orders/:id/snapshot", auditHandler.GetOrderSnapshot)
	api.Post("/orders/:id/revert", auditHandler.RevertOrder)

	// Audit log
	api.Get("/audit/logs", auditHandler.ListAuditLogs)
	api.Get("/audit/activity", auditHandler.GetActivitySummary)
}
