package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ordertrail/ordertrail/internal/audit"
)

// actorFromCtx rebuilds the acting user from the locals set by the JWT
// middleware. The middleware rejects tokens without a valid actor id, so the
// fallback below only fires when a route skipped it; that is worth a warning
// because entries would be attributed to the nil actor.
func actorFromCtx(c *fiber.Ctx) audit.Actor {
	id, _ := c.Locals("actor_id").(string)
	name, _ := c.Locals("actor_name").(string)
	actorID, err := uuid.Parse(id)
	if err != nil {
		slog.Warn("request without actor identity", "path", c.Path(), "ip", c.IP())
		actorID = uuid.Nil
	}
	return audit.Actor{ID: actorID, Name: name}
}

// changeMeta builds the optional audit context from the request.
func changeMeta(c *fiber.Ctx, reason string) audit.Context {
	return audit.Context{Reason: reason, OriginIP: c.IP()}
}
