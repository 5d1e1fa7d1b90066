package middleware

import (
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const actorLocal = "actor"

const (
	companyIDHeader = "X-Company-Id"
	actorIDHeader   = "X-Actor-Id"
)

// Actor is the identity/authorization context supplied by the upstream
// gateway. The engine trusts the caller to have already authorized the
// operation for this company.
type Actor struct {
	CompanyID uuid.UUID `json:"company_id"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// RequireTenant resolves the company/actor context from trusted headers.
// Requests without a valid tenant context are rejected with 401.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := uuid.Parse(c.Get(companyIDHeader))
		if err != nil || companyID == uuid.Nil {
			return response.Unauthorized(c, "Missing company context")
		}
		actorID, err := uuid.Parse(c.Get(actorIDHeader))
		if err != nil || actorID == uuid.Nil {
			return response.Unauthorized(c, "Missing actor context")
		}
		c.Locals(actorLocal, &Actor{CompanyID: companyID, ActorID: actorID})
		return c.Next()
	}
}

// GetActor returns the tenant context from Locals (nil outside RequireTenant).
func GetActor(c *fiber.Ctx) *Actor {
	if a, ok := c.Locals(actorLocal).(*Actor); ok {
		return a
	}
	return nil
}
