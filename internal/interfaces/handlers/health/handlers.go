package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger abstracts the database connectivity check.
type DBPinger interface {
	Ping() error
}

type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// JSON GET /health/json — connectivity status for the DB and Redis.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	dbStatus := "not configured"
	if h.DB != nil {
		if err := h.DB.Ping(); err != nil {
			dbStatus = "down: " + err.Error()
		} else {
			dbStatus = "up"
		}
	}

	redisStatus := "not configured"
	if h.Rdb != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down: " + err.Error()
		} else {
			redisStatus = "up"
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
