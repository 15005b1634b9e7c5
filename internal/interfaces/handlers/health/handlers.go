package health

import (
	"context"
	"strconv"
	"time"

	"exohub-backend/internal/middleware"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger abstracts the database connection check.
type DBPinger interface {
	Ping() error
}

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             DBPinger
	HealthAdminKey string
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := context.Background()
	keys := []string{middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns service status plus dependency checks as JSON.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx := context.Background()

	deps := map[string]string{}
	status := "ok"

	if h.Rdb != nil {
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			deps["redis"] = "down: " + err.Error()
			status = "degraded"
		} else {
			deps["redis"] = "ok"
		}
	}
	if h.DB != nil {
		if err := h.DB.Ping(); err != nil {
			deps["database"] = "down: " + err.Error()
			status = "degraded"
		} else {
			deps["database"] = "ok"
		}
	}

	traffic := map[string]interface{}{}
	if h.Rdb != nil {
		total, _ := h.Rdb.Get(ctx, middleware.KeyReqTotal).Int64()
		errs, _ := h.Rdb.Get(ctx, middleware.KeyReqErrors).Int64()
		traffic["requests"] = total
		traffic["errors"] = errs
	}

	return c.JSON(map[string]interface{}{
		"service":      "exohub-api",
		"status":       status,
		"traffic":      traffic,
		"dependencies": deps,
	})
}
