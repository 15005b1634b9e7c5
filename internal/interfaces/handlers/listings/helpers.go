package listings

import (
	"strconv"

	"exohub-backend/internal/middleware"
	"exohub-backend/internal/pkg/apperr"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringDef(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func optString(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

func optInt64(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n := asInt64(v)
	return &n
}

func optFloat(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	n := asFloat(v)
	return &n
}

// fail renders a service error in the standard envelope using its kind's
// status code.
func fail(c *fiber.Ctx, err error) error {
	return response.Fail(c, err, apperr.StatusCode(err))
}

// actor returns the authenticated caller; RequireAuth guarantees presence on
// protected routes.
func actor(c *fiber.Ctx) *middleware.Actor {
	return middleware.GetActor(c)
}
