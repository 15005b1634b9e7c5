package middleware

import (
	"exohub-backend/internal/pkg/apperr"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Typed application errors map to
// their status code; everything else is a 500 in the standard error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else if apperr.KindOf(err) != apperr.KindUnknown {
		code = apperr.StatusCode(err)
		message = err.Error()
	}

	return response.Error(c, message, code, nil)
}
