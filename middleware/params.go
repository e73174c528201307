package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// UintParam parses a numeric route parameter and stashes it in Locals under
// localKey as a uint. Label names the resource in the error message.
func UintParam(param, localKey, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params(param), 10, 32)
		if err != nil || id == 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}
		c.Locals(localKey, uint(id))
		return c.Next()
	}
}
