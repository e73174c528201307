package middleware

import (
	"eduflow/models"

	"github.com/gofiber/fiber/v2"
)

// RequireStaff rejects students; instructor- and admin-only routes sit behind
// it. Ownership of the specific course is still checked in the handler.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok || role == models.RoleStudent {
			return JsonResponse(c, fiber.StatusForbidden, false, "Access denied - You don't have access to this resource", nil)
		}
		return c.Next()
	}
}
