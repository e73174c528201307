package enrollmentValidator

import (
	"eduflow/middleware"

	"github.com/gofiber/fiber/v2"
)

// MarkCompleted validator middleware
func MarkCompleted() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Completed *bool `json:"completed" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCompleted", reqData)
		return c.Next()
	}
}

// VerifyPayment validator middleware for the checkout callback triple
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
			RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
			RazorpaySignature string `json:"razorpay_signature" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVerifyPayment", reqData)
		return c.Next()
	}
}
