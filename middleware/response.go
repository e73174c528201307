package middleware

import "github.com/gofiber/fiber/v2"

// ApiError is the single structured domain error carried from shared domain
// functions to the HTTP boundary, where it is shaped into the error envelope.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(statusCode int, message string) *ApiError {
	return &ApiError{StatusCode: statusCode, Message: message}
}

// JsonResponse writes the shared response envelope. Success responses carry
// {statusCode, data, message, success}; errors drop the data field.
func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	if !success {
		return c.Status(statusCode).JSON(fiber.Map{
			"statusCode": statusCode,
			"message":    message,
			"success":    false,
		})
	}
	return c.Status(statusCode).JSON(fiber.Map{
		"statusCode": statusCode,
		"data":       data,
		"message":    message,
		"success":    true,
	})
}

// ErrorResponse maps an error to the envelope: ApiError keeps its status code
// and message, anything else becomes a generic 500 without leaking internals.
func ErrorResponse(c *fiber.Ctx, err error) error {
	if apiErr, ok := err.(*ApiError); ok {
		return JsonResponse(c, apiErr.StatusCode, false, apiErr.Message, nil)
	}
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// ValidationErrorResponse reports field-level validation failures.
func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"statusCode": fiber.StatusBadRequest,
		"message":    "Validation failed!",
		"success":    false,
		"errors":     errors,
	})
}
