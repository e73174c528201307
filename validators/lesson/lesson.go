package lessonValidator

import (
	"eduflow/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateLesson validator middleware
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title" validate:"required,min=3"`
			ContentType string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
			ContentURL  string `json:"contentUrl" validate:"omitempty,url"`
			Order       int    `json:"order" validate:"omitempty,gt=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// CreateBulk validator middleware for batch lesson creation
func CreateBulk() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Lessons []struct {
				Title       string `json:"title" validate:"required,min=3"`
				ContentType string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
				ContentURL  string `json:"contentUrl" validate:"omitempty,url"`
			} `json:"lessons" validate:"required,min=1,dive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBulkLessons", reqData)
		return c.Next()
	}
}

// UpdateLesson validator middleware
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       *string `json:"title" validate:"omitempty,min=3"`
			ContentType *string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
			ContentURL  *string `json:"contentUrl" validate:"omitempty,url"`
			Order       *int    `json:"order" validate:"omitempty,gt=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// MarkCompleted validator middleware, completed must be present so that
// false is distinguishable from missing
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

		c.Locals("validatedMarkCompleted", reqData)
		return c.Next()
	}
}

// Reorder validator middleware for the full ordering set
func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Items []struct {
				ID    uint `json:"id" validate:"required"`
				Order int  `json:"order" validate:"required,gt=0"`
			} `json:"lessons" validate:"required,min=1,dive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLessonReorder", reqData)
		return c.Next()
	}
}
