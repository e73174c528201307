package quizValidator

import (
	"eduflow/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateQuiz validator middleware. The correct option index is range-checked
// against the options in the controller, where the question set is final.
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title     string `json:"title" validate:"required,min=3"`
			Questions []struct {
				Prompt        string   `json:"prompt" validate:"required,min=3"`
				Options       []string `json:"options" validate:"required,min=2,dive,required"`
				CorrectOption int      `json:"correctOption" validate:"gte=0"`
			} `json:"questions" validate:"required,min=1,dive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// UpdateQuiz validator middleware, title and question set both optional
func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title     *string `json:"title" validate:"omitempty,min=3"`
			Questions []struct {
				Prompt        string   `json:"prompt" validate:"required,min=3"`
				Options       []string `json:"options" validate:"required,min=2,dive,required"`
				CorrectOption int      `json:"correctOption" validate:"gte=0"`
			} `json:"questions" validate:"omitempty,min=1,dive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizUpdate", reqData)
		return c.Next()
	}
}

// Submit validator middleware. Answers stay loosely typed here, grading
// decides what counts as a valid answer shape.
func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []interface{} `json:"answers" validate:"required,min=1"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}
