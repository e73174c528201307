package quizController

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"eduflow/middleware"
	"eduflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Controller struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{Db: db}
}

func (ctl *Controller) courseForQuiz(quiz *models.Quiz) (*models.Course, error) {
	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, quiz.CourseID).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (ctl *Controller) canView(c *fiber.Ctx, course *models.Course) bool {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)
	if role == models.RoleAdmin || course.IsInstructor(userID) {
		return true
	}
	return models.IsEnrolled(ctl.Db, userID, course.ID)
}

func (ctl *Controller) canManage(c *fiber.Ctx, course *models.Course) bool {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)
	return role == models.RoleAdmin || course.IsInstructor(userID)
}

func (ctl *Controller) CreateQuiz(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedQuiz").(*struct {
		Title     string `json:"title" validate:"required,min=3"`
		Questions []struct {
			Prompt        string   `json:"prompt" validate:"required,min=3"`
			Options       []string `json:"options" validate:"required,min=2,dive,required"`
			CorrectOption int      `json:"correctOption" validate:"gte=0"`
		} `json:"questions" validate:"required,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module models.Module
	if err := ctl.Db.First(&module, moduleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to create quizzes in this course!", nil)
	}

	questions := make([]models.Question, 0, len(reqData.Questions))
	for i, q := range reqData.Questions {
		if q.CorrectOption >= len(q.Options) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("Question %d: correct option index is out of range!", i+1), nil)
		}
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question options!", nil)
		}
		questions = append(questions, models.Question{
			Prompt:        q.Prompt,
			Options:       datatypes.JSON(optionsJSON),
			CorrectOption: q.CorrectOption,
			Order:         i + 1,
		})
	}

	quiz := models.Quiz{
		CourseID:  module.CourseID,
		ModuleID:  moduleID,
		Title:     reqData.Title,
		Questions: questions,
	}

	if err := ctl.Db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func (ctl *Controller) UpdateQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(uint)

	reqData, ok := c.Locals("validatedQuizUpdate").(*struct {
		Title     *string `json:"title" validate:"omitempty,min=3"`
		Questions []struct {
			Prompt        string   `json:"prompt" validate:"required,min=3"`
			Options       []string `json:"options" validate:"required,min=2,dive,required"`
			CorrectOption int      `json:"correctOption" validate:"gte=0"`
		} `json:"questions" validate:"omitempty,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var quiz models.Quiz
	if err := ctl.Db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := ctl.courseForQuiz(&quiz)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to update this quiz!", nil)
	}

	txErr := ctl.Db.Transaction(func(tx *gorm.DB) error {
		if reqData.Title != nil {
			if err := tx.Model(&quiz).Update("title", *reqData.Title).Error; err != nil {
				return err
			}
		}

		// Replacing questions invalidates past attempts' indexes, so swap
		// the whole set at once
		if len(reqData.Questions) > 0 {
			for i, q := range reqData.Questions {
				if q.CorrectOption >= len(q.Options) {
					return middleware.NewApiError(fiber.StatusBadRequest,
						fmt.Sprintf("Question %d: correct option index is out of range!", i+1))
				}
			}
			if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			for i, q := range reqData.Questions {
				optionsJSON, err := json.Marshal(q.Options)
				if err != nil {
					return err
				}
				question := models.Question{
					QuizID:        quiz.ID,
					Prompt:        q.Prompt,
					Options:       datatypes.JSON(optionsJSON),
					CorrectOption: q.CorrectOption,
					Order:         i + 1,
				}
				if err := tx.Create(&question).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return middleware.ErrorResponse(c, txErr)
	}

	ctl.Db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order asc")
	}).First(&quiz, quizID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated!", quiz)
}

func (ctl *Controller) DeleteQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(uint)

	var quiz models.Quiz
	if err := ctl.Db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := ctl.courseForQuiz(&quiz)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to delete this quiz!", nil)
	}

	if err := ctl.Db.Select("Questions").Delete(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted!", fiber.Map{
		"id": quizID,
	})
}

// QuizzesByModule lists a module's quizzes without questions
func (ctl *Controller) QuizzesByModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	var module models.Module
	if err := ctl.Db.First(&module, moduleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canView(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view quizzes!", nil)
	}

	var quizzes []models.Quiz
	ctl.Db.Where("module_id = ?", moduleID).Find(&quizzes)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", fiber.Map{
		"quizzes":      quizzes,
		"totalQuizzes": len(quizzes),
	})
}

// QuizzesByCourse lists all quizzes across a course
func (ctl *Controller) QuizzesByCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canView(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view quizzes!", nil)
	}

	var quizzes []models.Quiz
	ctl.Db.Where("course_id = ?", courseID).Find(&quizzes)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", fiber.Map{
		"quizzes":      quizzes,
		"totalQuizzes": len(quizzes),
	})
}

// GetQuiz fetches one quiz with its questions. Correct answers never leave
// the server.
func (ctl *Controller) GetQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(uint)

	var quiz models.Quiz
	if err := ctl.Db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order asc")
	}).First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := ctl.courseForQuiz(&quiz)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canView(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view this quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":           quiz,
		"totalQuestions": len(quiz.Questions),
	})
}

// GradeAnswer scores a single submitted answer against the correct option
// index. Accepts a numeric index or a single letter, case-insensitive, where
// A is option 0. Anything else is wrong.
func GradeAnswer(answer interface{}, correctOption int) bool {
	switch v := answer.(type) {
	case float64:
		return v == math.Trunc(v) && int(v) == correctOption
	case string:
		s := strings.TrimSpace(strings.ToUpper(v))
		if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
			return false
		}
		return int(s[0]-'A') == correctOption
	}
	return false
}

// SubmitQuiz grades a submission and records the attempt
func (ctl *Controller) SubmitQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	reqData, ok := c.Locals("validatedSubmission").(*struct {
		Answers []interface{} `json:"answers" validate:"required,min=1"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var quiz models.Quiz
	if err := ctl.Db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order asc")
	}).First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := ctl.courseForQuiz(&quiz)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canView(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to submit this quiz!", nil)
	}

	if len(reqData.Answers) != len(quiz.Questions) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			fmt.Sprintf("Expected %d answers, got %d!", len(quiz.Questions), len(reqData.Answers)), nil)
	}

	score := 0
	for i, question := range quiz.Questions {
		if GradeAnswer(reqData.Answers[i], question.CorrectOption) {
			score++
		}
	}

	total := len(quiz.Questions)
	percentage := int(math.Round(float64(score) / float64(total) * 100))

	answersJSON, err := json.Marshal(reqData.Answers)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid answers payload!", nil)
	}

	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Answers:     datatypes.JSON(answersJSON),
		Score:       score,
		Total:       total,
		AttemptedAt: time.Now(),
	}

	if err := ctl.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record attempt!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz submitted successfully!", fiber.Map{
		"attemptId":      attempt.ID,
		"score":          score,
		"totalQuestions": total,
		"percentage":     percentage,
	})
}

// GetQuizAttempts lists the caller's attempts for a quiz
func (ctl *Controller) GetQuizAttempts(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	var quiz models.Quiz
	if err := ctl.Db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var attempts []models.QuizAttempt
	if err := ctl.Db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	message := "Attempts fetched successfully!"
	if len(attempts) == 0 {
		message = "No attempts yet for this quiz"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"attempts":      attempts,
		"totalAttempts": len(attempts),
	})
}

// GetAllAttempts lists every student's attempts for a quiz, instructors and
// admins only
func (ctl *Controller) GetAllAttempts(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(uint)

	var quiz models.Quiz
	if err := ctl.Db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := ctl.courseForQuiz(&quiz)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to view attempts for this quiz!", nil)
	}

	var attempts []models.QuizAttempt
	if err := ctl.Db.Preload("User").Where("quiz_id = ?", quizID).
		Order("attempted_at desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"quiz": fiber.Map{
			"id":    quiz.ID,
			"title": quiz.Title,
		},
		"attempts":      attempts,
		"totalAttempts": len(attempts),
	})
}
