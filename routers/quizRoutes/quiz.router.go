package quizRoutes

import (
	controllers "eduflow/controllers/quiz"
	"eduflow/middleware"
	validators "eduflow/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupQuizRoutes sets up quiz management, delivery and grading routes
func SetupQuizRoutes(app *fiber.App, db *gorm.DB) {
	quiz := controllers.New(db)
	group := app.Group("/quiz", middleware.Protect(db))

	courseID := middleware.UintParam("courseId", "courseID", "course")
	moduleID := middleware.UintParam("moduleId", "moduleID", "module")
	quizID := middleware.UintParam("id", "quizID", "quiz")
	submitID := middleware.UintParam("quizId", "quizID", "quiz")

	group.Get("/quizByModule/:moduleId", moduleID, quiz.QuizzesByModule)
	group.Get("/quizByCourse/:courseId", courseID, quiz.QuizzesByCourse)
	group.Get("/getQuiz/:id", quizID, quiz.GetQuiz)

	group.Post("/submit/:quizId", submitID, validators.Submit(), quiz.SubmitQuiz)
	group.Get("/getQuizAttempt/:quizId", submitID, quiz.GetQuizAttempts)

	staff := middleware.RequireStaff()
	group.Post("/create/:moduleId", staff, moduleID, validators.CreateQuiz(), quiz.CreateQuiz)
	group.Patch("/update/:id", staff, quizID, validators.UpdateQuiz(), quiz.UpdateQuiz)
	group.Delete("/delete/:id", staff, quizID, quiz.DeleteQuiz)
	group.Get("/getAllAttempts/:id", staff, quizID, quiz.GetAllAttempts)
}
