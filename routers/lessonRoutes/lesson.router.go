package lessonRoutes

import (
	controllers "eduflow/controllers/lesson"
	"eduflow/middleware"
	validators "eduflow/validators/lesson"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupLessonRoutes sets up lesson CRUD, progress and reorder routes
func SetupLessonRoutes(app *fiber.App, db *gorm.DB) {
	lesson := controllers.New(db)
	group := app.Group("/lesson", middleware.Protect(db))

	moduleID := middleware.UintParam("moduleId", "moduleID", "module")
	lessonID := middleware.UintParam("id", "lessonID", "lesson")

	group.Get("/getAll/:moduleId", moduleID, lesson.GetAllLessons)
	group.Get("/getLesson/:id", lessonID, lesson.GetLesson)
	group.Patch("/markCompleted/:id", lessonID, validators.MarkCompleted(), lesson.MarkCompleted)

	staff := middleware.RequireStaff()
	group.Post("/create/:moduleId", staff, moduleID, validators.CreateLesson(), lesson.CreateLesson)
	group.Post("/createBulk/:moduleId", staff, moduleID, validators.CreateBulk(), lesson.CreateBulkLessons)
	group.Patch("/update/:id", staff, lessonID, validators.UpdateLesson(), lesson.UpdateLesson)
	group.Delete("/delete/:id", staff, lessonID, lesson.DeleteLesson)
	group.Patch("/reorder/:moduleId", staff, moduleID, validators.Reorder(), lesson.ReorderLessons)
}
