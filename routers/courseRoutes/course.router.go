package courseRoutes

import (
	controllers "eduflow/controllers/course"
	"eduflow/middleware"
	validators "eduflow/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupCourseRoutes sets up catalog and instructor course management routes
func SetupCourseRoutes(app *fiber.App, db *gorm.DB) {
	course := controllers.New(db)
	group := app.Group("/course")

	courseID := middleware.UintParam("id", "courseID", "course")

	group.Get("/getPublished", course.GetPublishedCourses)
	group.Get("/getCourse/:id", middleware.Protect(db), courseID, course.GetCourse)
	group.Get("/progress/:id", middleware.Protect(db), courseID, course.GetCourseProgress)
	group.Get("/enrolled/:id", middleware.Protect(db), courseID, course.CheckEnrolled)

	instructor := group.Group("/instructor", middleware.Protect(db), middleware.RequireStaff())
	instructor.Get("/getAll", course.GetMyCourses)
	instructor.Post("/create", validators.CreateCourse(), course.CreateCourse)
	instructor.Patch("/update/:id", courseID, validators.UpdateCourse(), course.UpdateCourse)
	instructor.Patch("/publish/:id", courseID, course.PublishCourse)
	instructor.Post("/addInstructor/:id", courseID, course.AddInstructor)
	instructor.Delete("/delete/:id", courseID, course.DeleteCourse)
}
