package moduleRoutes

import (
	controllers "eduflow/controllers/module"
	"eduflow/middleware"
	validators "eduflow/validators/module"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupModuleRoutes sets up module CRUD, progress and reorder routes
func SetupModuleRoutes(app *fiber.App, db *gorm.DB) {
	module := controllers.New(db)
	group := app.Group("/module", middleware.Protect(db))

	courseID := middleware.UintParam("courseId", "courseID", "course")
	moduleID := middleware.UintParam("id", "moduleID", "module")

	group.Get("/getAll/:courseId", courseID, module.GetAllModules)
	group.Get("/getModule/:id", moduleID, module.GetModule)
	group.Get("/getProgress/:id", moduleID, module.GetModuleProgress)

	staff := middleware.RequireStaff()
	group.Post("/create/:courseId", staff, courseID, validators.CreateModule(), module.CreateModule)
	group.Patch("/update/:id", staff, moduleID, validators.UpdateModule(), module.UpdateModule)
	group.Delete("/delete/:id", staff, moduleID, module.DeleteModule)
	group.Patch("/reorder/:courseId", staff, courseID, validators.Reorder(), module.ReorderModules)
}
