package moduleController

import (
	courseController "eduflow/controllers/course"
	"eduflow/middleware"
	"eduflow/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{Db: db}
}

// canView applies the uniform visibility rule: instructors and admins see
// everything, anyone else needs an enrollment row.
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

// GetAllModules lists a course's modules in order
func (ctl *Controller) GetAllModules(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canView(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view modules!", nil)
	}

	var modules []models.Module
	if err := ctl.Db.Where("course_id = ?", courseID).Order("display_order asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	message := "All modules fetched"
	if len(modules) == 0 {
		message = "No modules found in this course yet"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
		},
		"modules":      modules,
		"totalModules": len(modules),
	})
}

// GetModule fetches one module with its lessons
func (ctl *Controller) GetModule(c *fiber.Ctx) error {
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view this module!", nil)
	}

	var lessons []models.Lesson
	ctl.Db.Where("module_id = ?", moduleID).Order("display_order asc").Find(&lessons)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully!", fiber.Map{
		"module":       module,
		"lessons":      lessons,
		"totalLessons": len(lessons),
	})
}

// GetModuleProgress aggregates the caller's lesson completion for one module
func (ctl *Controller) GetModuleProgress(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view progress!", nil)
	}

	var lessons []models.Lesson
	ctl.Db.Where("module_id = ?", moduleID).Order("display_order asc").Find(&lessons)

	type LessonStatus struct {
		LessonID  uint   `json:"lesson_id"`
		Title     string `json:"title"`
		Order     int    `json:"order"`
		Completed bool   `json:"completed"`
	}

	var completed int64
	statuses := make([]LessonStatus, len(lessons))
	for i, lesson := range lessons {
		var progress models.LessonProgress
		done := ctl.Db.Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lesson.ID, true).
			First(&progress).Error == nil
		if done {
			completed++
		}
		statuses[i] = LessonStatus{
			LessonID:  lesson.ID,
			Title:     lesson.Title,
			Order:     lesson.Order,
			Completed: done,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module progress fetched successfully!", fiber.Map{
		"module": fiber.Map{
			"id":    module.ID,
			"title": module.Title,
			"order": module.Order,
		},
		"lessons":            statuses,
		"totalLessons":       len(lessons),
		"completedLessons":   completed,
		"progressPercentage": courseController.ProgressPercentage(completed, int64(len(lessons))),
	})
}

func (ctl *Controller) CreateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title string `json:"title" validate:"required,min=3"`
		Order int    `json:"order" validate:"omitempty,gt=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to add modules to this course!", nil)
	}

	// Default to the end of the course when order is omitted
	order := reqData.Order
	if order == 0 {
		var lastModule models.Module
		if err := ctl.Db.Where("course_id = ?", courseID).Order("display_order desc").First(&lastModule).Error; err == nil {
			order = lastModule.Order + 1
		} else {
			order = 1
		}
	}

	module := models.Module{
		CourseID: courseID,
		Title:    reqData.Title,
		Order:    order,
	}

	if err := ctl.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func (ctl *Controller) UpdateModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedModuleUpdate").(*struct {
		Title *string `json:"title" validate:"omitempty,min=3"`
		Order *int    `json:"order" validate:"omitempty,gt=0"`
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to update this module!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Order != nil {
		updates["display_order"] = *reqData.Order
	}

	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No fields provided to update!", nil)
	}

	if err := ctl.Db.Model(&module).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated!", module)
}

func (ctl *Controller) DeleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	var module models.Module
	if err := ctl.Db.First(&module, moduleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, module.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to delete this module!", nil)
	}

	if err := ctl.Db.Delete(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted!", fiber.Map{
		"id": moduleID,
	})
}

// ReorderModules replaces the full ordering set for a course. The submitted
// id set must exactly match the course's current modules; updates are
// all-or-nothing.
func (ctl *Controller) ReorderModules(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedReorder").(*struct {
		Items []struct {
			ID    uint `json:"id" validate:"required"`
			Order int  `json:"order" validate:"required,gt=0"`
		} `json:"modules" validate:"required,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !ctl.canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to reorder modules in this course!", nil)
	}

	ids := make([]uint, len(reqData.Items))
	for i, item := range reqData.Items {
		ids[i] = item.ID
	}

	var existingCount int64
	ctl.Db.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&existingCount)

	var matchedCount int64
	ctl.Db.Model(&models.Module{}).Where("course_id = ? AND id IN ?", courseID, ids).Count(&matchedCount)

	if matchedCount != int64(len(ids)) || existingCount != int64(len(ids)) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submitted module IDs must exactly match the course's modules!", nil)
	}

	err := ctl.Db.Transaction(func(tx *gorm.DB) error {
		for _, item := range reqData.Items {
			if err := tx.Model(&models.Module{}).Where("id = ?", item.ID).
				Update("display_order", item.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder modules!", nil)
	}

	var modules []models.Module
	ctl.Db.Where("course_id = ?", courseID).Order("display_order asc").Find(&modules)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered successfully!", fiber.Map{
		"modules": modules,
	})
}
