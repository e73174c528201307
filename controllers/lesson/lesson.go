package lessonController

import (
	"time"

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

func (ctl *Controller) courseForModule(moduleID uint) (*models.Module, *models.Course, error) {
	var module models.Module
	if err := ctl.Db.First(&module, moduleID).Error; err != nil {
		return nil, nil, err
	}
	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, module.CourseID).Error; err != nil {
		return nil, nil, err
	}
	return &module, &course, nil
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

// GetAllLessons lists a module's lessons in order
func (ctl *Controller) GetAllLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	module, course, err := ctl.courseForModule(moduleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canView(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view lessons!", nil)
	}

	var lessons []models.Lesson
	if err := ctl.Db.Where("module_id = ?", moduleID).Order("display_order asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	message := "All lessons fetched"
	if len(lessons) == 0 {
		message = "No lessons found in this module yet"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"module": fiber.Map{
			"id":    module.ID,
			"title": module.Title,
		},
		"lessons":      lessons,
		"totalLessons": len(lessons),
	})
}

// GetLesson fetches one lesson with the caller's completion status
func (ctl *Controller) GetLesson(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	lessonID := c.Locals("lessonID").(uint)

	var lesson models.Lesson
	if err := ctl.Db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	_, course, err := ctl.courseForModule(lesson.ModuleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canView(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to view this lesson!", nil)
	}

	var progress models.LessonProgress
	completed := ctl.Db.Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, true).
		First(&progress).Error == nil

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"lesson":    lesson,
		"completed": completed,
	})
}

func (ctl *Controller) CreateLesson(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title" validate:"required,min=3"`
		ContentType string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
		ContentURL  string `json:"contentUrl" validate:"omitempty,url"`
		Order       int    `json:"order" validate:"omitempty,gt=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	_, course, err := ctl.courseForModule(moduleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to add lessons to this module!", nil)
	}

	contentType := reqData.ContentType
	if contentType == "" {
		contentType = models.LessonText
	}

	// VIDEO and PDF lessons live at an external URL
	if contentType != models.LessonText && reqData.ContentURL == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content URL is required for VIDEO and PDF lessons!", nil)
	}

	order := reqData.Order
	if order == 0 {
		var lastLesson models.Lesson
		if err := ctl.Db.Where("module_id = ?", moduleID).Order("display_order desc").First(&lastLesson).Error; err == nil {
			order = lastLesson.Order + 1
		} else {
			order = 1
		}
	}

	lesson := models.Lesson{
		ModuleID:    moduleID,
		Title:       reqData.Title,
		ContentType: contentType,
		ContentURL:  reqData.ContentURL,
		Order:       order,
	}

	if err := ctl.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// CreateBulkLessons inserts a batch of lessons after the module's current
// last lesson, preserving the submitted order. All-or-nothing.
func (ctl *Controller) CreateBulkLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedBulkLessons").(*struct {
		Lessons []struct {
			Title       string `json:"title" validate:"required,min=3"`
			ContentType string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
			ContentURL  string `json:"contentUrl" validate:"omitempty,url"`
		} `json:"lessons" validate:"required,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	_, course, err := ctl.courseForModule(moduleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to add lessons to this module!", nil)
	}

	nextOrder := 1
	var lastLesson models.Lesson
	if err := ctl.Db.Where("module_id = ?", moduleID).Order("display_order desc").First(&lastLesson).Error; err == nil {
		nextOrder = lastLesson.Order + 1
	}

	lessons := make([]models.Lesson, 0, len(reqData.Lessons))
	for _, item := range reqData.Lessons {
		contentType := item.ContentType
		if contentType == "" {
			contentType = models.LessonText
		}
		if contentType != models.LessonText && item.ContentURL == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content URL is required for VIDEO and PDF lessons!", nil)
		}
		lessons = append(lessons, models.Lesson{
			ModuleID:    moduleID,
			Title:       item.Title,
			ContentType: contentType,
			ContentURL:  item.ContentURL,
			Order:       nextOrder,
		})
		nextOrder++
	}

	if err := ctl.Db.Create(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lessons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lessons created successfully!", fiber.Map{
		"lessons":      lessons,
		"totalLessons": len(lessons),
	})
}

func (ctl *Controller) UpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title       *string `json:"title" validate:"omitempty,min=3"`
		ContentType *string `json:"contentType" validate:"omitempty,oneof=TEXT VIDEO PDF"`
		ContentURL  *string `json:"contentUrl" validate:"omitempty,url"`
		Order       *int    `json:"order" validate:"omitempty,gt=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson models.Lesson
	if err := ctl.Db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	_, course, err := ctl.courseForModule(lesson.ModuleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to update this lesson!", nil)
	}

	// Re-check the URL requirement against the merged values
	newType := lesson.ContentType
	if reqData.ContentType != nil {
		newType = *reqData.ContentType
	}
	newURL := lesson.ContentURL
	if reqData.ContentURL != nil {
		newURL = *reqData.ContentURL
	}
	if newType != models.LessonText && newURL == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content URL is required for VIDEO and PDF lessons!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.ContentType != nil {
		updates["content_type"] = *reqData.ContentType
	}
	if reqData.ContentURL != nil {
		updates["content_url"] = *reqData.ContentURL
	}
	if reqData.Order != nil {
		updates["display_order"] = *reqData.Order
	}

	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No fields provided to update!", nil)
	}

	if err := ctl.Db.Model(&lesson).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated!", lesson)
}

func (ctl *Controller) DeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	var lesson models.Lesson
	if err := ctl.Db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	_, course, err := ctl.courseForModule(lesson.ModuleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to delete this lesson!", nil)
	}

	if err := ctl.Db.Delete(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted!", fiber.Map{
		"id": lessonID,
	})
}

// MarkCompleted upserts the caller's completion flag for a lesson. Marking
// an already-completed lesson again is a no-op, not an error.
func (ctl *Controller) MarkCompleted(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	lessonID := c.Locals("lessonID").(uint)

	reqData, ok := c.Locals("validatedMarkCompleted").(*struct {
		Completed *bool `json:"completed" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson models.Lesson
	if err := ctl.Db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var module models.Module
	if err := ctl.Db.First(&module, lesson.ModuleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !models.IsEnrolled(ctl.Db, userID, module.CourseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in the course to track progress!", nil)
	}

	completed := *reqData.Completed

	var progress models.LessonProgress
	err := ctl.Db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		progress = models.LessonProgress{
			UserID:   userID,
			LessonID: lessonID,
		}
	}

	progress.Completed = completed
	if completed {
		if progress.CompletedAt == nil {
			now := time.Now()
			progress.CompletedAt = &now
		}
	} else {
		progress.CompletedAt = nil
	}

	if err := ctl.Db.Save(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	message := "Lesson marked as completed!"
	if !completed {
		message = "Lesson marked as not completed!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, progress)
}

// ReorderLessons replaces the full ordering set for a module, same contract
// as module reordering.
func (ctl *Controller) ReorderLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedLessonReorder").(*struct {
		Items []struct {
			ID    uint `json:"id" validate:"required"`
			Order int  `json:"order" validate:"required,gt=0"`
		} `json:"lessons" validate:"required,min=1,dive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	_, course, err := ctl.courseForModule(moduleID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if !ctl.canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to reorder lessons in this module!", nil)
	}

	ids := make([]uint, len(reqData.Items))
	for i, item := range reqData.Items {
		ids[i] = item.ID
	}

	var existingCount int64
	ctl.Db.Model(&models.Lesson{}).Where("module_id = ?", moduleID).Count(&existingCount)

	var matchedCount int64
	ctl.Db.Model(&models.Lesson{}).Where("module_id = ? AND id IN ?", moduleID, ids).Count(&matchedCount)

	if matchedCount != int64(len(ids)) || existingCount != int64(len(ids)) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submitted lesson IDs must exactly match the module's lessons!", nil)
	}

	txErr := ctl.Db.Transaction(func(tx *gorm.DB) error {
		for _, item := range reqData.Items {
			if err := tx.Model(&models.Lesson{}).Where("id = ?", item.ID).
				Update("display_order", item.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder lessons!", nil)
	}

	var lessons []models.Lesson
	ctl.Db.Where("module_id = ?", moduleID).Order("display_order asc").Find(&lessons)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", fiber.Map{
		"lessons": lessons,
	})
}
