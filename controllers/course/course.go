package courseController

import (
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

// canManage applies the uniform authorization rule for write access:
// creator, co-instructor, or admin.
func canManage(c *fiber.Ctx, course *models.Course) bool {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)
	return role == models.RoleAdmin || course.IsInstructor(userID)
}

// GetPublishedCourses lists all published courses
func (ctl *Controller) GetPublishedCourses(c *fiber.Ctx) error {
	var courses []models.Course
	err := ctl.Db.Where("is_published = ?", true).
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	message := "Courses fetched successfully!"
	if len(courses) == 0 {
		message = "No published courses yet"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourse fetches a single course. Unpublished courses are invisible to
// anyone but their instructors and admins.
func (ctl *Controller) GetCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.IsPublished && !canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var moduleCount int64
	ctl.Db.Model(&models.Module{}).Where("course_id = ?", course.ID).Count(&moduleCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":       course,
		"totalModules": moduleCount,
	})
}

// CheckEnrolled reports whether the caller has an enrollment for the course
func (ctl *Controller) CheckEnrolled(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched!", fiber.Map{
		"enrolled": models.IsEnrolled(ctl.Db, userID, courseID),
	})
}

// GetCourseProgress walks the course's lesson tree and aggregates the
// caller's completion, overall and per module.
func (ctl *Controller) GetCourseProgress(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !models.IsEnrolled(ctl.Db, userID, courseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You need to enroll in this course to view progress!", nil)
	}

	var modules []models.Module
	ctl.Db.Where("course_id = ?", courseID).Order("display_order asc").Find(&modules)

	type ModuleProgress struct {
		ModuleID           uint   `json:"module_id"`
		ModuleTitle        string `json:"module_title"`
		TotalLessons       int64  `json:"total_lessons"`
		CompletedLessons   int64  `json:"completed_lessons"`
		ProgressPercentage int    `json:"progress_percentage"`
	}

	var totalLessons, completedLessons int64
	moduleProgress := make([]ModuleProgress, len(modules))

	for i, mod := range modules {
		var modTotal, modCompleted int64

		ctl.Db.Model(&models.Lesson{}).Where("module_id = ?", mod.ID).Count(&modTotal)
		ctl.Db.Model(&models.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
			Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ? AND lessons.module_id = ?", userID, true, mod.ID).
			Count(&modCompleted)

		moduleProgress[i] = ModuleProgress{
			ModuleID:           mod.ID,
			ModuleTitle:        mod.Title,
			TotalLessons:       modTotal,
			CompletedLessons:   modCompleted,
			ProgressPercentage: ProgressPercentage(modCompleted, modTotal),
		}

		totalLessons += modTotal
		completedLessons += modCompleted
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"courseId":           courseID,
		"courseTitle":        course.Title,
		"totalLessons":       totalLessons,
		"completedLessons":   completedLessons,
		"progressPercentage": ProgressPercentage(completedLessons, totalLessons),
		"modules":            moduleProgress,
	})
}

// ProgressPercentage computes the integer completion ratio: floor of
// completed/total*100, and 0 when there is nothing to complete.
func ProgressPercentage(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(completed * 100 / total)
}

// GetMyCourses lists all courses the caller instructs, published or not
func (ctl *Controller) GetMyCourses(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)

	var courses []models.Course
	query := ctl.Db.Order("created_at desc")
	if role != models.RoleAdmin {
		query = query.Where("created_by_id = ?", userID)
	}
	if err := query.Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

func (ctl *Controller) CreateCourse(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title" validate:"required,min=3"`
		Description string `json:"description" validate:"required,min=5"`
		Type        string `json:"type" validate:"omitempty,oneof=FREE PAID"`
		Price       uint   `json:"price"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courseType := reqData.Type
	if courseType == "" {
		courseType = models.CourseFree
	}

	// Price required iff PAID, forbidden iff FREE
	if courseType == models.CoursePaid && reqData.Price == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Paid courses must have a price greater than zero!", nil)
	}
	if courseType == models.CourseFree && reqData.Price != 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Free courses cannot have a price!", nil)
	}

	course := models.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		CreatedByID: userID,
		Type:        courseType,
		Price:       reqData.Price,
	}

	if err := ctl.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func (ctl *Controller) UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title       *string `json:"title" validate:"omitempty,min=3"`
		Description *string `json:"description" validate:"omitempty,min=5"`
		Type        *string `json:"type" validate:"omitempty,oneof=FREE PAID"`
		Price       *uint   `json:"price"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to update this course!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}

	newType := course.Type
	if reqData.Type != nil {
		newType = *reqData.Type
		updates["type"] = newType
	}
	newPrice := course.Price
	if reqData.Price != nil {
		newPrice = *reqData.Price
		updates["price"] = newPrice
	}

	// The price/type invariant is enforced at write time, not by schema.
	if newType == models.CoursePaid && newPrice == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Paid courses must have a price greater than zero!", nil)
	}
	if newType == models.CourseFree && newPrice != 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Free courses cannot have a price!", nil)
	}

	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No fields provided to update!", nil)
	}

	if err := ctl.Db.Model(&course).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func (ctl *Controller) PublishCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData := new(struct {
		IsPublished bool `json:"isPublished"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to publish this course!", nil)
	}

	if err := ctl.Db.Model(&course).Update("is_published", reqData.IsPublished).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	message := "Course unpublished!"
	if reqData.IsPublished {
		message = "Course published!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// AddInstructor attaches a co-instructor to the course
func (ctl *Controller) AddInstructor(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData := new(struct {
		Email string `json:"email"`
	})
	if err := c.BodyParser(reqData); err != nil || reqData.Email == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Instructor email is required!", nil)
	}

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to manage this course!", nil)
	}

	var instructor models.User
	if err := ctl.Db.Where("email = ?", reqData.Email).First(&instructor).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Instructor not found!", nil)
	}

	if !instructor.IsStaff() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User is not an instructor!", nil)
	}

	if course.IsInstructor(instructor.ID) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already instructs this course!", nil)
	}

	if err := ctl.Db.Model(&course).Association("Instructors").Append(&instructor); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add instructor!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor added successfully!", nil)
}

func (ctl *Controller) DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !canManage(c, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to delete this course!", nil)
	}

	if err := ctl.Db.Select("Instructors").Delete(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", fiber.Map{
		"id": courseID,
	})
}
