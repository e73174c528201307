package enrollmentController

import (
	"errors"
	"fmt"
	"time"

	"eduflow/middleware"
	"eduflow/models"
	"eduflow/payment"
	"eduflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Controller struct {
	Db      *gorm.DB
	Gateway payment.Gateway
}

func New(db *gorm.DB, gateway payment.Gateway) *Controller {
	return &Controller{Db: db, Gateway: gateway}
}

// Enroll creates an enrollment for the caller. Free courses are paid
// immediately; paid courses get a gateway order and stay PENDING until the
// payment is confirmed.
func (ctl *Controller) Enroll(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if models.IsEnrolled(ctl.Db, userID, courseID) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}

	var user models.User
	if err := ctl.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if course.Type == models.CourseFree {
		now := time.Now()
		enrollment := models.Enrollment{
			UserID:        userID,
			CourseID:      courseID,
			EnrolledAt:    now,
			PaymentStatus: models.PaymentPaid,
			Amount:        0,
			PaidAt:        &now,
		}

		if err := ctl.Db.Create(&enrollment).Error; err != nil {
			// Losing the insert race is the same outcome as the pre-check
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
		}

		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", fiber.Map{
			"enrollment": enrollment,
			"course": fiber.Map{
				"id":    course.ID,
				"title": course.Title,
			},
		})
	}

	if course.Price == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course price is not set!", nil)
	}

	amountPaise := course.Price * 100
	receipt := fmt.Sprintf("enroll_%s", uuid.NewString()[:18])

	order, err := ctl.Gateway.CreateOrder(amountPaise, "INR", receipt)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to create payment order!", nil)
	}

	enrollment := models.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		EnrolledAt:     time.Now(),
		PaymentStatus:  models.PaymentPending,
		PaymentOrderID: &order.ID,
		Amount:         amountPaise,
	}

	if err := ctl.Db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment order created! Complete the payment to activate enrollment.", fiber.Map{
		"enrollmentId": enrollment.ID,
		"orderId":      order.ID,
		"amount":       amountPaise,
		"currency":     "INR",
		"keyId":        ctl.Gateway.KeyID(),
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
		},
	})
}

// EnrollmentStatus reports the caller's standing in one course
func (ctl *Controller) EnrollmentStatus(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	var enrollment models.Enrollment
	err := ctl.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Not enrolled in this course", fiber.Map{
			"enrolled": false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched", fiber.Map{
		"enrolled":      true,
		"paymentStatus": enrollment.PaymentStatus,
		"completed":     enrollment.Completed,
		"enrolledAt":    enrollment.EnrolledAt,
		"enrollmentId":  enrollment.ID,
	})
}

// MyEnrollments lists all of the caller's enrollments with course details
func (ctl *Controller) MyEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var enrollments []models.Enrollment
	if err := ctl.Db.Preload("Course").Where("user_id = ?", userID).
		Order("enrolled_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	message := "Enrollments fetched successfully!"
	if len(enrollments) == 0 {
		message = "You have not enrolled in any course yet"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"enrollments":      enrollments,
		"totalEnrollments": len(enrollments),
	})
}

// GetAllEnrollments lists every enrollment in a course, instructors and
// admins only
func (ctl *Controller) GetAllEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.Db.Preload("Instructors").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if role != models.RoleAdmin && !course.IsInstructor(userID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to view enrollments for this course!", nil)
	}

	var enrollments []models.Enrollment
	if err := ctl.Db.Preload("User").Where("course_id = ?", courseID).
		Order("enrolled_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
		},
		"enrollments":      enrollments,
		"totalEnrollments": len(enrollments),
	})
}

// MarkCompleted sets or clears the caller's course completion flag
func (ctl *Controller) MarkCompleted(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedCompleted").(*struct {
		Completed *bool `json:"completed" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var enrollment models.Enrollment
	if err := ctl.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}

	enrollment.Completed = *reqData.Completed
	if enrollment.Completed {
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else {
		enrollment.CompletedAt = nil
	}

	if err := ctl.Db.Save(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update enrollment!", nil)
	}

	message := "Course marked as completed!"
	if !enrollment.Completed {
		message = "Course marked as not completed!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, enrollment)
}

// CancelEnrollment removes the caller's enrollment. Completed courses stay;
// paid ones go without refund.
func (ctl *Controller) CancelEnrollment(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(uint)

	var enrollment models.Enrollment
	if err := ctl.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}

	if enrollment.Completed {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot cancel a completed course!", nil)
	}

	if err := ctl.Db.Unscoped().Delete(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled!", fiber.Map{
		"courseId": courseID,
	})
}
