package enrollmentController

import (
	"errors"
	"os"
	"time"

	"eduflow/middleware"
	"eduflow/models"
	"eduflow/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCertificate fetches or issues the certificate for a completed
// enrollment and serves the PDF. Issuing is idempotent: the unique index on
// enrollment_id makes concurrent first requests converge on one row, and the
// PDF is regenerated from the row whenever the file is missing.
func (ctl *Controller) GetCertificate(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	role, _ := c.Locals("userRole").(string)
	enrollmentID := c.Locals("enrollmentID").(uint)

	var enrollment models.Enrollment
	if err := ctl.Db.First(&enrollment, enrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.UserID != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not authorized to access this certificate!", nil)
	}

	if !enrollment.Completed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate not ready - complete the course first!", fiber.Map{
			"ready": false,
		})
	}

	var user models.User
	var course models.Course
	if err := ctl.Db.First(&user, enrollment.UserID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if err := ctl.Db.First(&course, enrollment.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	certificate, issued, err := ctl.getOrIssueCertificate(&enrollment)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	if issued {
		utils.SendCertificateEmail(user.Email, user.Name, course.Title, certificate.SerialNumber)
	}

	path := utils.CertificatePath(certificate.SerialNumber)
	if _, err := os.Stat(path); err != nil {
		if path, err = utils.RenderCertificatePDF(
			certificate.SerialNumber, user.Name, course.Title,
			certificate.IssuedAt.Format("02 Jan 2006"),
		); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to render certificate!", nil)
		}
	}

	return c.Download(path, certificate.SerialNumber+".pdf")
}

// getOrIssueCertificate returns the enrollment's certificate row, inserting
// it first if none exists. Reports whether this call created the row.
func (ctl *Controller) getOrIssueCertificate(enrollment *models.Enrollment) (*models.Certificate, bool, error) {
	var existing models.Certificate
	if err := ctl.Db.Where("enrollment_id = ?", enrollment.ID).First(&existing).Error; err == nil {
		return &existing, false, nil
	}

	now := time.Now()
	certificate := models.Certificate{
		EnrollmentID: enrollment.ID,
		SerialNumber: utils.CertificateSerial(enrollment.ID, now.Format("20060102")),
		IssuedAt:     now,
	}

	if err := ctl.Db.Create(&certificate).Error; err != nil {
		// Lost the race, the winner's row is authoritative
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := ctl.Db.Where("enrollment_id = ?", enrollment.ID).First(&existing).Error; err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	return &certificate, true, nil
}

// VerifyCertificate is the public lookup behind the QR code on the PDF
func (ctl *Controller) VerifyCertificate(c *fiber.Ctx) error {
	serialNumber := c.Params("certificateId")
	if serialNumber == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate ID is required!", nil)
	}

	var certificate models.Certificate
	if err := ctl.Db.Where("serial_number = ?", serialNumber).First(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var enrollment models.Enrollment
	if err := ctl.Db.First(&enrollment, certificate.EnrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var user models.User
	var course models.Course
	ctl.Db.First(&user, enrollment.UserID)
	ctl.Db.First(&course, enrollment.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"valid":         true,
		"serialNumber":  certificate.SerialNumber,
		"studentName":   user.Name,
		"courseTitle":   course.Title,
		"issuedAt":      certificate.IssuedAt,
		"completedAt":   enrollment.CompletedAt,
	})
}
