package enrollmentRoutes

import (
	controllers "eduflow/controllers/enrollment"
	"eduflow/middleware"
	"eduflow/payment"
	validators "eduflow/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupEnrollmentRoutes sets up enrollment, payment and certificate routes.
// The webhook and the certificate verification endpoint are the only
// unauthenticated ones.
func SetupEnrollmentRoutes(app *fiber.App, db *gorm.DB, gateway payment.Gateway) {
	enrollment := controllers.New(db, gateway)
	group := app.Group("/enrollment")

	protect := middleware.Protect(db)
	courseID := middleware.UintParam("courseId", "courseID", "course")
	enrollmentID := middleware.UintParam("enrollmentId", "enrollmentID", "enrollment")

	group.Post("/enroll/:courseId", protect, courseID, enrollment.Enroll)
	group.Get("/enrolled/:courseId", protect, courseID, enrollment.EnrollmentStatus)
	group.Get("/myEnrollments", protect, enrollment.MyEnrollments)
	group.Get("/getAllEnrollments/:courseId", protect, courseID, enrollment.GetAllEnrollments)
	group.Patch("/completed/:courseId", protect, courseID, validators.MarkCompleted(), enrollment.MarkCompleted)
	group.Delete("/cancel/:courseId", protect, courseID, enrollment.CancelEnrollment)

	group.Post("/payment/verify", protect, validators.VerifyPayment(), enrollment.VerifyPayment)
	group.Post("/webhook/razorpay", enrollment.RazorpayWebhook)

	group.Get("/certificate/:enrollmentId", protect, enrollmentID, enrollment.GetCertificate)
	group.Get("/verify/:certificateId", enrollment.VerifyCertificate)
}
