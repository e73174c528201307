package enrollmentController

import (
	"encoding/json"
	"log"
	"time"

	"eduflow/middleware"
	"eduflow/models"
	"eduflow/utils"

	"github.com/gofiber/fiber/v2"
)

// confirmPayment is the single place an enrollment transitions to PAID, no
// matter which channel reported the payment. Returns the enrollment and
// whether this call performed the transition; a nil enrollment means the
// order id is unknown.
func (ctl *Controller) confirmPayment(orderID, paymentID string) (*models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	if err := ctl.Db.Where("payment_order_id = ?", orderID).First(&enrollment).Error; err != nil {
		return nil, false, nil
	}

	// Duplicate delivery, nothing to do
	if enrollment.PaymentStatus == models.PaymentPaid {
		return &enrollment, false, nil
	}

	now := time.Now()
	enrollment.PaymentStatus = models.PaymentPaid
	enrollment.PaymentID = paymentID
	enrollment.PaidAt = &now

	if err := ctl.Db.Save(&enrollment).Error; err != nil {
		return &enrollment, false, err
	}

	ctl.sendEnrollmentMail(&enrollment)
	return &enrollment, true, nil
}

func (ctl *Controller) sendEnrollmentMail(enrollment *models.Enrollment) {
	var user models.User
	var course models.Course
	if err := ctl.Db.First(&user, enrollment.UserID).Error; err != nil {
		return
	}
	if err := ctl.Db.First(&course, enrollment.CourseID).Error; err != nil {
		return
	}
	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
}

// VerifyPayment handles the client-side checkout callback. The frontend
// posts back the triple Razorpay hands it after a successful payment.
func (ctl *Controller) VerifyPayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVerifyPayment").(*struct {
		RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
		RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !ctl.Gateway.VerifyPaymentSignature(reqData.RazorpayOrderID, reqData.RazorpayPaymentID, reqData.RazorpaySignature) {
		log.Printf("payment callback signature mismatch for order %s", reqData.RazorpayOrderID)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment signature verification failed!", nil)
	}

	enrollment, _, err := ctl.confirmPayment(reqData.RazorpayOrderID, reqData.RazorpayPaymentID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to confirm payment!", nil)
	}
	if enrollment == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No enrollment found for this payment order!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified! Enrollment is now active.", fiber.Map{
		"enrollmentId":  enrollment.ID,
		"paymentStatus": enrollment.PaymentStatus,
	})
}

// RazorpayWebhook handles server-to-server payment events. The signature is
// computed over the raw body, so this runs before any JSON parsing. Internal
// no-ops still return 200 so the gateway stops retrying.
func (ctl *Controller) RazorpayWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("x-razorpay-signature")

	if !ctl.Gateway.VerifyWebhookSignature(body, signature) {
		log.Printf("webhook signature mismatch from %s", c.IP())
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook signature verification failed!", nil)
	}

	var event struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid webhook payload!", nil)
	}

	if event.Event != "payment.captured" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored", nil)
	}

	orderID := event.Payload.Payment.Entity.OrderID
	if orderID == "" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored", nil)
	}

	enrollment, transitioned, err := ctl.confirmPayment(orderID, event.Payload.Payment.Entity.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process webhook!", nil)
	}
	if enrollment == nil {
		log.Printf("webhook for unknown order %s", orderID)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No matching enrollment", nil)
	}

	message := "Payment already confirmed"
	if transitioned {
		message = "Payment confirmed"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
}
