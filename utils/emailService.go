package utils

import (
	"eduflow/config"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SendEmail delivers one HTML mail over SMTP. Callers fire it from a
// goroutine: mail failure must never fail the parent operation.
func SendEmail(to []string, subject string, htmlBody string) error {
	cfg := config.AppConfig

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s\r\n", cfg.EmailSender)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)

	err := smtp.SendMail(cfg.SMTPHost+":"+cfg.SMTPPort, auth, cfg.SMTPUser, to, []byte(msg))
	if err != nil {
		log.Printf("Error sending email to %v: %v", to, err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.content h2 { color: #1A237E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #22BC66; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #22BC66; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>EDUFLOW</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 EduFlow. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// 1. Email verification link on registration
func SendVerificationEmail(email, name, verificationURL string) {
	subject := "Verify your EduFlow email"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>EduFlow</strong>! We are thrilled to have you onboard.</p>
		<p>Please verify your email address to secure your account. The link is valid for 20 minutes.</p>
		<a href="%s" class="btn">Verify your email</a>
	`, name, verificationURL)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Password reset link
func SendPasswordResetEmail(email, name, resetURL string) {
	subject := "Reset your EduFlow password"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>The link below is valid for 20 minutes and can be used once.</p>
		<a href="%s" class="btn">Reset password</a>
		<p>If you did not request this, you can safely ignore this email.</p>
	`, name, resetURL)

	go SendEmail([]string{email}, subject, getEmailTemplate("Password Reset", body))
}

// 3. Enrollment confirmation (free enrollments and captured payments)
func SendEnrollmentEmail(email, name, courseName string) {
	subject := "Course Enrollment Confirmation: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have successfully enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			You can now access all the course content. Complete all lessons to earn your certificate.
		</div>
		<p>Happy Learning!</p>
	`, name, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// 4. Certificate issued
func SendCertificateEmail(email, name, courseName, serialNumber string) {
	subject := "Course Completion Certificate: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">
			<strong>Your Certificate Number:</strong> %s
		</div>
		<p>Your certificate is now available for download. Anyone can verify it with the certificate number above.</p>
	`, name, courseName, serialNumber)

	go SendEmail([]string{email}, subject, getEmailTemplate("Certificate of Completion", body))
}
