package authRoutes

import (
	controllers "eduflow/controllers/auth"
	"eduflow/middleware"
	validators "eduflow/validators/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupAuthRoutes sets up registration, session and password routes
func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	auth := controllers.New(db)
	group := app.Group("/auth")

	group.Post("/register", validators.Register(), auth.Register)
	group.Post("/login", validators.Login(), auth.Login)
	group.Post("/logout", middleware.Protect(db), auth.Logout)

	group.Get("/verify/:token", auth.VerifyEmail)
	group.Post("/resendVerification", middleware.Protect(db), auth.ResendVerification)

	group.Post("/forgotPassword", validators.ForgotPassword(), auth.ForgotPassword)
	group.Post("/resetPassword/:token", validators.ResetPassword(), auth.ResetPassword)
	group.Post("/changePassword", middleware.Protect(db), validators.ChangePassword(), auth.ChangePassword)

	group.Get("/profile", middleware.Protect(db), auth.GetProfile)
}
