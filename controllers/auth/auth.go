package authController

import (
	"eduflow/config"
	"eduflow/middleware"
	"eduflow/models"
	"eduflow/utils"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Controller struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{Db: db}
}

// issueTokenPair persists a fresh refresh token for the user and sets both
// cookies on the response.
func (ctl *Controller) issueTokenPair(c *fiber.Ctx, user *models.User) error {
	accessToken, err := middleware.GenerateAccessToken(user.ID, user.Name, user.Role)
	if err != nil {
		return err
	}
	refreshToken, err := middleware.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return err
	}

	if err := ctl.Db.Model(user).Update("refresh_token", refreshToken).Error; err != nil {
		return err
	}

	middleware.SetAuthCookies(c, accessToken, refreshToken)
	return nil
}

func (ctl *Controller) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*struct {
		Name     string `json:"name" validate:"required,min=2"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Check if email already exists
	if err := ctl.Db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	unhashedToken, hashedToken, tokenExpiry, err := utils.GenerateTemporaryToken()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	role := reqData.Role
	if role == "" {
		role = models.RoleStudent
	}

	newUser := models.User{
		Name:               reqData.Name,
		Email:              reqData.Email,
		Password:           string(hashedPassword),
		Role:               role,
		VerificationToken:  hashedToken,
		VerificationExpiry: &tokenExpiry,
	}

	if err := ctl.Db.Create(&newUser).Error; err != nil {
		// The unique email constraint is the authority; a racing duplicate
		// registration loses here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	// Pre-verification login is permitted: issue the pair right away.
	if err := ctl.issueTokenPair(c, &newUser); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	// Fire-and-forget: a failed mail never rolls back registration.
	verificationURL := fmt.Sprintf("%s/auth/verify/%s", config.AppConfig.BaseURL, unhashedToken)
	utils.SendVerificationEmail(newUser.Email, newUser.Name, verificationURL)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully. Verification email sent.", fiber.Map{
		"user": newUser,
	})
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Same response for unknown email and wrong password, no user enumeration.
	var user models.User
	if err := ctl.Db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	}

	if err := ctl.issueTokenPair(c, &user); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user": user,
	})
}

func (ctl *Controller) Logout(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	if err := ctl.Db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token", "").Error; err != nil {
		log.Printf("Error clearing refresh token: %v", err)
	}

	middleware.ClearAuthCookies(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

func (ctl *Controller) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Verification token is required!", nil)
	}

	// Only the digest is ever stored; look up by the hash of the presented token.
	var user models.User
	err := ctl.Db.Where("verification_token = ? AND verification_expiry > ?", utils.HashToken(token), time.Now()).
		First(&user).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired verification token!", nil)
	}

	updates := map[string]interface{}{
		"is_verified":         true,
		"verification_token":  "",
		"verification_expiry": nil,
	}
	if err := ctl.Db.Model(&user).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify email!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully!", nil)
}

func (ctl *Controller) ResendVerification(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var user models.User
	if err := ctl.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
	}

	if user.IsVerified {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Email is already verified!", nil)
	}

	unhashedToken, hashedToken, tokenExpiry, err := utils.GenerateTemporaryToken()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	updates := map[string]interface{}{
		"verification_token":  hashedToken,
		"verification_expiry": &tokenExpiry,
	}
	if err := ctl.Db.Model(&user).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	verificationURL := fmt.Sprintf("%s/auth/verify/%s", config.AppConfig.BaseURL, unhashedToken)
	utils.SendVerificationEmail(user.Email, user.Name, verificationURL)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification email sent.", nil)
}

func (ctl *Controller) ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*struct {
		Email string `json:"email" validate:"required,email"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ctl.Db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	unhashedToken, hashedToken, tokenExpiry, err := utils.GenerateTemporaryToken()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	updates := map[string]interface{}{
		"reset_token":  hashedToken,
		"reset_expiry": &tokenExpiry,
	}
	if err := ctl.Db.Model(&user).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", config.AppConfig.FrontendURL, unhashedToken)
	utils.SendPasswordResetEmail(user.Email, user.Name, resetURL)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset email sent.", nil)
}

func (ctl *Controller) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Reset token is required!", nil)
	}

	reqData, ok := c.Locals("validatedResetPassword").(*struct {
		Password string `json:"password" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	err := ctl.Db.Where("reset_token = ? AND reset_expiry > ?", utils.HashToken(token), time.Now()).
		First(&user).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired reset token!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	// The token is consumed exactly once; the active session is dropped too.
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"reset_token":   "",
		"reset_expiry":  nil,
		"refresh_token": "",
	}
	if err := ctl.Db.Model(&user).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reset password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}

func (ctl *Controller) ChangePassword(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedChangePassword").(*struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ctl.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := ctl.Db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

func (ctl *Controller) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var user models.User
	if err := ctl.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", fiber.Map{
		"user": user,
	})
}
