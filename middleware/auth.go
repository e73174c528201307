package middleware

import (
	"eduflow/config"
	"eduflow/models"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// GenerateAccessToken signs a short-lived access token for the user
func GenerateAccessToken(userID uint, name, role string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(config.AppConfig.AccessTokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.AccessTokenSecret))
}

// GenerateRefreshToken signs a long-lived refresh token for the user
func GenerateRefreshToken(userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(config.AppConfig.RefreshTokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.RefreshTokenSecret))
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return nil, fmt.Errorf("invalid token payload")
	}
	return claims, nil
}

// SetAuthCookies writes the access and refresh token cookies. Both are
// httpOnly/secure/SameSite=None so the SPA on another origin can use them.
func SetAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   int(config.AppConfig.AccessTokenExpiry.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		MaxAge:   int(config.AppConfig.RefreshTokenExpiry.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// ClearAuthCookies expires both auth cookies.
func ClearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   true,
			SameSite: fiber.CookieSameSiteNoneMode,
		})
	}
}

// Protect gates a route behind the cookie pair. The access token is validated
// first; when it fails, the refresh token is validated and matched
// byte-for-byte against the single stored refresh token for the user, and a
// fresh pair is issued and persisted. Single concurrent session model: a
// rotation invalidates any other holder of the old refresh token.
func Protect(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("accessToken")
		refreshToken := c.Cookies("refreshToken")

		if accessToken == "" && refreshToken == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
		}

		if accessToken != "" {
			if claims, err := parseToken(accessToken, config.AppConfig.AccessTokenSecret); err == nil {
				userID := uint(claims["userId"].(float64))

				var user models.User
				if err := db.First(&user, userID).Error; err != nil {
					return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
				}

				setUserLocals(c, &user)
				return c.Next()
			}
			// Access token expired/invalid, fall through to the refresh token.
		}

		if refreshToken == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
		}

		claims, err := parseToken(refreshToken, config.AppConfig.RefreshTokenSecret)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
		}

		userID := uint(claims["userId"].(float64))

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
		}

		if user.RefreshToken == "" || user.RefreshToken != refreshToken {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized", nil)
		}

		newAccessToken, err := GenerateAccessToken(user.ID, user.Name, user.Role)
		if err != nil {
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
		}
		newRefreshToken, err := GenerateRefreshToken(user.ID, user.Role)
		if err != nil {
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
		}

		if err := db.Model(&user).Update("refresh_token", newRefreshToken).Error; err != nil {
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refresh session", nil)
		}

		SetAuthCookies(c, newAccessToken, newRefreshToken)
		setUserLocals(c, &user)
		return c.Next()
	}
}

func setUserLocals(c *fiber.Ctx, user *models.User) {
	c.Locals("userId", user.ID)
	c.Locals("userName", user.Name)
	c.Locals("userRole", user.Role)
}
