package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eduflow/config"
	"eduflow/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		AccessTokenSecret:  "test-access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret",
		RefreshTokenExpiry: 168 * time.Hour,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func protectedApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Get("/me", Protect(db), func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{
			"userId": c.Locals("userId"),
			"role":   c.Locals("userRole"),
		})
	})
	return app
}

func TestProtectWithAccessToken(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)

	user := models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	accessToken, err := GenerateAccessToken(user.ID, user.Name, user.Role)
	require.NoError(t, err)

	app := protectedApp(db)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectWithoutCookies(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)

	app := protectedApp(db)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectRefreshRotation(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)

	user := models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	refreshToken, err := GenerateRefreshToken(user.ID, user.Role)
	require.NoError(t, err)
	require.NoError(t, db.Model(&user).Update("refresh_token", refreshToken).Error)

	app := protectedApp(db)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A fresh pair must come back as cookies
	cookies := resp.Cookies()
	var gotAccess, gotRefresh string
	for _, ck := range cookies {
		switch ck.Name {
		case "accessToken":
			gotAccess = ck.Value
		case "refreshToken":
			gotRefresh = ck.Value
		}
	}
	assert.NotEmpty(t, gotAccess)
	assert.NotEmpty(t, gotRefresh)

	// And the stored refresh token must have rotated with it
	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, gotRefresh, updated.RefreshToken)
}

func TestProtectRejectsMismatchedRefreshToken(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)

	user := models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	// Valid signature but not the stored token, e.g. after logout
	staleToken, err := GenerateRefreshToken(user.ID, user.Role)
	require.NoError(t, err)

	app := protectedApp(db)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: staleToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
