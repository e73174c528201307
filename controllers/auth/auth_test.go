package authController

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eduflow/config"
	"eduflow/middleware"
	"eduflow/models"
	"eduflow/utils"
	validators "eduflow/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		SaltRound:          4, // keep bcrypt cheap in tests
		AccessTokenSecret:  "test-access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret",
		RefreshTokenExpiry: 168 * time.Hour,
		SMTPHost:           "localhost",
		SMTPPort:           "2525",
		EmailSender:        "EduFlow <team@eduflow.test>",
		BaseURL:            "http://localhost:8080",
		FrontendURL:        "http://localhost:5173",
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

func testApp(db *gorm.DB) *fiber.App {
	ctl := New(db)
	app := fiber.New()
	app.Post("/auth/register", validators.Register(), ctl.Register)
	app.Post("/auth/login", validators.Login(), ctl.Login)
	app.Get("/auth/verify/:token", ctl.VerifyEmail)
	app.Post("/auth/logout", middleware.Protect(db), ctl.Logout)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func cookieValue(resp *http.Response, name string) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func TestRegister(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	resp := postJSON(t, app, "/auth/register",
		`{"name":"Ravi","email":"ravi@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Session starts immediately, before email verification
	assert.NotEmpty(t, cookieValue(resp, "accessToken"))
	assert.NotEmpty(t, cookieValue(resp, "refreshToken"))

	var user models.User
	require.NoError(t, db.Where("email = ?", "ravi@example.com").First(&user).Error)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEmpty(t, user.VerificationToken)
	assert.NotEqual(t, "supersecret", user.Password)

	// Response must not leak the password hash
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), user.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	body := `{"name":"Ravi","email":"ravi@example.com","password":"supersecret"}`
	resp := postJSON(t, app, "/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("supersecret"), 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Ravi", Email: "ravi@example.com", Password: string(hashed), Role: models.RoleStudent,
	}).Error)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", `{"email":"ravi@example.com","password":"supersecret"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, cookieValue(resp, "accessToken"))

		refreshToken := cookieValue(resp, "refreshToken")
		require.NotEmpty(t, refreshToken)

		var user models.User
		require.NoError(t, db.Where("email = ?", "ravi@example.com").First(&user).Error)
		assert.Equal(t, refreshToken, user.RefreshToken)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		wrongPassword := postJSON(t, app, "/auth/login", `{"email":"ravi@example.com","password":"notitnotit"}`)
		unknownEmail := postJSON(t, app, "/auth/login", `{"email":"ghost@example.com","password":"supersecret"}`)

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)

		first, err := io.ReadAll(wrongPassword.Body)
		require.NoError(t, err)
		second, err := io.ReadAll(unknownEmail.Body)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})
}

func TestVerifyEmail(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	unhashed, hashed, expiry, err := utils.GenerateTemporaryToken()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Ravi", Email: "ravi@example.com", Password: "irrelevant",
		Role: models.RoleStudent, VerificationToken: hashed, VerificationExpiry: &expiry,
	}).Error)

	t.Run("valid token verifies once", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/verify/"+unhashed, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user models.User
		require.NoError(t, db.Where("email = ?", "ravi@example.com").First(&user).Error)
		assert.True(t, user.IsVerified)
		assert.Empty(t, user.VerificationToken)
	})

	t.Run("token is single-use", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/verify/"+unhashed, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/verify/nonsense", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	unhashed, hashed, _, err := utils.GenerateTemporaryToken()
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(&models.User{
		Name: "Ravi", Email: "ravi@example.com", Password: "irrelevant",
		Role: models.RoleStudent, VerificationToken: hashed, VerificationExpiry: &expired,
	}).Error)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/verify/"+unhashed, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutClearsSession(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	app := testApp(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("supersecret"), 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Ravi", Email: "ravi@example.com", Password: string(hashed), Role: models.RoleStudent,
	}).Error)

	login := postJSON(t, app, "/auth/login", `{"email":"ravi@example.com","password":"supersecret"}`)
	require.Equal(t, http.StatusOK, login.StatusCode)
	accessToken := cookieValue(login, "accessToken")
	require.NotEmpty(t, accessToken)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ravi@example.com").First(&user).Error)
	assert.Empty(t, user.RefreshToken)
}
