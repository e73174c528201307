package lessonController

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eduflow/middleware"
	"eduflow/models"
	validators "eduflow/validators/lesson"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Course{}, &models.Module{}, &models.Lesson{},
		&models.LessonProgress{}, &models.Enrollment{},
	))
	return db
}

func authAs(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", user.ID)
		c.Locals("userName", user.Name)
		c.Locals("userRole", user.Role)
		return c.Next()
	}
}

func testApp(db *gorm.DB, user *models.User) *fiber.App {
	ctl := New(db)
	app := fiber.New()
	moduleID := middleware.UintParam("moduleId", "moduleID", "module")
	lessonID := middleware.UintParam("id", "lessonID", "lesson")

	app.Post("/lesson/create/:moduleId", authAs(user), moduleID, validators.CreateLesson(), ctl.CreateLesson)
	app.Patch("/lesson/markCompleted/:id", authAs(user), lessonID, validators.MarkCompleted(), ctl.MarkCompleted)
	return app
}

func seedLesson(t *testing.T, db *gorm.DB) (*models.User, *models.User, *models.Lesson) {
	t.Helper()
	instructor := models.User{Name: "Meera", Email: "meera@example.com", Role: models.RoleInstructor}
	student := models.User{Name: "Ravi", Email: "ravi@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&instructor).Error)
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{
		Title: "Go from Scratch", Description: "A complete introduction",
		CreatedByID: instructor.ID, Type: models.CourseFree, IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)

	module := models.Module{CourseID: course.ID, Title: "Basics", Order: 1}
	require.NoError(t, db.Create(&module).Error)

	lesson := models.Lesson{ModuleID: module.ID, Title: "Hello world", ContentType: models.LessonText, Order: 1}
	require.NoError(t, db.Create(&lesson).Error)

	now := time.Now()
	require.NoError(t, db.Create(&models.Enrollment{
		UserID: student.ID, CourseID: course.ID, EnrolledAt: now,
		PaymentStatus: models.PaymentPaid, PaidAt: &now,
	}).Error)

	return &instructor, &student, &lesson
}

func TestCreateLessonContentURLRule(t *testing.T) {
	db := setupTestDB(t)
	instructor, _, _ := seedLesson(t, db)
	app := testApp(db, instructor)

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/lesson/create/1", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("video without URL rejected", func(t *testing.T) {
		resp := post(`{"title":"Intro video","contentType":"VIDEO"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("video with URL accepted", func(t *testing.T) {
		resp := post(`{"title":"Intro video","contentType":"VIDEO","contentUrl":"https://cdn.example.com/intro.mp4"}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("text lesson needs no URL", func(t *testing.T) {
		resp := post(`{"title":"Reading notes"}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var lesson models.Lesson
		require.NoError(t, db.Where("title = ?", "Reading notes").First(&lesson).Error)
		assert.Equal(t, models.LessonText, lesson.ContentType)
	})
}

func TestMarkCompletedUpsert(t *testing.T) {
	db := setupTestDB(t)
	_, student, lesson := seedLesson(t, db)
	app := testApp(db, student)

	patch := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPatch, "/lesson/markCompleted/1", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := patch(`{"completed":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var progress models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", student.ID, lesson.ID).First(&progress).Error)
	assert.True(t, progress.Completed)
	require.NotNil(t, progress.CompletedAt)
	firstCompletedAt := *progress.CompletedAt

	// Marking again neither errors nor duplicates
	resp = patch(`{"completed":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.LessonProgress{}).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", student.ID, lesson.ID).First(&progress).Error)
	assert.Equal(t, firstCompletedAt.Unix(), progress.CompletedAt.Unix())

	// And it can be undone
	resp = patch(`{"completed":false}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	progress = models.LessonProgress{}
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", student.ID, lesson.ID).First(&progress).Error)
	assert.False(t, progress.Completed)
	assert.Nil(t, progress.CompletedAt)
}

func TestMarkCompletedRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	seedLesson(t, db)

	outsider := models.User{Name: "Kiran", Email: "kiran@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&outsider).Error)
	app := testApp(db, &outsider)

	req := httptest.NewRequest(http.MethodPatch, "/lesson/markCompleted/1",
		bytes.NewReader([]byte(`{"completed":true}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMissingCompletedFieldRejected(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedLesson(t, db)
	app := testApp(db, student)

	req := httptest.NewRequest(http.MethodPatch, "/lesson/markCompleted/1",
		bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
