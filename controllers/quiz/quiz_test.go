package quizController

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eduflow/middleware"
	"eduflow/models"
	validators "eduflow/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int                    `json:"statusCode"`
	Message    string                 `json:"message"`
	Success    bool                   `json:"success"`
	Data       map[string]interface{} `json:"data"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Course{}, &models.Module{}, &models.Enrollment{},
		&models.Quiz{}, &models.Question{}, &models.QuizAttempt{},
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
	quizID := middleware.UintParam("quizId", "quizID", "quiz")

	app.Post("/quiz/submit/:quizId", authAs(user), quizID, validators.Submit(), ctl.SubmitQuiz)
	app.Get("/quiz/getQuiz/:quizId", authAs(user), quizID, ctl.GetQuiz)
	return app
}

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

// seedQuiz creates a 4-question quiz with correct answers 0, 1, 2, 0
func seedQuiz(t *testing.T, db *gorm.DB) (*models.User, *models.User, *models.Quiz) {
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

	now := time.Now()
	require.NoError(t, db.Create(&models.Enrollment{
		UserID: student.ID, CourseID: course.ID, EnrolledAt: now,
		PaymentStatus: models.PaymentPaid, PaidAt: &now,
	}).Error)

	options := mustJSON(t, []string{"One", "Two", "Three"})
	quiz := models.Quiz{
		CourseID: course.ID,
		ModuleID: module.ID,
		Title:    "Basics check",
		Questions: []models.Question{
			{Prompt: "First?", Options: options, CorrectOption: 0, Order: 1},
			{Prompt: "Second?", Options: options, CorrectOption: 1, Order: 2},
			{Prompt: "Third?", Options: options, CorrectOption: 2, Order: 3},
			{Prompt: "Fourth?", Options: options, CorrectOption: 0, Order: 4},
		},
	}
	require.NoError(t, db.Create(&quiz).Error)
	return &instructor, &student, &quiz
}

func submit(t *testing.T, app *fiber.App, quizID string, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/quiz/submit/"+quizID, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestGradeAnswer(t *testing.T) {
	// Numeric index
	assert.True(t, GradeAnswer(float64(1), 1))
	assert.False(t, GradeAnswer(float64(2), 1))
	assert.False(t, GradeAnswer(1.5, 1))

	// Letter form, case-insensitive, A is option 0
	assert.True(t, GradeAnswer("B", 1))
	assert.True(t, GradeAnswer("b", 1))
	assert.True(t, GradeAnswer(" a ", 0))
	assert.False(t, GradeAnswer("C", 1))

	// Unrecognized shapes score wrong, never error
	assert.False(t, GradeAnswer("AB", 0))
	assert.False(t, GradeAnswer("1", 1))
	assert.False(t, GradeAnswer(nil, 0))
	assert.False(t, GradeAnswer(true, 0))
	assert.False(t, GradeAnswer([]interface{}{1}, 1))
}

func TestSubmitQuizAllCorrect(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedQuiz(t, db)
	app := testApp(db, student)

	resp := submit(t, app, "1", `{"answers":[0,1,2,0]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, float64(4), env.Data["score"])
	assert.Equal(t, float64(4), env.Data["totalQuestions"])
	assert.Equal(t, float64(100), env.Data["percentage"])

	var attempt models.QuizAttempt
	require.NoError(t, db.First(&attempt).Error)
	assert.Equal(t, 4, attempt.Score)
	assert.Equal(t, 4, attempt.Total)
	assert.JSONEq(t, `[0,1,2,0]`, string(attempt.Answers))
}

func TestSubmitQuizLetterAnswers(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedQuiz(t, db)
	app := testApp(db, student)

	// "B" means index 1; mixed letters and numbers both count
	resp := submit(t, app, "1", `{"answers":["a","B",2,"c"]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, float64(3), env.Data["score"])
	assert.Equal(t, float64(75), env.Data["percentage"])
}

func TestSubmitQuizWrongLength(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedQuiz(t, db)
	app := testApp(db, student)

	resp := submit(t, app, "1", `{"answers":[0,1]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&models.QuizAttempt{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubmitQuizPercentageRounds(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedQuiz(t, db)
	app := testApp(db, student)

	// 1 of 4 correct, then junk shapes for the rest
	resp := submit(t, app, "1", `{"answers":[0,"zz",null,9]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, float64(1), env.Data["score"])
	assert.Equal(t, float64(25), env.Data["percentage"])
}

func TestSubmitQuizRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	seedQuiz(t, db)

	outsider := models.User{Name: "Kiran", Email: "kiran@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&outsider).Error)

	app := testApp(db, &outsider)
	resp := submit(t, app, "1", `{"answers":[0,1,2,0]}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetQuizHidesCorrectOptions(t *testing.T) {
	db := setupTestDB(t)
	_, student, _ := seedQuiz(t, db)
	app := testApp(db, student)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/quiz/getQuiz/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "correctOption")
	assert.NotContains(t, string(body), "correct_option")
}
