package enrollmentController

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"eduflow/models"
	"eduflow/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompletedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	t.Helper()
	now := time.Now()
	enrollment := models.Enrollment{
		UserID: userID, CourseID: courseID, EnrolledAt: now,
		PaymentStatus: models.PaymentPaid, PaidAt: &now,
		Completed: true, CompletedAt: &now,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return &enrollment
}

func TestCertificateNotReadyBeforeCompletion(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	_, student, course := seedCourse(t, db, models.CourseFree, 0)

	now := time.Now()
	require.NoError(t, db.Create(&models.Enrollment{
		UserID: student.ID, CourseID: course.ID, EnrolledAt: now,
		PaymentStatus: models.PaymentPaid, PaidAt: &now,
	}).Error)

	ctl := New(db, newFakeGateway())
	app := testApp(ctl, student)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, false, env.Data["ready"])

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCertificateIssueAndIdempotence(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	_, student, course := seedCourse(t, db, models.CourseFree, 0)
	enrollment := seedCompletedEnrollment(t, db, student.ID, course.ID)

	ctl := New(db, newFakeGateway())
	app := testApp(ctl, student)

	fetch := func() *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil), -1)
		require.NoError(t, err)
		return resp
	}

	resp := fetch()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 0)
	assert.Equal(t, "%PDF", string(body[:4]))

	var first models.Certificate
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&first).Error)
	assert.Contains(t, first.SerialNumber, "EDU-")

	// Second request reuses the row, no second certificate
	resp = fetch()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var second models.Certificate
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&second).Error)
	assert.Equal(t, first.SerialNumber, second.SerialNumber)
}

func TestCertificateRegeneratedWhenFileMissing(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	_, student, course := seedCourse(t, db, models.CourseFree, 0)
	seedCompletedEnrollment(t, db, student.ID, course.ID)

	ctl := New(db, newFakeGateway())
	app := testApp(ctl, student)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var certificate models.Certificate
	require.NoError(t, db.First(&certificate).Error)

	// Lose the file, the row must be enough to reissue it
	path := utils.CertificatePath(certificate.SerialNumber)
	require.NoError(t, os.Remove(path))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCertificateOwnerOnly(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	_, student, course := seedCourse(t, db, models.CourseFree, 0)
	seedCompletedEnrollment(t, db, student.ID, course.ID)

	other := models.User{Name: "Kiran", Email: "kiran@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&other).Error)

	ctl := New(db, newFakeGateway())
	app := testApp(ctl, &other)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestVerifyCertificatePublicLookup(t *testing.T) {
	initTestConfig(t)
	db := setupTestDB(t)
	_, student, course := seedCourse(t, db, models.CourseFree, 0)
	seedCompletedEnrollment(t, db, student.ID, course.ID)

	ctl := New(db, newFakeGateway())
	app := testApp(ctl, student)

	// Issue first
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/certificate/1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var certificate models.Certificate
	require.NoError(t, db.First(&certificate).Error)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/verify/"+certificate.SerialNumber, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, true, env.Data["valid"])
	assert.Equal(t, "Ravi", env.Data["studentName"])
	assert.Equal(t, "Go from Scratch", env.Data["courseTitle"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/enrollment/verify/EDU-999999-20990101", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
