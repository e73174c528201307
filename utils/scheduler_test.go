package utils

import (
	"strings"
	"testing"
	"time"

	"eduflow/models"

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
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Enrollment{}))
	return db
}

func TestPurgeExpiredTokens(t *testing.T) {
	db := setupTestDB(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := models.User{
		Name: "Stale", Email: "stale@example.com", Password: "x",
		VerificationToken: "digest-old", VerificationExpiry: &past,
		ResetToken: "reset-old", ResetExpiry: &past,
	}
	fresh := models.User{
		Name: "Fresh", Email: "fresh@example.com", Password: "x",
		VerificationToken: "digest-new", VerificationExpiry: &future,
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&fresh).Error)

	PurgeExpiredTokens(db)

	var got models.User
	require.NoError(t, db.First(&got, expired.ID).Error)
	assert.Empty(t, got.VerificationToken)
	assert.Empty(t, got.ResetToken)

	got = models.User{}
	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, "digest-new", got.VerificationToken)
}

func TestPurgeStalePendingEnrollments(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	course := models.Course{Title: "Go", Description: "Intro course", CreatedByID: user.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	stale := models.Enrollment{
		UserID: user.ID, CourseID: course.ID,
		EnrolledAt: time.Now().Add(-48 * time.Hour), PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, db.Create(&stale).Error)
	// Backdate created_at, gorm sets it on insert
	require.NoError(t, db.Model(&stale).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	paid := models.Enrollment{
		UserID: user.ID, CourseID: course.ID + 1,
		EnrolledAt: time.Now().Add(-48 * time.Hour), PaymentStatus: models.PaymentPaid,
	}
	require.NoError(t, db.Create(&paid).Error)
	require.NoError(t, db.Model(&paid).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	PurgeStalePendingEnrollments(db)

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var remaining models.Enrollment
	require.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, models.PaymentPaid, remaining.PaymentStatus)
}
