package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timetrack-api/internal/database"
	"github.com/yukikurage/timetrack-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDatabase(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}

func createProject(t *testing.T, db *gorm.DB, name string, ownerID uint64, memberIDs ...uint64) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:    name,
		OwnerID: ownerID,
		Status:  models.ProjectStatusActive,
	}
	require.NoError(t, NewProjectRepository(db).Create(project, memberIDs))
	return project
}

func createTimesheet(t *testing.T, db *gorm.DB, userID, projectID uint64, date time.Time) *models.Timesheet {
	t.Helper()
	timesheet := &models.Timesheet{
		UserID:    userID,
		ProjectID: projectID,
		Date:      date,
		Hours:     decimal.RequireFromString("7.50"),
	}
	require.NoError(t, NewTimesheetRepository(db).Create(timesheet))
	return timesheet
}

func createTask(t *testing.T, db *gorm.DB, title string, projectID, assigneeID uint64) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:        title,
		ProjectID:    projectID,
		AssignedToID: assigneeID,
		Priority:     models.TaskPriorityMedium,
	}
	require.NoError(t, NewTaskRepository(db).Create(task))
	return task
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
