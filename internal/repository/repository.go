package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds an active user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds an active user by username
	FindByUsername(username string) (*models.User, error)

	// FindByIDs returns the users with the given IDs, active or not
	FindByIDs(ids []uint64) ([]models.User, error)

	// ExistsByEmail reports whether any user has registered the email
	ExistsByEmail(email string) (bool, error)

	// ExistsByUsername reports whether any user has the username
	ExistsByUsername(username string) (bool, error)

	// List retrieves active users
	List(params utils.PaginationParams) ([]models.User, int64, error)

	// Purge permanently removes a user with everything that depends on it
	Purge(id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its memberships in one transaction
	Create(project *models.Project, memberIDs []uint64) error

	// FindByID finds an active project with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// FindAnyByID finds a project regardless of its active flag
	FindAnyByID(id uint64) (*models.Project, error)

	// List retrieves active projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update saves the project; a non-nil memberIDs replaces the roster
	Update(project *models.Project, memberIDs []uint64) error

	// UpdateStatus persists only the status column
	UpdateStatus(id uint64, status models.ProjectStatus) error

	// SoftDelete marks the project inactive
	SoftDelete(id uint64) error

	// Purge permanently removes the project with its timesheets, tasks and memberships
	Purge(id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status     *models.ProjectStatus
	OwnerID    *uint64
	Pagination utils.PaginationParams
}

// TimesheetRepository defines the interface for timesheet data access
type TimesheetRepository interface {
	// Create creates a new timesheet entry
	Create(timesheet *models.Timesheet) error

	// FindByID finds an active timesheet owned by userID
	FindByID(id, userID uint64) (*models.Timesheet, error)

	// List retrieves a user's active timesheets
	List(filter TimesheetFilter) ([]models.Timesheet, int64, error)

	// Update updates a timesheet entry
	Update(timesheet *models.Timesheet) error

	// SoftDelete marks the timesheet inactive
	SoftDelete(id uint64) error
}

// TimesheetFilter holds filtering options for listing timesheets.
// UserID is mandatory: timesheets are only ever listed for their owner.
type TimesheetFilter struct {
	UserID     uint64
	ProjectID  *uint64
	DateFrom   *time.Time
	DateTo     *time.Time
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds an active task with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves active tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// SoftDelete marks the task inactive
	SoftDelete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID    *uint64
	AssignedToID *uint64
	Completed    *bool
	Priority     *models.TaskPriority
	Pagination   utils.PaginationParams
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// softDelete flips is_active on a still-active row of model.
func softDelete(db *gorm.DB, model interface{}, id uint64) error {
	result := db.Model(model).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
