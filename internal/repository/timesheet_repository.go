package repository

import (
	"github.com/yukikurage/timetrack-api/internal/database"
	"github.com/yukikurage/timetrack-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// Create creates a new timesheet entry. The (user, project, date) unique index
// rejects a second entry for the same day.
func (r *GormTimesheetRepository) Create(timesheet *models.Timesheet) error {
	timesheet.IsActive = true
	return r.db.Omit(clause.Associations).Create(timesheet).Error
}

// FindByID finds an active timesheet owned by userID
func (r *GormTimesheetRepository) FindByID(id, userID uint64) (*models.Timesheet, error) {
	var timesheet models.Timesheet
	if err := r.db.Scopes(database.Active("timesheets")).
		Preload("User").
		Where("timesheets.user_id = ?", userID).
		First(&timesheet, id).Error; err != nil {
		return nil, err
	}
	return &timesheet, nil
}

// List retrieves a user's active timesheets
func (r *GormTimesheetRepository) List(filter TimesheetFilter) ([]models.Timesheet, int64, error) {
	query := r.db.Model(&models.Timesheet{}).
		Scopes(database.Active("timesheets")).
		Where("timesheets.user_id = ?", filter.UserID)

	if filter.ProjectID != nil {
		query = query.Where("timesheets.project_id = ?", *filter.ProjectID)
	}
	if filter.DateFrom != nil {
		query = query.Where("timesheets.date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("timesheets.date <= ?", *filter.DateTo)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var timesheets []models.Timesheet
	if err := query.Order("timesheets.date DESC, timesheets.id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("User").
		Find(&timesheets).Error; err != nil {
		return nil, 0, err
	}

	return timesheets, total, nil
}

// Update updates a timesheet entry
func (r *GormTimesheetRepository) Update(timesheet *models.Timesheet) error {
	return r.db.Omit(clause.Associations).Save(timesheet).Error
}

// SoftDelete marks the timesheet inactive
func (r *GormTimesheetRepository) SoftDelete(id uint64) error {
	return softDelete(r.db, &models.Timesheet{}, id)
}
