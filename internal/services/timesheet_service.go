package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"github.com/yukikurage/timetrack-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrTimesheetExists   = errors.New("a timesheet for this user, project and date already exists")
)

// TimesheetService handles timesheet business logic. Every operation is scoped
// to the calling user.
type TimesheetService struct {
	timesheetRepo repository.TimesheetRepository
	projectRepo   repository.ProjectRepository
}

// NewTimesheetService creates a new TimesheetService
func NewTimesheetService(timesheetRepo repository.TimesheetRepository, projectRepo repository.ProjectRepository) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		projectRepo:   projectRepo,
	}
}

// ListTimesheetsInput represents filters for listing timesheets
type ListTimesheetsInput struct {
	UserID     uint64
	ProjectID  *uint64
	DateFrom   *time.Time
	DateTo     *time.Time
	Pagination utils.PaginationParams
}

// CreateTimesheetInput represents input for creating a timesheet
type CreateTimesheetInput struct {
	UserID    uint64
	ProjectID uint64
	Date      time.Time
	Hours     decimal.Decimal
	Notes     *string
}

// UpdateTimesheetInput represents input for updating a timesheet
type UpdateTimesheetInput struct {
	ProjectID  *uint64
	Date       *time.Time
	Hours      *decimal.Decimal
	Notes      *string
	ClearNotes bool
}

// ListTimesheets returns the user's active timesheets
func (s *TimesheetService) ListTimesheets(input ListTimesheetsInput) ([]models.Timesheet, int64, error) {
	filter := repository.TimesheetFilter{
		UserID:     input.UserID,
		ProjectID:  input.ProjectID,
		Pagination: input.Pagination,
	}
	if input.DateFrom != nil {
		from := models.DateOf(*input.DateFrom)
		filter.DateFrom = &from
	}
	if input.DateTo != nil {
		to := models.DateOf(*input.DateTo)
		filter.DateTo = &to
	}

	timesheets, total, err := s.timesheetRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return timesheets, total, nil
}

// GetTimesheet returns one of the user's active timesheets
func (s *TimesheetService) GetTimesheet(timesheetID, userID uint64) (*models.Timesheet, error) {
	timesheet, err := s.timesheetRepo.FindByID(timesheetID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}
	return timesheet, nil
}

// CreateTimesheet records hours for the user
func (s *TimesheetService) CreateTimesheet(input CreateTimesheetInput) (*models.Timesheet, error) {
	timesheet := &models.Timesheet{
		UserID:    input.UserID,
		ProjectID: input.ProjectID,
		Hours:     input.Hours,
		Notes:     input.Notes,
	}
	if !input.Date.IsZero() {
		timesheet.Date = models.DateOf(input.Date)
	}
	if err := timesheet.Validate(); err != nil {
		return nil, err
	}

	if _, err := resolveProject(s.projectRepo, "project", input.ProjectID); err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.Create(timesheet); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrTimesheetExists
		}
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	return s.GetTimesheet(timesheet.ID, input.UserID)
}

// UpdateTimesheet changes one of the user's timesheets
func (s *TimesheetService) UpdateTimesheet(timesheetID, userID uint64, input UpdateTimesheetInput) (*models.Timesheet, error) {
	timesheet, err := s.GetTimesheet(timesheetID, userID)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		if _, err := resolveProject(s.projectRepo, "project", *input.ProjectID); err != nil {
			return nil, err
		}
		timesheet.ProjectID = *input.ProjectID
	}
	if input.Date != nil {
		timesheet.Date = models.DateOf(*input.Date)
	}
	if input.Hours != nil {
		timesheet.Hours = *input.Hours
	}
	if input.ClearNotes {
		timesheet.Notes = nil
	} else if input.Notes != nil {
		timesheet.Notes = input.Notes
	}

	if err := timesheet.Validate(); err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.Update(timesheet); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrTimesheetExists
		}
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}

	return s.GetTimesheet(timesheet.ID, userID)
}

// DeleteTimesheet soft-deletes one of the user's timesheets
func (s *TimesheetService) DeleteTimesheet(timesheetID, userID uint64) error {
	if _, err := s.GetTimesheet(timesheetID, userID); err != nil {
		return err
	}

	if err := s.timesheetRepo.SoftDelete(timesheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimesheetNotFound
		}
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	return nil
}
