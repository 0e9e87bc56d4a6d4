package dto

import (
	"time"

	"github.com/yukikurage/timetrack-api/internal/models"
)

// TimesheetDTO represents a timesheet entry in API responses.
// Hours are rendered with exactly two decimals, e.g. "8.50".
type TimesheetDTO struct {
	ID        uint64    `json:"id"`
	User      UserDTO   `json:"user"`
	Project   uint64    `json:"project"`
	Date      Date      `json:"date"`
	Hours     string    `json:"hours"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ToTimesheetDTO converts a Timesheet model to TimesheetDTO
func ToTimesheetDTO(timesheet models.Timesheet) TimesheetDTO {
	return TimesheetDTO{
		ID:        timesheet.ID,
		User:      ToUserDTO(timesheet.User),
		Project:   timesheet.ProjectID,
		Date:      NewDate(timesheet.Date),
		Hours:     timesheet.Hours.StringFixed(2),
		Notes:     timesheet.Notes,
		CreatedAt: timesheet.CreatedAt,
	}
}

// ToTimesheetDTOs converts a slice of timesheets
func ToTimesheetDTOs(timesheets []models.Timesheet) []TimesheetDTO {
	dtos := make([]TimesheetDTO, len(timesheets))
	for i, t := range timesheets {
		dtos[i] = ToTimesheetDTO(t)
	}
	return dtos
}
