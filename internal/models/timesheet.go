package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxHours is the smallest value that no longer fits decimal(5,2).
var MaxHours = decimal.NewFromInt(1000)

var (
	ErrNegativeHours  = &ValidationError{Field: "hours", Message: "hours must not be negative"}
	ErrHoursTooLarge  = &ValidationError{Field: "hours", Message: "ensure that there are no more than 5 digits in total"}
	ErrHoursPrecision = &ValidationError{Field: "hours", Message: "ensure that there are no more than 2 decimal places"}
	ErrDateRequired   = &ValidationError{Field: "date", Message: "this field is required"}
)

type Timesheet struct {
	ID        uint64          `gorm:"primarykey" json:"id"`
	UserID    uint64          `gorm:"not null;uniqueIndex:idx_timesheet_user_project_date" json:"user_id"`
	ProjectID uint64          `gorm:"not null;uniqueIndex:idx_timesheet_user_project_date;index" json:"project_id"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_timesheet_user_project_date" json:"date"`
	Hours     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"hours"`
	Notes     *string         `gorm:"type:text" json:"notes"`
	BaseModel

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// Validate checks the field rules applied on every write. Zero hours are allowed.
func (t *Timesheet) Validate() error {
	if t.Date.IsZero() {
		return ErrDateRequired
	}
	if t.Hours.IsNegative() {
		return ErrNegativeHours
	}
	if !t.Hours.Equal(t.Hours.Truncate(2)) {
		return ErrHoursPrecision
	}
	if t.Hours.GreaterThanOrEqual(MaxHours) {
		return ErrHoursTooLarge
	}
	return nil
}
