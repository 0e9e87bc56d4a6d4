package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the enumerated priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

var (
	ErrTaskTitleRequired     = &ValidationError{Field: "title", Message: "this field may not be blank"}
	ErrTaskTitleTooLong      = &ValidationError{Field: "title", Message: "ensure this field has no more than 255 characters"}
	ErrInvalidPriority       = &ValidationError{Field: "priority", Message: "must be one of low, medium, high"}
	ErrDueDateBeforeCreation = &ValidationError{Field: "due_date", Message: "due date cannot be earlier than the creation date"}
)

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	ProjectID    uint64       `gorm:"not null;index" json:"project_id"`
	AssignedToID uint64       `gorm:"not null;index" json:"assigned_to_id"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate      *time.Time   `gorm:"type:date" json:"due_date"`
	Completed    bool         `gorm:"not null;default:false" json:"completed"`
	BaseModel

	// Relations
	Project    Project `gorm:"foreignKey:ProjectID" json:"-"`
	AssignedTo User    `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// Validate checks the field rules applied on every write. The due date is compared
// against the creation date, or against now when the task has not been stored yet.
func (t *Task) Validate(now time.Time) error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrTaskTitleRequired
	}
	if utf8.RuneCountInString(title) > 255 {
		return ErrTaskTitleTooLong
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if t.DueDate != nil {
		created := now
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt
		}
		if DateOf(*t.DueDate).Before(DateOf(created)) {
			return ErrDueDateBeforeCreation
		}
	}
	return nil
}
