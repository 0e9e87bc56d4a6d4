package models

import (
	"strings"
	"unicode/utf8"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Valid reports whether s is one of the enumerated project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

var (
	ErrProjectNameRequired = &ValidationError{Field: "name", Message: "this field may not be blank"}
	ErrProjectNameTooLong  = &ValidationError{Field: "name", Message: "ensure this field has no more than 255 characters"}
	ErrInvalidStatus       = &ValidationError{Field: "status", Message: "must be one of active, completed, archived"}
)

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description *string       `gorm:"type:text" json:"description"`
	OwnerID     uint64        `gorm:"not null;index" json:"owner_id"`
	Status      ProjectStatus `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	BaseModel

	// Relations
	Owner       User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Memberships []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Timesheets  []Timesheet     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks       []Task          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// Validate checks the field rules applied on every write.
func (p *Project) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrProjectNameRequired
	}
	if utf8.RuneCountInString(name) > 255 {
		return ErrProjectNameTooLong
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ChangeStatus sets the status when it is an enumerated value and reports whether it did.
// Unknown values leave the project untouched.
func (p *Project) ChangeStatus(status ProjectStatus) bool {
	if !status.Valid() {
		return false
	}
	p.Status = status
	return true
}

// IsMember reports whether the user belongs to the project team.
// The owner always counts as a member.
func (p *Project) IsMember(userID uint64) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Memberships {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Members returns the users of the preloaded memberships.
func (p *Project) Members() []User {
	users := make([]User, 0, len(p.Memberships))
	for _, m := range p.Memberships {
		users = append(users, m.User)
	}
	return users
}
