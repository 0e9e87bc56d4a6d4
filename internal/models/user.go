package models

type User struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	BaseModel

	// Relations
	OwnedProjects []Project       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Memberships   []ProjectMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Timesheets    []Timesheet     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks         []Task          `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE" json:"-"`
}
