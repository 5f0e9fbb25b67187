package models

import (
	"time"

	"gorm.io/gorm"
)

type Member struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Nickname     string         `gorm:"uniqueIndex;size:64;not null" json:"nickname"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // MEMBER | ADMIN
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"`      // nil for email signups (avoids duplicate '' on unique index)
	Name         string         `gorm:"size:64" json:"name"`
	Phone        string         `gorm:"size:32" json:"phone"`
	Address      string         `gorm:"size:255" json:"address"`
	Gender       string         `gorm:"size:10" json:"gender"`
	Birth        *time.Time     `json:"birth"`
	ProfileImage string         `gorm:"size:512" json:"profile_image"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Pets []Pet `gorm:"foreignKey:MemberID" json:"pets,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) IsAdmin() bool { return m.Role == "ADMIN" }
