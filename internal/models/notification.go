package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is the durable record of one notification. It exists whether
// or not any live stream was connected when it was raised. Immutable except
// IsRead, which only ever goes false -> true.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MemberID  uint           `gorm:"not null;index" json:"member_id"`
	Content   string         `gorm:"size:512;not null" json:"content"`
	Code      int            `gorm:"not null" json:"code"`
	IsRead    bool           `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
