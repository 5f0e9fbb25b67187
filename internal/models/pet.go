package models

import (
	"time"

	"gorm.io/gorm"
)

type Pet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MemberID  uint           `gorm:"not null;index" json:"member_id"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	Category1 string         `gorm:"size:32" json:"category1"` // species, e.g. DOG, CAT
	Category2 string         `gorm:"size:32" json:"category2"` // breed
	Gender    string         `gorm:"size:10" json:"gender"`
	Birth     *time.Time     `json:"birth"`
	Weight    float64        `json:"weight"`
	ImageURL  string         `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Images []PetImage `gorm:"foreignKey:PetID" json:"images,omitempty"`
}

func (Pet) TableName() string {
	return "pets"
}

type PetImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PetID     uint      `gorm:"not null;index" json:"pet_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (PetImage) TableName() string {
	return "pet_images"
}
