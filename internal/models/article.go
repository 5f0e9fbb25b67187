package models

import (
	"time"

	"gorm.io/gorm"
)

type Article struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MemberID   uint           `gorm:"not null;index" json:"member_id"`
	Category   string         `gorm:"size:20;not null;index" json:"category"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	CountViews int            `gorm:"default:0" json:"count_views"`
	CountLikes int            `gorm:"default:0" json:"count_likes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Images []ArticleImage `gorm:"foreignKey:ArticleID" json:"images,omitempty"`
	Member Member         `gorm:"foreignKey:MemberID" json:"-"`
}

func (Article) TableName() string {
	return "articles"
}

type ArticleImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (ArticleImage) TableName() string {
	return "article_images"
}

// ArticleLike is one member's like on one article; the unique index makes
// like/unlike idempotent at the storage level.
type ArticleLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_member" json:"article_id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_article_member" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ArticleLike) TableName() string {
	return "article_likes"
}
