package models

import (
	"time"
)

// ChatRoom is a 1:1 room between two members. MemberA is always the smaller
// id so the pair maps to exactly one row.
type ChatRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberA   uint      `gorm:"not null;uniqueIndex:idx_room_pair" json:"member_a"`
	MemberB   uint      `gorm:"not null;uniqueIndex:idx_room_pair" json:"member_b"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
