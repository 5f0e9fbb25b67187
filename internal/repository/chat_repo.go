package repository

import (
	"pawly/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateRoom returns the 1:1 room for the member pair, creating it on
// first use. The pair is normalized (smaller id first) so both directions
// resolve to the same row.
func (r *ChatRepository) GetOrCreateRoom(memberID, otherID uint) (*models.ChatRoom, error) {
	a, b := memberID, otherID
	if a > b {
		a, b = b, a
	}
	var room models.ChatRoom
	err := r.db.Where("member_a = ? AND member_b = ?", a, b).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	room = models.ChatRoom{MemberA: a, MemberB: b}
	if err := r.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) GetRoom(id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) CreateMessage(m *models.ChatMessage) error {
	return r.db.Create(m).Error
}

func (r *ChatRepository) ListMessages(roomID uint, limit, offset int) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	err := r.db.Where("room_id = ?", roomID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
