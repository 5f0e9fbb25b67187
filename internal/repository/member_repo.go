package repository

import (
	"pawly/internal/models"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(m *models.Member) error {
	return r.db.Create(m).Error
}

func (r *MemberRepository) GetByID(id uint) (*models.Member, error) {
	var m models.Member
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByEmail(email string) (*models.Member, error) {
	var m models.Member
	err := r.db.Where("email = ?", email).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByGoogleID(googleID string) (*models.Member, error) {
	var m models.Member
	err := r.db.Where("google_id = ?", googleID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Member{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *MemberRepository) ExistsByNickname(nickname string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Member{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

func (r *MemberRepository) Update(m *models.Member) error {
	return r.db.Save(m).Error
}
