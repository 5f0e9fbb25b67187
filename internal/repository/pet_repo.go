package repository

import (
	"pawly/internal/models"

	"gorm.io/gorm"
)

type PetRepository struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) *PetRepository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Create(p *models.Pet) error {
	return r.db.Create(p).Error
}

func (r *PetRepository) GetByID(id uint) (*models.Pet, error) {
	var p models.Pet
	err := r.db.Preload("Images").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PetRepository) ListByMemberID(memberID uint) ([]models.Pet, error) {
	var pets []models.Pet
	err := r.db.Preload("Images").Where("member_id = ?", memberID).Order("created_at ASC").Find(&pets).Error
	return pets, err
}

func (r *PetRepository) Update(p *models.Pet) error {
	return r.db.Save(p).Error
}

func (r *PetRepository) Delete(id uint) error {
	return r.db.Delete(&models.Pet{}, id).Error
}

func (r *PetRepository) AddImage(img *models.PetImage) error {
	return r.db.Create(img).Error
}

func (r *PetRepository) DeleteImages(petID uint) error {
	return r.db.Where("pet_id = ?", petID).Delete(&models.PetImage{}).Error
}
