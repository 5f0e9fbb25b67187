package repository

import (
	"pawly/internal/models"

	"gorm.io/gorm"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(a *models.Article) error {
	return r.db.Create(a).Error
}

func (r *ArticleRepository) GetByID(id uint) (*models.Article, error) {
	var a models.Article
	err := r.db.Preload("Images").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepository) List(category string, limit, offset int) ([]models.Article, error) {
	var list []models.Article
	q := r.db.Preload("Images").Order("created_at DESC").Limit(limit).Offset(offset)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *ArticleRepository) Update(a *models.Article) error {
	return r.db.Save(a).Error
}

func (r *ArticleRepository) Delete(id uint) error {
	return r.db.Delete(&models.Article{}, id).Error
}

// IncrementViews bumps the view counter in one statement so concurrent reads
// don't lose updates.
func (r *ArticleRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("count_views", gorm.Expr("count_views + 1")).Error
}

func (r *ArticleRepository) AddImage(img *models.ArticleImage) error {
	return r.db.Create(img).Error
}

func (r *ArticleRepository) DeleteImages(articleID uint) error {
	return r.db.Where("article_id = ?", articleID).Delete(&models.ArticleImage{}).Error
}

func (r *ArticleRepository) AddLike(like *models.ArticleLike) error {
	err := r.db.Create(like).Error
	if err != nil {
		return err
	}
	return r.db.Model(&models.Article{}).Where("id = ?", like.ArticleID).
		UpdateColumn("count_likes", gorm.Expr("count_likes + 1")).Error
}

func (r *ArticleRepository) RemoveLike(articleID, memberID uint) error {
	res := r.db.Where("article_id = ? AND member_id = ?", articleID, memberID).Delete(&models.ArticleLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return r.db.Model(&models.Article{}).Where("id = ?", articleID).
		UpdateColumn("count_likes", gorm.Expr("count_likes - 1")).Error
}

func (r *ArticleRepository) HasLiked(articleID, memberID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ArticleLike{}).
		Where("article_id = ? AND member_id = ?", articleID, memberID).Count(&count).Error
	return count > 0, err
}
