package repositories

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"writium/models"
)

type ArticleRepository interface {
	Create(article *models.Article) error
	GetByID(id string) (*models.Article, error)
	GetByShareToken(token string) (*models.Article, error)
	List(ownerID string, projectID *string, limit, offset int) ([]models.Article, int64, error)
	UpdateFields(id string, fields map[string]interface{}) (*models.Article, error)
	UpdateFieldsByShareToken(token string, fields map[string]interface{}) (*models.Article, error)
	SetShareToken(id, ownerID, token string) error
	ClearShareToken(id, ownerID string) error
	Delete(id, ownerID string) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(article *models.Article) error {
	return r.db.Create(article).Error
}

func (r *articleRepository) GetByID(id string) (*models.Article, error) {
	var article models.Article
	err := r.db.First(&article, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetByShareToken(token string) (*models.Article, error) {
	var article models.Article
	err := r.db.First(&article, "share_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ownerID string, projectID *string, limit, offset int) ([]models.Article, int64, error) {
	query := r.db.Model(&models.Article{}).Where("user_id = ?", ownerID)
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	err := query.
		Order("updated_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	return articles, total, err
}

// UpdateFields applies a partial update built from the SET map; the statement
// is assembled with squirrel since the column list varies per request.
func (r *articleRepository) UpdateFields(id string, fields map[string]interface{}) (*models.Article, error) {
	if err := r.execUpdate(fields, sq.Eq{"id": id}); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *articleRepository) UpdateFieldsByShareToken(token string, fields map[string]interface{}) (*models.Article, error) {
	if err := r.execUpdate(fields, sq.Eq{"share_token": token}); err != nil {
		return nil, err
	}
	return r.GetByShareToken(token)
}

func (r *articleRepository) execUpdate(fields map[string]interface{}, where sq.Eq) error {
	query, args, err := sq.Update(models.Article{}.TableName()).
		SetMap(fields).
		Set("updated_at", time.Now()).
		Where(where).
		ToSql()
	if err != nil {
		return err
	}
	res := r.db.Exec(query, args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *articleRepository) SetShareToken(id, ownerID, token string) error {
	res := r.db.Model(&models.Article{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("share_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearShareToken is idempotent: revoking an absent token is not an error.
func (r *articleRepository) ClearShareToken(id, ownerID string) error {
	return r.db.Model(&models.Article{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("share_token", nil).Error
}

func (r *articleRepository) Delete(id, ownerID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Article{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
