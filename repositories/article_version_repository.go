package repositories

import (
	"errors"

	"gorm.io/gorm"

	"writium/models"
)

type ArticleVersionRepository interface {
	// SnapshotAndPrune copies the article's current mutable fields into a new
	// version row, then deletes everything beyond the max most recent
	// versions. Runs in a single transaction.
	SnapshotAndPrune(articleID string, max int) error
	ListByArticle(articleID string, limit int) ([]models.ArticleVersion, error)
	Get(articleID, versionID string) (*models.ArticleVersion, error)
	Delete(articleID, versionID string) error
	ClearExceptLatest(articleID string) error
	CountByArticle(articleID string) (int64, error)
}

type articleVersionRepository struct {
	db *gorm.DB
}

func NewArticleVersionRepository(db *gorm.DB) ArticleVersionRepository {
	return &articleVersionRepository{db: db}
}

func (r *articleVersionRepository) SnapshotAndPrune(articleID string, max int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, "id = ?", articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		version := models.ArticleVersion{
			ArticleID:  article.ID,
			Title:      article.Title,
			Content:    article.Content,
			References: article.References,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ArticleVersion{}).
			Where("article_id = ?", articleID).
			Count(&count).Error; err != nil {
			return err
		}
		if count <= int64(max) {
			return nil
		}

		keep := tx.Model(&models.ArticleVersion{}).
			Select("id").
			Where("article_id = ?", articleID).
			Order("created_at DESC").
			Limit(max)
		return tx.
			Where("article_id = ? AND id NOT IN (?)", articleID, keep).
			Delete(&models.ArticleVersion{}).Error
	})
}

func (r *articleVersionRepository) ListByArticle(articleID string, limit int) ([]models.ArticleVersion, error) {
	var versions []models.ArticleVersion
	err := r.db.
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Limit(limit).
		Find(&versions).Error
	return versions, err
}

func (r *articleVersionRepository) Get(articleID, versionID string) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := r.db.First(&version, "id = ? AND article_id = ?", versionID, articleID).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *articleVersionRepository) Delete(articleID, versionID string) error {
	res := r.db.
		Where("id = ? AND article_id = ?", versionID, articleID).
		Delete(&models.ArticleVersion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *articleVersionRepository) ClearExceptLatest(articleID string) error {
	keep := r.db.Model(&models.ArticleVersion{}).
		Select("id").
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Limit(1)
	return r.db.
		Where("article_id = ? AND id NOT IN (?)", articleID, keep).
		Delete(&models.ArticleVersion{}).Error
}

func (r *articleVersionRepository) CountByArticle(articleID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Count(&count).Error
	return count, err
}
