package repositories

import (
	"gorm.io/gorm"

	"writium/models"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	// ListByArticle returns comments oldest first. Replies whose parent was
	// deleted are still returned; orphan handling is a presentation concern.
	ListByArticle(articleID string) ([]models.Comment, error)
	Get(articleID, commentID string) (*models.Comment, error)
	Delete(articleID, commentID string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *commentRepository) ListByArticle(articleID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Get(articleID, commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, "id = ? AND article_id = ?", commentID, articleID).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Delete(articleID, commentID string) error {
	return r.db.
		Where("id = ? AND article_id = ?", commentID, articleID).
		Delete(&models.Comment{}).Error
}
