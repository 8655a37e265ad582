package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment on an article. AuthorDisplay is a snapshot of the author's name at
// post time, never a live lookup against the users table.
type Comment struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	ArticleID     string    `json:"article_id" gorm:"size:36;index;not null"`
	UserID        string    `json:"user_id" gorm:"size:36;not null"`
	AuthorDisplay string    `json:"author_display" gorm:"size:200"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	ParentID      *string   `json:"parent_id" gorm:"size:36"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "write_article_comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
