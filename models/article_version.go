package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxVersionsPerArticle caps the history kept per article; the oldest
// snapshots beyond the cap are pruned after each new snapshot.
const MaxVersionsPerArticle = 100

// ArticleVersion is an immutable snapshot of an article's mutable fields,
// captured immediately before each update.
type ArticleVersion struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	ArticleID  string        `json:"article_id" gorm:"size:36;index;not null"`
	Title      string        `json:"title" gorm:"size:500"`
	Content    string        `json:"content" gorm:"type:text"`
	References ReferenceList `json:"references_json" gorm:"column:references_json;type:jsonb"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (ArticleVersion) TableName() string {
	return "write_article_versions"
}

func (v *ArticleVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.References == nil {
		v.References = ReferenceList{}
	}
	return nil
}
