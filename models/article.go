package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TitleMaxLen = 500

type Article struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	UserID     string        `json:"user_id" gorm:"size:36;index;not null"`
	ProjectID  *string       `json:"project_id" gorm:"size:36;index"`
	Title      string        `json:"title" gorm:"size:500;not null"`
	Content    string        `json:"content" gorm:"type:text"`
	TemplateID *string       `json:"template_id" gorm:"size:36"`
	References ReferenceList `json:"references_json" gorm:"column:references_json;type:jsonb"`
	ShareToken *string       `json:"share_token,omitempty" gorm:"uniqueIndex;size:64"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Article) TableName() string {
	return "write_articles"
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.References == nil {
		a.References = ReferenceList{}
	}
	return nil
}
