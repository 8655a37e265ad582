package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a JSON array column of strings. Malformed stored data decodes
// to an empty list instead of failing the row scan.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	*l = StringList{}
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	*l = out
	return nil
}

// Project is owned by an external collaborator surface; this core only
// consults its owner and team-member emails for access decisions.
type Project struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	UserID      string     `json:"user_id" gorm:"size:36;index;not null"`
	Name        string     `json:"name" gorm:"size:255"`
	TeamMembers StringList `json:"team_members" gorm:"type:jsonb"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Project) TableName() string {
	return "projects"
}
