package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmailMaxLen       = 255
	DisplayNameMaxLen = 200
)

type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	DisplayName string    `json:"display_name" gorm:"size:200"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// GuestEmail is the placeholder email sent by the proxy for guest actors.
const GuestEmail = "guest@local"

// SafeGuestEmail rewrites the shared guest placeholder into a per-actor
// address so the users.email unique index holds.
func SafeGuestEmail(id, email string) string {
	if email == GuestEmail {
		return fmt.Sprintf("guest-%s@local", id)
	}
	return email
}

// Actor is the identity making a request: an authenticated user or a guest.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
