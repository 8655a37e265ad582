package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"writium/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// EnsureExists provisions a user row for the given actor id when absent;
	// an existing row is left untouched.
	EnsureExists(id, email, displayName string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EnsureExists(id, email, displayName string) error {
	email = models.TruncateChars(models.SafeGuestEmail(id, email), models.EmailMaxLen)
	if displayName == "" {
		displayName = "Guest"
	}
	displayName = models.TruncateChars(displayName, models.DisplayNameMaxLen)
	user := models.User{ID: id, Email: email, DisplayName: displayName}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&user).Error
}
