package services

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"writium/config"
	"writium/models"
	"writium/repositories"
)

type AuthService interface {
	// Login signs a token for the given email, provisioning the user on
	// first sight. There is no password; identity is asserted upstream.
	Login(email string) (*models.AuthResponse, error)
	GetUserByID(id string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) AuthService {
	return &authService{userRepo: users}
}

func (s *authService) Login(email string) (*models.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrorValidation{Message: "Email is required"}
	}

	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{
			Email:       email,
			DisplayName: displayNameFromEmail(email),
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *authService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrorNotFound{Message: "User not found"}
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.DisplayName,
		"exp":     now.Add(config.JWTExpiration).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

func displayNameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	return models.TruncateChars(local, models.DisplayNameMaxLen)
}
