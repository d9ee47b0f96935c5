package service

import (
	"errors"

	"github.com/acquisitions/api/database"
	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/util/crypto"

	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles account registration and credential checks.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates a user account and signs a token for it. New accounts
// always get the user role; only admins can promote afterwards.
func (s *AuthService) Register(name, email, password string) (*model.User, string, error) {
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        normalizeEmail(email),
		Role:         model.RoleUser,
		PasswordHash: hash,
	}
	if err := s.db.Create(user).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Sign(principalOf(user))
	if err != nil {
		return nil, "", err
	}
	logger.Infof("user %s registered", user.Email)
	return user, token, nil
}

// Login verifies the credentials and signs a token on success.
func (s *AuthService) Login(email, password string) (*model.User, string, error) {
	var user model.User
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if database.IsNotFound(err) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(principalOf(&user))
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func principalOf(u *model.User) model.Principal {
	return model.Principal{Id: u.Id, Email: u.Email, Role: u.Role}
}
