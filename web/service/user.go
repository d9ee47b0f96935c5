package service

import (
	"errors"
	"strings"

	"github.com/acquisitions/api/database"
	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/logger"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// UserUpdate is the partial field set applied by Update. Nil fields are
// left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *model.Role
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Role == nil
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns all users in store order.
func (s *UserService) List() ([]model.User, error) {
	var users []model.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetById(id int) (*model.User, error) {
	var user model.User
	err := s.db.First(&user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies the provided fields and stamps updated_at. The existence
// check and the mutation are two store operations; a row deleted in between
// surfaces as ErrUserNotFound from the second, which is acceptable.
func (s *UserService) Update(id int, up UserUpdate) (*model.User, error) {
	if _, err := s.GetById(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if up.Name != nil {
		fields["name"] = strings.TrimSpace(*up.Name)
	}
	if up.Email != nil {
		fields["email"] = normalizeEmail(*up.Email)
	}
	if up.Role != nil {
		fields["role"] = *up.Role
	}

	result := s.db.Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if database.IsDuplicate(result.Error) {
			return nil, ErrEmailTaken
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	updated, err := s.GetById(id)
	if err != nil {
		return nil, err
	}
	logger.Infof("user %s updated", updated.Email)
	return updated, nil
}

// Delete removes the user and returns the deleted record.
func (s *UserService) Delete(id int) (*model.User, error) {
	user, err := s.GetById(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(&model.User{}, id).Error; err != nil {
		return nil, err
	}
	logger.Infof("user %s deleted", user.Email)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
