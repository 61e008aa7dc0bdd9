package repository

import (
	"tutorcal/cmd/internal/domain/entity"
	"errors"
	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(id uint) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// FindByUsername only returns active accounts. Soft-deleted rows stay in the
// table for referential history but must never authenticate.
func (u *DefaultUserRepository) FindByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := u.db.Where("username = ? AND deleted = ?", username, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (u *DefaultUserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (u *DefaultUserRepository) FindInstructors() ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.
		Where("is_instructor = ? AND deleted = ?", true, false).
		Order("last_name asc, first_name asc").
		Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) Save(user *entity.User) error {
	return u.db.Save(user).Error
}
