package postgres

import (
	"time"

	"github.com/boostify/storefront/internal/auth"
	"gorm.io/gorm"
)

// UserRepository implements auth.UserRepository using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) auth.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(email string) (*auth.UserInfo, error) {
	var user auth.UserInfo
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(userID int64) (*auth.UserInfo, error) {
	var user auth.UserInfo
	err := r.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *auth.UserInfo) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return r.db.Create(user).Error
}

func (r *UserRepository) GetPermissions(userID int64) ([]string, error) {
	var names []string
	err := r.db.Table("permissions").
		Select("permissions.name").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
