package postgres

import (
	"github.com/boostify/storefront/internal/notification"
	"gorm.io/gorm"
)

// NotificationRepository implements the notification.Repository interface
// using GORM.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *notification.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) GetByUserID(userID int64, limit, offset int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}
