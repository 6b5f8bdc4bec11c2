package notification

import "time"

// Notification is a user-facing message created when a payment settles
// successfully. Checkout never creates one.
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	OrderID   int64     `gorm:"column:order_id;not null" json:"order_id"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
