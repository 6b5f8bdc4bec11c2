package order

import (
	"time"

	"gorm.io/datatypes"
)

type Order struct {
	ID            int64          `gorm:"primaryKey"`
	UserID        int64          `gorm:"column:user_id;not null;index"`
	ServiceID     int64          `gorm:"column:service_id;not null"`
	TransactionID string         `gorm:"column:transaction_id;uniqueIndex;not null"`
	Status        string         `gorm:"column:status;default:pending;index"`
	Quantity      int            `gorm:"column:quantity;not null"`
	TargetLink    *string        `gorm:"column:target_link"`
	TotalAmount   int64          `gorm:"column:total_amount;not null"`
	Currency      string         `gorm:"column:currency;default:USD"`
	Details       datatypes.JSON `gorm:"column:details"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
