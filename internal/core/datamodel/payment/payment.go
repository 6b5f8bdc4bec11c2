package payment

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Payment struct {
	ID              int64          `gorm:"primaryKey"`
	OrderID         int64          `gorm:"column:order_id;not null"`
	UserID          int64          `gorm:"column:user_id;not null"`
	TransactionID   string         `gorm:"column:transaction_id;not null;uniqueIndex"`
	Amount          int64          `gorm:"column:amount;not null"`
	Currency        string         `gorm:"column:currency;default:USD"`
	Status          string         `gorm:"column:status;default:pending"`
	GatewayRef      *string        `gorm:"column:gateway_ref"`
	GatewayResponse datatypes.JSON `gorm:"column:gateway_response"`
	FailureReason   *string        `gorm:"column:failure_reason"`
	ProcessedAt     *time.Time     `gorm:"column:processed_at"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsFinal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}
