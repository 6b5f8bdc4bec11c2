package affiliate

import "time"

// CommissionPercent is the referrer's cut of every successfully paid order.
const CommissionPercent = 10

type Affiliate struct {
	ID                int64      `gorm:"primaryKey" json:"id"`
	UserID            int64      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	ReferralCode      string     `gorm:"column:referral_code;uniqueIndex;not null" json:"referral_code"`
	RequestedEarnings int64      `gorm:"column:requested_earnings;default:0" json:"requested_earnings"`
	TotalPaid         int64      `gorm:"column:total_paid;default:0" json:"total_paid"`
	LastPaidAt        *time.Time `gorm:"column:last_paid_at" json:"last_paid_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}

func (a *Affiliate) HasPayableEarnings() bool {
	return a.RequestedEarnings > 0
}

// PayoutRequest is the admin view of an affiliate awaiting payout, with the
// recipient address resolved from the owning user.
type PayoutRequest struct {
	Affiliate
	Email string `json:"email"`
}
