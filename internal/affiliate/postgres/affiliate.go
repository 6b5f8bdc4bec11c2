package postgres

import (
	"time"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/affiliate"
	"gorm.io/gorm"
)

// AffiliateRepository implements the affiliate.Repository interface using
// GORM.
type AffiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) affiliate.Repository {
	return &AffiliateRepository{db: db}
}

func (r *AffiliateRepository) Create(a *affiliate.Affiliate) error {
	return r.db.Create(a).Error
}

func (r *AffiliateRepository) GetByID(id int64) (*affiliate.Affiliate, error) {
	var a affiliate.Affiliate
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AffiliateRepository) GetByUserID(userID int64) (*affiliate.Affiliate, error) {
	var a affiliate.Affiliate
	err := r.db.Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AffiliateRepository) GetByReferralCode(code string) (*affiliate.Affiliate, error) {
	var a affiliate.Affiliate
	err := r.db.Where("referral_code = ?", code).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAffiliateNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AffiliateRepository) GetPayoutRequests(limit, offset int) ([]*affiliate.PayoutRequest, error) {
	var requests []*affiliate.PayoutRequest
	err := r.db.Table("affiliates").
		Select("affiliates.*, users.email AS email").
		Joins("JOIN users ON users.id = affiliates.user_id").
		Where("affiliates.requested_earnings > 0").
		Order("affiliates.requested_earnings DESC").
		Limit(limit).
		Offset(offset).
		Scan(&requests).Error
	return requests, err
}

func (r *AffiliateRepository) GetRecipientEmail(affiliateID int64) (string, error) {
	var email string
	err := r.db.Table("affiliates").
		Select("users.email").
		Joins("JOIN users ON users.id = affiliates.user_id").
		Where("affiliates.id = ?", affiliateID).
		Scan(&email).Error
	return email, err
}

func (r *AffiliateRepository) AddEarnings(affiliateID int64, amount int64) error {
	return r.db.Model(&affiliate.Affiliate{}).
		Where("id = ?", affiliateID).
		Updates(map[string]interface{}{
			"requested_earnings": gorm.Expr("requested_earnings + ?", amount),
			"updated_at":         time.Now(),
		}).Error
}

// SettlePayout zeroes the balance conditional on it still matching the sent
// amount, so a concurrent accrual is never silently wiped.
func (r *AffiliateRepository) SettlePayout(affiliateID int64, amount int64, paidAt time.Time) (bool, error) {
	result := r.db.Model(&affiliate.Affiliate{}).
		Where("id = ? AND requested_earnings = ?", affiliateID, amount).
		Updates(map[string]interface{}{
			"requested_earnings": 0,
			"total_paid":         gorm.Expr("total_paid + ?", amount),
			"last_paid_at":       paidAt,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AffiliateRepository) GetReferrerCodeForUser(userID int64) (*string, error) {
	var code *string
	err := r.db.Table("users").
		Select("referred_by").
		Where("id = ?", userID).
		Scan(&code).Error
	return code, err
}
