package postgres

import (
	"encoding/json"
	"time"

	errors "github.com/boostify/storefront/internal"
	paymentDatamodel "github.com/boostify/storefront/internal/core/datamodel/payment"
	"github.com/boostify/storefront/internal/payment"
	"gorm.io/gorm"
)

// PaymentRepository implements the payment.Repository interface using GORM.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *paymentDatamodel.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByTransactionID(transactionID string) (*paymentDatamodel.Payment, error) {
	var p paymentDatamodel.Payment
	err := r.db.Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByOrderID(orderID int64) (*paymentDatamodel.Payment, error) {
	var p paymentDatamodel.Payment
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) SetGatewayRef(id int64, gatewayRef string, gatewayResponse json.RawMessage) error {
	updates := map[string]interface{}{
		"gateway_ref": gatewayRef,
		"updated_at":  time.Now(),
	}
	if len(gatewayResponse) > 0 {
		updates["gateway_response"] = gatewayResponse
	}
	return r.db.Model(&paymentDatamodel.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SettleFromPending finalizes a payment with a conditional update keyed on
// the pending status. RowsAffected distinguishes a real settlement from a
// repeated delivery.
func (r *PaymentRepository) SettleFromPending(transactionID, status string, gatewayRef, failureReason *string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": now,
		"updated_at":   now,
	}
	if gatewayRef != nil {
		updates["gateway_ref"] = *gatewayRef
	}
	if failureReason != nil {
		updates["failure_reason"] = *failureReason
	}

	result := r.db.Model(&paymentDatamodel.Payment{}).
		Where("transaction_id = ? AND status = ?", transactionID, paymentDatamodel.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
