package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentCompletedEventType = "payment.completed"
	PaymentFailedEventType    = "payment.failed"
	PayoutSentEventType       = "affiliate.payout_sent"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID     int64
	OrderID       int64
	UserID        int64
	TransactionID string
	Amount        int64
	GatewayRef    string
}

func NewPaymentCompletedEvent(paymentID, orderID, userID int64, transactionID string, amount int64, gatewayRef string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      PaymentCompletedEventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"order_id":       orderID,
				"user_id":        userID,
				"transaction_id": transactionID,
				"amount":         amount,
				"gateway_ref":    gatewayRef,
			},
		},
		PaymentID:     paymentID,
		OrderID:       orderID,
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		GatewayRef:    gatewayRef,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     int64
	OrderID       int64
	UserID        int64
	TransactionID string
	Amount        int64
	FailureReason string
}

func NewPaymentFailedEvent(paymentID, orderID, userID int64, transactionID string, amount int64, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      PaymentFailedEventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"order_id":       orderID,
				"user_id":        userID,
				"transaction_id": transactionID,
				"amount":         amount,
				"failure_reason": failureReason,
			},
		},
		PaymentID:     paymentID,
		OrderID:       orderID,
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		FailureReason: failureReason,
	}
}

type PayoutSentEvent struct {
	BaseEvent
	AffiliateID int64
	UserID      int64
	Amount      int64
	GatewayRef  string
}

func NewPayoutSentEvent(affiliateID, userID, amount int64, gatewayRef string) *PayoutSentEvent {
	return &PayoutSentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      PayoutSentEventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"affiliate_id": affiliateID,
				"user_id":      userID,
				"amount":       amount,
				"gateway_ref":  gatewayRef,
			},
		},
		AffiliateID: affiliateID,
		UserID:      userID,
		Amount:      amount,
		GatewayRef:  gatewayRef,
	}
}
