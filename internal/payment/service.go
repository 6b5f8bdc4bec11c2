package payment

import (
	"context"
	"encoding/json"
	"log/slog"

	errors "github.com/boostify/storefront/internal"
	paymentDatamodel "github.com/boostify/storefront/internal/core/datamodel/payment"
	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/order"
	"github.com/boostify/storefront/internal/paymentgateway"
)

// Repository defines the data access methods for payments.
type Repository interface {
	Create(p *paymentDatamodel.Payment) error
	GetByTransactionID(transactionID string) (*paymentDatamodel.Payment, error)
	GetByOrderID(orderID int64) (*paymentDatamodel.Payment, error)
	SetGatewayRef(id int64, gatewayRef string, gatewayResponse json.RawMessage) error
	// SettleFromPending finalizes a pending payment and reports whether the
	// row changed. A payment already settled matches zero rows.
	SettleFromPending(transactionID, status string, gatewayRef, failureReason *string) (bool, error)
}

// OrderAPI is the slice of the order module the payment flow needs.
type OrderAPI interface {
	GetByTransactionID(transactionID string) (*order.Order, error)
	ApplyPaymentResult(transactionID string, succeeded bool) (bool, error)
}

type Service struct {
	repo    Repository
	orders  OrderAPI
	gateway paymentgateway.Gateway
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, orders OrderAPI, gateway paymentgateway.Gateway, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		gateway: gateway,
		bus:     bus,
		logger:  logger,
	}
}

// RegisterPending creates the pending payment row that accompanies a new
// order at checkout.
func (s *Service) RegisterPending(orderID, userID int64, transactionID string, amount int64, currency string) error {
	p := &paymentDatamodel.Payment{
		OrderID:       orderID,
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		Currency:      currency,
		Status:        paymentDatamodel.StatusPending,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create payment record", "error", err, "order_id", orderID)
		return err
	}

	s.logger.Info("payment record created",
		"payment_id", p.ID, "order_id", orderID, "transaction_id", transactionID)
	return nil
}

// CreateIntent opens a gateway payment session for a pending order. The
// amount always comes from the stored order, never from the client.
func (s *Service) CreateIntent(ctx context.Context, userID int64, dto CreatePaymentDTO) (*CreatePaymentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByTransactionID(dto.TransactionID)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		s.logger.Warn("payment intent for someone else's order",
			"transaction_id", dto.TransactionID, "user_id", userID)
		return nil, errors.ErrUnauthorizedAccess
	}

	if o.Status != order.StatusPending {
		return nil, errors.NewConflictError("order is not awaiting payment", errors.ErrCodeInvalidTransition)
	}

	p, err := s.repo.GetByTransactionID(dto.TransactionID)
	if err != nil {
		return nil, err
	}
	if p.IsFinal() {
		return nil, errors.NewConflictError("payment is already settled", errors.ErrCodeInvalidTransition)
	}

	intent, err := s.gateway.CreateIntent(ctx, paymentgateway.IntentRequest{
		TransactionID: o.TransactionID,
		Amount:        o.TotalAmount,
		Currency:      o.Currency,
		Description:   o.Details.ServiceName,
	})
	if err != nil {
		s.logger.Error("gateway intent failed",
			"error", err, "transaction_id", o.TransactionID, "provider", s.gateway.Name())
		return nil, err
	}

	if intent.GatewayRef != "" {
		raw, _ := json.Marshal(map[string]string{"redirect_url": intent.RedirectURL, "token": intent.GatewayRef})
		if err := s.repo.SetGatewayRef(p.ID, intent.GatewayRef, raw); err != nil {
			s.logger.Error("failed to store gateway reference", "error", err, "payment_id", p.ID)
		}
	}

	s.logger.Info("payment intent created",
		"transaction_id", o.TransactionID,
		"amount", o.TotalAmount,
		"provider", s.gateway.Name())

	return &CreatePaymentResponse{
		URL:           intent.RedirectURL,
		TransactionID: o.TransactionID,
	}, nil
}

// HandleCallback applies a gateway notification. The conditional update from
// pending is the atomic unit: a repeated delivery for a settled payment
// matches zero rows, so nothing moves and no second notification goes out.
func (s *Service) HandleCallback(ctx context.Context, transactionID, gatewayRef, status string) error {
	p, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		s.logger.Warn("callback for unknown transaction", "transaction_id", transactionID)
		return err
	}

	succeeded := status == CallbackStatusSuccess

	var ref *string
	if gatewayRef != "" {
		ref = &gatewayRef
	}

	var applied bool
	if succeeded {
		applied, err = s.repo.SettleFromPending(transactionID, paymentDatamodel.StatusSuccess, ref, nil)
	} else {
		reason := "gateway reported status " + status
		applied, err = s.repo.SettleFromPending(transactionID, paymentDatamodel.StatusFailed, ref, &reason)
	}
	if err != nil {
		s.logger.Error("failed to settle payment", "error", err, "transaction_id", transactionID)
		return errors.NewInternalError("failed to settle payment", err)
	}

	if !applied {
		s.logger.Info("duplicate callback ignored",
			"transaction_id", transactionID, "current_status", p.Status)
		return nil
	}

	if _, err := s.orders.ApplyPaymentResult(transactionID, succeeded); err != nil {
		s.logger.Error("failed to move order after payment settlement",
			"error", err, "transaction_id", transactionID)
	}

	refValue := ""
	if ref != nil {
		refValue = *ref
	}

	if succeeded {
		event := events.NewPaymentCompletedEvent(p.ID, p.OrderID, p.UserID, transactionID, p.Amount, refValue)
		if err := s.bus.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to publish payment completed event",
				"error", err, "transaction_id", transactionID)
		}
	} else {
		event := events.NewPaymentFailedEvent(p.ID, p.OrderID, p.UserID, transactionID, p.Amount, status)
		if err := s.bus.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to publish payment failed event",
				"error", err, "transaction_id", transactionID)
		}
	}

	s.logger.Info("payment settled",
		"transaction_id", transactionID,
		"succeeded", succeeded,
		"gateway_ref", refValue)

	return nil
}

// GetByOrderID returns the payment attached to an order.
func (s *Service) GetByOrderID(orderID int64) (*paymentDatamodel.Payment, error) {
	return s.repo.GetByOrderID(orderID)
}
