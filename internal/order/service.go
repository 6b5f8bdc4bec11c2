package order

import (
	"log/slog"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/catalog"
	"github.com/google/uuid"
)

// Repository defines the data access methods for orders.
type Repository interface {
	Create(o *Order) error
	// CreateBatch persists a whole cart in one transaction. Either every
	// order lands or none do.
	CreateBatch(orders []*Order) error
	GetByID(id int64) (*Order, error)
	GetByTransactionID(transactionID string) (*Order, error)
	GetByUserID(userID int64, limit, offset int) ([]*Order, error)
	GetAll(limit, offset int) ([]*Order, error)
	// UpdateStatusIf moves an order from one status to another and reports
	// whether the row actually changed. A stale `from` matches zero rows.
	UpdateStatusIf(id int64, from, to string) (bool, error)
	UpdateStatusByTransactionIf(transactionID, from, to string) (bool, error)
}

// CatalogAPI is the slice of the catalog the checkout flow needs.
type CatalogAPI interface {
	GetPurchasable(id int64) (*catalog.Service, error)
	GetByID(id int64) (*catalog.Service, error)
}

// PaymentRegistrar creates the pending payment row that accompanies every
// new order.
type PaymentRegistrar interface {
	RegisterPending(orderID, userID int64, transactionID string, amount int64, currency string) error
}

type Service struct {
	repo     Repository
	catalog  CatalogAPI
	payments PaymentRegistrar
	logger   *slog.Logger
}

func NewService(repo Repository, catalogAPI CatalogAPI, payments PaymentRegistrar, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalogAPI,
		payments: payments,
		logger:   logger,
	}
}

// SetPaymentRegistrar finishes wiring when the payment module is constructed
// after the order module.
func (s *Service) SetPaymentRegistrar(payments PaymentRegistrar) {
	s.payments = payments
}

// Checkout validates every item against the live catalog, recomputes the
// total from stored prices and creates one pending order per item, each with
// its own server-generated transaction id and a pending payment row. Any
// client-supplied price is ignored.
func (s *Service) Checkout(userID int64, dto CheckoutDTO) ([]*Order, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("checkout validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	// Resolve all items before persisting anything so a bad item fails the
	// whole checkout.
	services := make([]*catalog.Service, len(dto.Items))
	for i, item := range dto.Items {
		svc, err := s.catalog.GetPurchasable(item.ServiceID)
		if err != nil {
			s.logger.Warn("checkout rejected: service unavailable",
				"service_id", item.ServiceID, "user_id", userID, "error", err)
			return nil, err
		}
		services[i] = svc
	}

	orders := make([]*Order, 0, len(dto.Items))
	for i, item := range dto.Items {
		svc := services[i]

		var link *string
		if item.Link != "" {
			l := item.Link
			link = &l
		}

		o := &Order{
			UserID:        userID,
			ServiceID:     svc.ID,
			TransactionID: uuid.NewString(),
			Status:        StatusPending,
			Quantity:      item.Quantity,
			TargetLink:    link,
			TotalAmount:   svc.PriceCents * int64(item.Quantity),
			Currency:      "USD",
			Details: Details{
				ServiceName:    svc.Name,
				Category:       svc.Category,
				UnitPriceCents: svc.PriceCents,
			},
		}

		orders = append(orders, o)
	}

	// One transaction for the whole cart, so a failure on a later item does
	// not leave earlier orders behind.
	if err := s.repo.CreateBatch(orders); err != nil {
		s.logger.Error("failed to create orders", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to create order", err)
	}

	for _, o := range orders {
		if err := s.payments.RegisterPending(o.ID, userID, o.TransactionID, o.TotalAmount, o.Currency); err != nil {
			s.logger.Error("failed to create payment record for order",
				"error", err, "order_id", o.ID, "transaction_id", o.TransactionID)
			return nil, errors.NewInternalError("failed to create payment record", err)
		}

		s.logger.Info("order created",
			"order_id", o.ID,
			"user_id", userID,
			"service_id", o.ServiceID,
			"transaction_id", o.TransactionID,
			"total_amount", o.TotalAmount)
	}

	return orders, nil
}

func (s *Service) GetOrderByID(id, userID int64, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		s.logger.Warn("unauthorized access to order", "order_id", id, "user_id", userID)
		return nil, errors.ErrUnauthorizedAccess
	}

	return o, nil
}

func (s *Service) GetByTransactionID(transactionID string) (*Order, error) {
	return s.repo.GetByTransactionID(transactionID)
}

func (s *Service) GetUserOrders(userID int64, limit, offset int) ([]*Order, error) {
	return s.repo.GetByUserID(userID, limit, offset)
}

func (s *Service) GetAllOrders(limit, offset int) ([]*Order, error) {
	return s.repo.GetAll(limit, offset)
}

// UpdateStatus applies an admin status change, validated against the status
// machine. The conditional update keeps concurrent changes from moving the
// order backward.
func (s *Service) UpdateStatus(orderID int64, newStatus string) (*Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, newStatus) {
		s.logger.Warn("invalid order status transition",
			"order_id", orderID, "from", o.Status, "to", newStatus)
		return nil, errors.ErrInvalidTransition
	}

	applied, err := s.repo.UpdateStatusIf(orderID, o.Status, newStatus)
	if err != nil {
		return nil, errors.NewInternalError("failed to update order status", err)
	}
	if !applied {
		// Someone else moved the order between our read and write.
		return nil, errors.ErrInvalidTransition
	}

	s.logger.Info("order status updated", "order_id", orderID, "from", o.Status, "to", newStatus)

	return s.repo.GetByID(orderID)
}

// ApplyPaymentResult transitions a pending order according to the payment
// outcome. It reports whether the transition applied; a repeat delivery for
// an already-settled order applies nothing.
func (s *Service) ApplyPaymentResult(transactionID string, succeeded bool) (bool, error) {
	target := StatusProcessing
	if !succeeded {
		target = StatusFailed
	}

	applied, err := s.repo.UpdateStatusByTransactionIf(transactionID, StatusPending, target)
	if err != nil {
		return false, err
	}

	if applied {
		s.logger.Info("order moved by payment result", "transaction_id", transactionID, "status", target)
	}

	return applied, nil
}

// GetDownload returns the digital asset path for an order once it is
// completed. The caller must own the order, and the purchased service must be
// a digital-library product with an uploaded asset.
func (s *Service) GetDownload(orderID, userID int64) (string, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return "", err
	}

	if o.UserID != userID {
		s.logger.Warn("unauthorized download attempt", "order_id", orderID, "user_id", userID)
		return "", errors.ErrUnauthorizedAccess
	}

	if !o.IsDownloadable() {
		return "", errors.NewValidationError("order is not completed yet", errors.ErrCodeDownloadNotReady)
	}

	svc, err := s.catalog.GetByID(o.ServiceID)
	if err != nil {
		return "", err
	}

	if !svc.IsDigital() || svc.AssetPath == nil || *svc.AssetPath == "" {
		return "", errors.NewValidationError("service has no downloadable asset", errors.ErrCodeNotDigitalProduct)
	}

	return *svc.AssetPath, nil
}
