package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boostify/storefront/internal/core/events"
)

// Repository defines the data access methods for notifications.
type Repository interface {
	Create(n *Notification) error
	GetByUserID(userID int64, limit, offset int) ([]*Notification, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RegisterSubscribers attaches the notification emitter to the event bus.
// Only completed payments produce a notification; failures stay silent for
// the customer.
func (s *Service) RegisterSubscribers(bus *events.EventBus) {
	bus.Subscribe(events.PaymentCompletedEventType, s.onPaymentCompleted)
}

func (s *Service) onPaymentCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	n := &Notification{
		UserID:  completed.UserID,
		OrderID: completed.OrderID,
		Message: fmt.Sprintf("Payment received. Your order #%d is now being processed.", completed.OrderID),
	}

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to create notification",
			"error", err, "user_id", completed.UserID, "order_id", completed.OrderID)
		return err
	}

	s.logger.Info("notification created",
		"notification_id", n.ID,
		"user_id", completed.UserID,
		"order_id", completed.OrderID)
	return nil
}

func (s *Service) GetUserNotifications(userID int64, limit, offset int) ([]*Notification, error) {
	return s.repo.GetByUserID(userID, limit, offset)
}
