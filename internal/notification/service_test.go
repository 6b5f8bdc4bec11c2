package notification_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/notification"
)

func TestNotificationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Service Suite")
}

type mockNotificationRepository struct {
	notifications []*notification.Notification
	nextID        int64
}

func (m *mockNotificationRepository) Create(n *notification.Notification) error {
	m.nextID++
	n.ID = m.nextID
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) GetByUserID(userID int64, limit, offset int) ([]*notification.Notification, error) {
	var result []*notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

var _ = Describe("NotificationService", func() {
	var (
		svc    *notification.Service
		repo   *mockNotificationRepository
		bus    *events.EventBus
		logger *slog.Logger
		ctx    context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockNotificationRepository{}
		bus = events.NewEventBus(logger)
		ctx = context.Background()
		svc = notification.NewService(repo, logger)
		svc.RegisterSubscribers(bus)
	})

	It("creates one notification per completed payment", func() {
		event := events.NewPaymentCompletedEvent(1, 42, 10, "txn-1", 1499, "gw-1")
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		Expect(repo.notifications).To(HaveLen(1))
		Expect(repo.notifications[0].UserID).To(Equal(int64(10)))
		Expect(repo.notifications[0].OrderID).To(Equal(int64(42)))
		Expect(repo.notifications[0].Message).To(ContainSubstring("#42"))
	})

	It("stays silent on failed payments", func() {
		event := events.NewPaymentFailedEvent(1, 42, 10, "txn-1", 1499, "declined")
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		Expect(repo.notifications).To(BeEmpty())
	})

	It("returns only the owner's notifications", func() {
		Expect(bus.PublishSync(ctx, events.NewPaymentCompletedEvent(1, 42, 10, "txn-1", 1499, ""))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewPaymentCompletedEvent(2, 43, 20, "txn-2", 999, ""))).To(Succeed())

		mine, err := svc.GetUserNotifications(10, 20, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(mine).To(HaveLen(1))
		Expect(mine[0].OrderID).To(Equal(int64(42)))
	})
})
