package affiliate_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/affiliate"
	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/paymentgateway"
)

func TestAffiliateService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Affiliate Service Suite")
}

type mockAffiliateRepository struct {
	affiliates map[int64]*affiliate.Affiliate
	byCode     map[string]*affiliate.Affiliate
	byUser     map[int64]*affiliate.Affiliate
	emails     map[int64]string
	referrers  map[int64]*string
	nextID     int64
}

func newMockAffiliateRepository() *mockAffiliateRepository {
	return &mockAffiliateRepository{
		affiliates: make(map[int64]*affiliate.Affiliate),
		byCode:     make(map[string]*affiliate.Affiliate),
		byUser:     make(map[int64]*affiliate.Affiliate),
		emails:     make(map[int64]string),
		referrers:  make(map[int64]*string),
		nextID:     1,
	}
}

func (m *mockAffiliateRepository) Create(a *affiliate.Affiliate) error {
	a.ID = m.nextID
	m.nextID++
	m.affiliates[a.ID] = a
	m.byCode[a.ReferralCode] = a
	m.byUser[a.UserID] = a
	return nil
}

func (m *mockAffiliateRepository) GetByID(id int64) (*affiliate.Affiliate, error) {
	a, ok := m.affiliates[id]
	if !ok {
		return nil, errors.ErrAffiliateNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAffiliateRepository) GetByUserID(userID int64) (*affiliate.Affiliate, error) {
	a, ok := m.byUser[userID]
	if !ok {
		return nil, errors.ErrAffiliateNotFound
	}
	return a, nil
}

func (m *mockAffiliateRepository) GetByReferralCode(code string) (*affiliate.Affiliate, error) {
	a, ok := m.byCode[code]
	if !ok {
		return nil, errors.ErrAffiliateNotFound
	}
	return a, nil
}

func (m *mockAffiliateRepository) GetPayoutRequests(limit, offset int) ([]*affiliate.PayoutRequest, error) {
	var result []*affiliate.PayoutRequest
	for _, a := range m.affiliates {
		if a.RequestedEarnings > 0 {
			result = append(result, &affiliate.PayoutRequest{Affiliate: *a, Email: m.emails[a.ID]})
		}
	}
	return result, nil
}

func (m *mockAffiliateRepository) GetRecipientEmail(affiliateID int64) (string, error) {
	return m.emails[affiliateID], nil
}

func (m *mockAffiliateRepository) AddEarnings(affiliateID int64, amount int64) error {
	m.affiliates[affiliateID].RequestedEarnings += amount
	return nil
}

func (m *mockAffiliateRepository) SettlePayout(affiliateID int64, amount int64, paidAt time.Time) (bool, error) {
	a := m.affiliates[affiliateID]
	if a.RequestedEarnings != amount {
		return false, nil
	}
	a.RequestedEarnings = 0
	a.TotalPaid += amount
	a.LastPaidAt = &paidAt
	return true, nil
}

func (m *mockAffiliateRepository) GetReferrerCodeForUser(userID int64) (*string, error) {
	return m.referrers[userID], nil
}

var _ = Describe("AffiliateService", func() {
	var (
		svc    *affiliate.Service
		repo   *mockAffiliateRepository
		gw     *paymentgateway.Mock
		bus    *events.EventBus
		logger *slog.Logger
		ctx    context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockAffiliateRepository()
		bus = events.NewEventBus(logger)
		gw = paymentgateway.NewMock(paymentgateway.Config{Provider: "mock", Enabled: true}, logger)
		ctx = context.Background()
		svc = affiliate.NewService(repo, gw, bus, logger)
	})

	AfterEach(func() {
		gw.Shutdown()
	})

	Describe("GetOrCreateForUser", func() {
		It("creates a profile with a referral code on first access", func() {
			aff, err := svc.GetOrCreateForUser(10)
			Expect(err).ToNot(HaveOccurred())
			Expect(aff.ReferralCode).To(HaveLen(8))

			again, err := svc.GetOrCreateForUser(10)
			Expect(err).ToNot(HaveOccurred())
			Expect(again.ID).To(Equal(aff.ID))
			Expect(again.ReferralCode).To(Equal(aff.ReferralCode))
		})
	})

	Describe("commission accrual", func() {
		It("credits the referrer when a referred customer's payment completes", func() {
			referrer, _ := svc.GetOrCreateForUser(10)
			code := referrer.ReferralCode
			repo.referrers[20] = &code
			svc.RegisterSubscribers(bus)

			event := events.NewPaymentCompletedEvent(1, 1, 20, "txn-1", 10000, "gw-1")
			Expect(bus.PublishSync(ctx, event)).To(Succeed())

			updated, _ := repo.GetByID(referrer.ID)
			Expect(updated.RequestedEarnings).To(Equal(int64(1000)))
		})

		It("ignores payments from customers without a referrer", func() {
			referrer, _ := svc.GetOrCreateForUser(10)
			svc.RegisterSubscribers(bus)

			event := events.NewPaymentCompletedEvent(1, 1, 20, "txn-1", 10000, "gw-1")
			Expect(bus.PublishSync(ctx, event)).To(Succeed())

			updated, _ := repo.GetByID(referrer.ID)
			Expect(updated.RequestedEarnings).To(BeZero())
		})
	})

	Describe("PayAffiliate", func() {
		var aff *affiliate.Affiliate

		BeforeEach(func() {
			aff, _ = svc.GetOrCreateForUser(10)
			repo.emails[aff.ID] = "partner@example.com"
		})

		It("refuses when there is nothing to pay out", func() {
			_, err := svc.PayAffiliate(ctx, aff.ID)
			Expect(err).To(Equal(errors.ErrNothingToPayout))
		})

		It("zeroes the balance and accumulates total paid on success", func() {
			Expect(repo.AddEarnings(aff.ID, 2500)).To(Succeed())

			paid, err := svc.PayAffiliate(ctx, aff.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(paid.RequestedEarnings).To(BeZero())
			Expect(paid.TotalPaid).To(Equal(int64(2500)))
			Expect(paid.LastPaidAt).ToNot(BeNil())
		})

		It("leaves the affiliate untouched when the gateway rejects the recipient", func() {
			Expect(repo.AddEarnings(aff.ID, 2500)).To(Succeed())
			repo.emails[aff.ID] = paymentgateway.FailureSimRecipient

			_, err := svc.PayAffiliate(ctx, aff.ID)
			Expect(err).To(HaveOccurred())

			unchanged, _ := repo.GetByID(aff.ID)
			Expect(unchanged.RequestedEarnings).To(Equal(int64(2500)))
			Expect(unchanged.TotalPaid).To(BeZero())
		})

		It("lists only affiliates with payable earnings", func() {
			other, _ := svc.GetOrCreateForUser(20)
			Expect(repo.AddEarnings(other.ID, 100)).To(Succeed())

			requests, err := svc.ListPayoutRequests(20, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].ID).To(Equal(other.ID))
		})
	})
})
