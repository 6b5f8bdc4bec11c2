package paymentgateway_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/paymentgateway"
)

func TestPaymentGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Gateway Suite")
}

var _ = Describe("Gateway selection", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	Context("when the provider is disabled", func() {
		It("still returns a gateway whose operations fail with the disabled error", func() {
			gw := paymentgateway.New(paymentgateway.Config{Provider: "payoneer", Enabled: false}, logger)

			_, err := gw.CreateIntent(context.Background(), paymentgateway.IntentRequest{
				TransactionID: "txn-1", Amount: 100, Currency: "USD",
			})
			Expect(err).To(Equal(errors.ErrGatewayDisabled))

			_, err = gw.SendPayout(context.Background(), paymentgateway.PayoutRequest{
				Recipient: "someone@example.com", Amount: 100, Currency: "USD",
			})
			Expect(err).To(Equal(errors.ErrGatewayDisabled))
		})
	})

	Context("when the provider is payoneer", func() {
		It("returns the payoneer adapter", func() {
			gw := paymentgateway.New(paymentgateway.Config{
				Provider: "payoneer", Enabled: true, APIURL: "https://api.example.com",
			}, logger)
			Expect(gw.Name()).To(Equal("payoneer"))
		})
	})
})

var _ = Describe("Mock gateway", func() {
	var (
		gw     *paymentgateway.Mock
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		gw = paymentgateway.NewMock(paymentgateway.Config{
			Provider:       "mock",
			Enabled:        true,
			WebhookURL:     "http://localhost:0/api/v1/payments/payoneer/callback",
			RequestTimeout: time.Second,
			MaxWorkers:     2,
			JobQueueSize:   4,
		}, logger)
	})

	AfterEach(func() {
		gw.Shutdown()
	})

	Describe("CreateIntent", func() {
		It("returns a local redirect URL and a gateway reference", func() {
			intent, err := gw.CreateIntent(context.Background(), paymentgateway.IntentRequest{
				TransactionID: "txn-1", Amount: 1499, Currency: "USD",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(intent.RedirectURL).To(ContainSubstring("txn-1"))
			Expect(intent.GatewayRef).To(HavePrefix("mock_"))
		})
	})

	Describe("SendPayout", func() {
		It("rejects the failure-simulation recipient", func() {
			_, err := gw.SendPayout(context.Background(), paymentgateway.PayoutRequest{
				Recipient: paymentgateway.FailureSimRecipient,
				Amount:    500,
				Currency:  "USD",
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := err.(*errors.AppError)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodePayoutRejected))
		})

		It("returns a reference for any other recipient", func() {
			result, err := gw.SendPayout(context.Background(), paymentgateway.PayoutRequest{
				Recipient: "partner@example.com",
				Amount:    500,
				Currency:  "USD",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Reference).To(HavePrefix("mock_payout_"))
			Expect(result.SentAt).ToNot(BeZero())
		})
	})
})
