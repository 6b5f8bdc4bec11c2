package payment_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/boostify/storefront/internal/auth"
	paymentDatamodel "github.com/boostify/storefront/internal/core/datamodel/payment"
	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/order"
	"github.com/boostify/storefront/internal/payment"
)

var _ = Describe("PaymentHandler", func() {
	var (
		handler *payment.Handler
		repo    *mockPaymentRepository
		orders  *mockOrders
		logger  *slog.Logger
	)

	const txn = "txn-http-1"

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockPaymentRepository()
		orders = newMockOrders()
		bus := events.NewEventBus(logger)
		svc := payment.NewService(repo, orders, &mockGateway{}, bus, logger)
		handler = payment.NewHandler(svc, "http://storefront.test/payment-result")

		orders.orders[txn] = &order.Order{
			ID:            1,
			UserID:        10,
			TransactionID: txn,
			Status:        order.StatusPending,
			TotalAmount:   1499,
			Currency:      "USD",
		}
		Expect(svc.RegisterPending(1, 10, txn, 1499, "USD")).To(Succeed())
	})

	Describe("Callback", func() {
		It("rejects a request without a transaction id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/payoneer/callback", nil)
			rec := httptest.NewRecorder()

			handler.Callback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("settles the payment and redirects the browser to the result page", func() {
			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/payments/payoneer/callback?txId="+txn+"&refId=gw-1&status=success", nil)
			rec := httptest.NewRecorder()

			handler.Callback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("http://storefront.test/payment-result"))

			p, _ := repo.GetByTransactionID(txn)
			Expect(p.Status).To(Equal(paymentDatamodel.StatusSuccess))
		})

		It("returns 404 for an unknown transaction", func() {
			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/payments/payoneer/callback?txId=ghost&status=success", nil)
			rec := httptest.NewRecorder()

			handler.Callback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("answers with a plain acknowledgement when no result page is configured", func() {
			bus := events.NewEventBus(logger)
			svc := payment.NewService(repo, orders, &mockGateway{}, bus, logger)
			bare := payment.NewHandler(svc, "")

			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/payments/payoneer/callback?txId="+txn+"&status=failed", nil)
			rec := httptest.NewRecorder()

			bare.Callback(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("received"))
		})
	})

	Describe("CreatePayment", func() {
		It("rejects an unauthenticated request", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/payoneer/create",
				strings.NewReader(`{"transactionId":"`+txn+`"}`))
			rec := httptest.NewRecorder()

			handler.CreatePayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns the gateway redirect URL for the order owner", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/payoneer/create",
				strings.NewReader(`{"transactionId":"`+txn+`"}`))
			req = req.WithContext(auth.ContextWithUser(context.Background(), &auth.User{ID: 10}))
			rec := httptest.NewRecorder()

			handler.CreatePayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(txn))
		})

		It("rejects a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/payoneer/create",
				strings.NewReader("{not json"))
			req = req.WithContext(auth.ContextWithUser(context.Background(), &auth.User{ID: 10}))
			rec := httptest.NewRecorder()

			handler.CreatePayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
