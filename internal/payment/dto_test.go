package payment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/payment"
)

var _ = Describe("CreatePaymentDTO", func() {
	It("accepts a transaction id", func() {
		dto := payment.CreatePaymentDTO{TransactionID: "txn-1"}
		Expect(dto.Validate()).To(BeNil())
	})

	It("rejects a missing transaction id", func() {
		dto := payment.CreatePaymentDTO{}

		appErr := dto.Validate()
		Expect(appErr).ToNot(BeNil())
		Expect(appErr.Code).To(Equal(errors.ErrCodeValidationFailed))
	})
})
