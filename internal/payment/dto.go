package payment

import (
	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/core/common/validation"
)

type CreatePaymentDTO struct {
	TransactionID string `json:"transactionId"`
}

func (d *CreatePaymentDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("transactionId", d.TransactionID).Required()

	return validator.Validate()
}

// CreatePaymentResponse carries the gateway redirect for the client.
type CreatePaymentResponse struct {
	URL           string `json:"url"`
	TransactionID string `json:"transactionId"`
}

const (
	CallbackStatusSuccess = "success"
	CallbackStatusFailed  = "failed"
)
