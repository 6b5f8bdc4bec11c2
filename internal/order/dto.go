package order

import (
	"time"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/core/common/validation"
)

type CheckoutItemDTO struct {
	ServiceID int64  `json:"serviceId"`
	Quantity  int    `json:"quantity"`
	Link      string `json:"link,omitempty"`
}

type CheckoutDTO struct {
	Items []CheckoutItemDTO `json:"items"`
}

func (d *CheckoutDTO) Validate() *errors.AppError {
	if len(d.Items) == 0 {
		return errors.NewValidationError("checkout requires at least one item", errors.ErrCodeValidationFailed)
	}

	for _, item := range d.Items {
		if item.ServiceID <= 0 {
			return errors.NewValidationFieldError("serviceId", "service id is required", errors.ErrCodeValidationFailed)
		}
		if err := validation.ValidateQuantity(item.Quantity); err != nil {
			return err
		}
		if item.Link != "" {
			if err := validation.ValidateTargetLink(item.Link); err != nil {
				return err
			}
		}
	}

	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdateStatusDTO) Validate() *errors.AppError {
	if !IsValidStatus(d.Status) {
		return errors.NewValidationFieldError("status", "unknown order status", errors.ErrCodeValidationFailed)
	}
	return nil
}

type OrderResponse struct {
	ID            int64   `json:"id"`
	ServiceID     int64   `json:"service_id"`
	ServiceName   string  `json:"service_name"`
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Quantity      int     `json:"quantity"`
	TargetLink    *string `json:"target_link,omitempty"`
	TotalAmount   int64   `json:"total_amount"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

type CheckoutResponse struct {
	Orders []OrderResponse `json:"orders"`
}

func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		ServiceID:     o.ServiceID,
		ServiceName:   o.Details.ServiceName,
		TransactionID: o.TransactionID,
		Status:        o.Status,
		Quantity:      o.Quantity,
		TargetLink:    o.TargetLink,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		CreatedAt:     o.CreatedAt,
	}
}
