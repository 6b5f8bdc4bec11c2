package catalog

import (
	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/core/common/validation"
)

type CreateServiceDTO struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents" validate:"required,min=1"`
	Category    string `json:"category" validate:"required"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (dto CreateServiceDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", dto.Name).Required().MaxLength(200)
	validator.Field("description", dto.Description).MaxLength(2000)
	validator.Field("price_cents", dto.PriceCents).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	validator.Field("category", dto.Category).Required().MaxLength(100)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateServiceDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (dto UpdateServiceDTO) Validate() error {
	validator := validation.NewValidator()

	if dto.Name != nil {
		validator.Field("name", *dto.Name).Required().MaxLength(200)
	}
	if dto.Description != nil {
		validator.Field("description", *dto.Description).MaxLength(2000)
	}
	if dto.PriceCents != nil {
		validator.Field("price_cents", *dto.PriceCents).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	}
	if dto.Category != nil {
		validator.Field("category", *dto.Category).Required().MaxLength(100)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ServiceResponse is the public listing shape. DisplayPrice is the price
// converted to the requested display currency when rates are available.
type ServiceResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	PriceCents      int64    `json:"price_cents"`
	Category        string   `json:"category"`
	ImageURL        *string  `json:"image_url,omitempty"`
	DisplayPrice    *float64 `json:"display_price,omitempty"`
	DisplayCurrency string   `json:"display_currency,omitempty"`
}

func (s *Service) ToResponse() ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		PriceCents:  s.PriceCents,
		Category:    s.Category,
		ImageURL:    s.ImageURL,
	}
}
