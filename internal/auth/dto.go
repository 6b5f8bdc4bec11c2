package auth

import (
	"github.com/boostify/storefront/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (dto LoginDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("email", dto.Email).Required()
	validator.Field("password", dto.Password).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Referral string `json:"referral,omitempty"`
}

func (dto RegisterDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("email", dto.Email).Required().MaxLength(254)
	validator.Field("name", dto.Name).Required().MaxLength(100)
	validator.Field("password", dto.Password).Required().MinLength(8).MaxLength(72)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (dto RefreshTokenDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("refresh_token", dto.RefreshToken).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
