package catalog

import (
	"log/slog"
	"time"

	errors "github.com/boostify/storefront/internal"
)

type RepositoryAPI interface {
	GetAll(includeInactive bool) ([]*Service, error)
	GetByID(id int64) (*Service, error)
	Create(service *Service) error
	Update(service *Service) error
	SoftDelete(id int64) error
}

// RateConverter converts a USD cent amount into a display currency. Served by
// the rates cache; nil rate lookups fall back to the base price only.
type RateConverter interface {
	Convert(amountCents int64, currency string) (float64, error)
}

// CatalogService handles catalog business logic. The entity in this package is
// the storefront Service, so the domain service carries the longer name.
type CatalogService struct {
	repo   RepositoryAPI
	rates  RateConverter
	logger *slog.Logger
}

func NewCatalogService(repo RepositoryAPI, rates RateConverter, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		rates:  rates,
		logger: logger,
	}
}

// ListActive returns purchasable services, optionally with prices converted to
// a display currency. Conversion failures degrade to base prices; the listing
// never fails because the rate feed is down.
func (s *CatalogService) ListActive(displayCurrency string) ([]ServiceResponse, error) {
	services, err := s.repo.GetAll(false)
	if err != nil {
		s.logger.Error("failed to list services", "error", err)
		return nil, err
	}

	responses := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		if !svc.IsPurchasable() {
			continue
		}
		resp := svc.ToResponse()
		if displayCurrency != "" && displayCurrency != "USD" && s.rates != nil {
			if converted, err := s.rates.Convert(svc.PriceCents, displayCurrency); err == nil {
				resp.DisplayPrice = &converted
				resp.DisplayCurrency = displayCurrency
			} else {
				s.logger.Warn("display currency conversion unavailable",
					"currency", displayCurrency, "error", err)
			}
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

func (s *CatalogService) GetByID(id int64) (*Service, error) {
	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrServiceNotFound
	}
	return svc, nil
}

// GetPurchasable is the checkout-side lookup: it only returns services that
// can currently be ordered.
func (s *CatalogService) GetPurchasable(id int64) (*Service, error) {
	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrServiceNotFound
	}
	if !svc.IsPurchasable() {
		return nil, errors.ErrServiceInactive
	}
	return svc, nil
}

func (s *CatalogService) ListAll() ([]*Service, error) {
	return s.repo.GetAll(true)
}

func (s *CatalogService) CreateService(dto CreateServiceDTO) (*Service, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	svc := &Service{
		Name:        dto.Name,
		Description: dto.Description,
		PriceCents:  dto.PriceCents,
		Category:    dto.Category,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if dto.IsActive != nil {
		svc.IsActive = *dto.IsActive
	}

	if err := s.repo.Create(svc); err != nil {
		s.logger.Error("failed to create service", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("service created", "service_id", svc.ID, "name", svc.Name, "price_cents", svc.PriceCents)
	return svc, nil
}

func (s *CatalogService) UpdateService(id int64, dto UpdateServiceDTO) (*Service, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrServiceNotFound
	}

	if dto.Name != nil {
		svc.Name = *dto.Name
	}
	if dto.Description != nil {
		svc.Description = *dto.Description
	}
	if dto.PriceCents != nil {
		svc.PriceCents = *dto.PriceCents
	}
	if dto.Category != nil {
		svc.Category = *dto.Category
	}
	if dto.IsActive != nil {
		svc.IsActive = *dto.IsActive
	}
	svc.UpdatedAt = time.Now()

	if err := s.repo.Update(svc); err != nil {
		s.logger.Error("failed to update service", "error", err, "service_id", id)
		return nil, err
	}

	return svc, nil
}

func (s *CatalogService) DeleteService(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrServiceNotFound
	}
	return s.repo.SoftDelete(id)
}

// SetImage records the public URL of an uploaded service image.
func (s *CatalogService) SetImage(id int64, imageURL string) (*Service, error) {
	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrServiceNotFound
	}

	svc.ImageURL = &imageURL
	svc.UpdatedAt = time.Now()

	if err := s.repo.Update(svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// SetAsset records the on-disk path of an uploaded digital product file.
func (s *CatalogService) SetAsset(id int64, assetPath string) (*Service, error) {
	svc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrServiceNotFound
	}

	svc.AssetPath = &assetPath
	svc.UpdatedAt = time.Now()

	if err := s.repo.Update(svc); err != nil {
		return nil, err
	}
	return svc, nil
}
