package catalog

import (
	"time"
)

// Categories the storefront sells. Digital Library items carry a downloadable
// asset instead of a fulfillment target link.
const (
	CategoryFollowers      = "Followers"
	CategoryViews          = "Views"
	CategoryLikes          = "Likes"
	CategoryDigitalLibrary = "Digital Library"
)

// Service is a purchasable item in the catalog. PriceCents is the only
// authoritative price; client-submitted prices are never read.
type Service struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"column:name;not null"`
	Description string     `json:"description" gorm:"column:description"`
	PriceCents  int64      `json:"price_cents" gorm:"column:price_cents;not null"`
	Category    string     `json:"category" gorm:"column:category;not null"`
	ImageURL    *string    `json:"image_url,omitempty" gorm:"column:image_url"`
	AssetPath   *string    `json:"-" gorm:"column:asset_path"`
	IsActive    bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt   *time.Time `json:"-" gorm:"column:deleted_at;index"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) IsPurchasable() bool {
	return s.IsActive && s.DeletedAt == nil
}

func (s *Service) IsDigital() bool {
	return s.Category == CategoryDigitalLibrary
}

func (s *Service) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

func (s *Service) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
}
