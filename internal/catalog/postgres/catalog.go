package postgres

import (
	"time"

	"github.com/boostify/storefront/internal/catalog"
	"gorm.io/gorm"
)

// CatalogRepository implements catalog.RepositoryAPI using GORM
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetAll(includeInactive bool) ([]*catalog.Service, error) {
	var services []*catalog.Service
	q := r.db.Where("deleted_at IS NULL")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("category ASC, name ASC").Find(&services).Error
	return services, err
}

func (r *CatalogRepository) GetByID(id int64) (*catalog.Service, error) {
	var svc catalog.Service
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *CatalogRepository) Create(svc *catalog.Service) error {
	return r.db.Create(svc).Error
}

func (r *CatalogRepository) Update(svc *catalog.Service) error {
	svc.UpdatedAt = time.Now()
	return r.db.Save(svc).Error
}

func (r *CatalogRepository) SoftDelete(id int64) error {
	now := time.Now()
	return r.db.Model(&catalog.Service{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"is_active":  false,
			"updated_at": now,
		}).Error
}
