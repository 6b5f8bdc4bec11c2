package postgres

import (
	"time"

	errors "github.com/boostify/storefront/internal"
	orderDatamodel "github.com/boostify/storefront/internal/core/datamodel/order"
	"github.com/boostify/storefront/internal/order"
	"gorm.io/gorm"
)

// OrderRepository implements the order.Repository interface using GORM.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) order.Repository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *order.Order) error {
	model := order.ToDataModel(o)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// CreateBatch writes the whole cart inside a single transaction. A failed
// insert rolls back every order created before it.
func (r *OrderRepository) CreateBatch(orders []*order.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			model := order.ToDataModel(o)
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			o.ID = model.ID
			o.CreatedAt = model.CreatedAt
			o.UpdatedAt = model.UpdatedAt
		}
		return nil
	})
}

func (r *OrderRepository) GetByID(id int64) (*order.Order, error) {
	var model orderDatamodel.Order
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, err
	}
	return order.FromDataModel(&model), nil
}

func (r *OrderRepository) GetByTransactionID(transactionID string) (*order.Order, error) {
	var model orderDatamodel.Order
	err := r.db.Where("transaction_id = ?", transactionID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, err
	}
	return order.FromDataModel(&model), nil
}

func (r *OrderRepository) GetByUserID(userID int64, limit, offset int) ([]*order.Order, error) {
	var models []*orderDatamodel.Order
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

func (r *OrderRepository) GetAll(limit, offset int) ([]*order.Order, error) {
	var models []*orderDatamodel.Order
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

// UpdateStatusIf is the atomic unit of the status machine: the WHERE clause
// carries the expected current status, so a concurrent or repeated update
// matches zero rows instead of overwriting a later state.
func (r *OrderRepository) UpdateStatusIf(id int64, from, to string) (bool, error) {
	result := r.db.Model(&orderDatamodel.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OrderRepository) UpdateStatusByTransactionIf(transactionID, from, to string) (bool, error) {
	result := r.db.Model(&orderDatamodel.Order{}).
		Where("transaction_id = ? AND status = ?", transactionID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func fromDataModels(models []*orderDatamodel.Order) []*order.Order {
	orders := make([]*order.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, order.FromDataModel(m))
	}
	return orders
}
