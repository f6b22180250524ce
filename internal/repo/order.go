package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danuart/invitation-shop/internal/models"
)

// CreateOrder persists the order together with its initial guest list in one
// transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, guests []models.Guest) (*models.Order, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range guests {
			guests[i].OrderID = order.ID
			if err := tx.Create(&guests[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Guests = guests
	return order, nil
}

// GetOrderRow loads the bare order row without associations, for ownership
// and status checks before any mutation.
func (r *GormRepo) GetOrderRow(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Template").
		Preload("Guests").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Template").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) RecentOrders(ctx context.Context, userID uint, n int) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Template").
		Order("created_at DESC").
		Limit(n).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveOrder writes the mutated order row and, when guests is non-nil,
// replaces the guest list wholesale, all in one transaction. Associations are
// never written through Save; the guest replacement is explicit
// delete-then-insert.
func (r *GormRepo) SaveOrder(ctx context.Context, order *models.Order, guests []models.Guest) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}
		if guests != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.Guest{}).Error; err != nil {
				return err
			}
			for i := range guests {
				guests[i].OrderID = order.ID
				if err := tx.Create(&guests[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteOrder removes the order and its guests. Guests are deleted explicitly
// so the cascade holds even on databases without enforced foreign keys.
func (r *GormRepo) DeleteOrder(ctx context.Context, orderID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.Guest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, orderID).Error
	})
}

func (r *GormRepo) GuestsForOrder(ctx context.Context, orderID uint) ([]models.Guest, error) {
	var guests []models.Guest
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}
