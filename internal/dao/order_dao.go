package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"gorm.io/gorm"
)

var ErrOrderStatusChanged = errors.New("order status changed")

// InsufficientStockError reports which product failed the conditional stock
// decrement inside a placement or restore transaction.
type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

type OrderDao struct {
	db *gorm.DB
}

func NewOrderDao(db *gorm.DB) *OrderDao {
	dao := &OrderDao{
		db: db,
	}
	dao.db.AutoMigrate(&model.Order{}, &model.OrderItem{})
	return dao
}

// PlaceOrder persists an order with its items and decrements stock for every
// line in a single transaction. Each decrement is conditional
// (stock >= quantity); a line that affects zero rows aborts the transaction,
// so concurrent placements can never drive stock negative.
func (d *OrderDao) PlaceOrder(ctx context.Context, order *model.Order, items []*model.OrderItem) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{ProductID: it.ProductID}
			}
			// keep the flag coherent with the counter
			if err := tx.Model(&model.Product{}).
				Where("id = ? AND stock = 0", it.ProductID).
				Update("in_stock", false).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, it := range items {
			it.OrderID = order.ID
		}
		return tx.CreateInBatches(items, len(items)).Error
	})
}

// GetOrderByID fetches a bare order row
func (d *OrderDao) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderWithItems fetches an order with its items and their product refs
func (d *OrderDao) GetOrderWithItems(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListUserOrders returns a page of the user's orders, newest first, with
// optional status filters
func (d *OrderDao) ListUserOrders(ctx context.Context, userID int64, orderStatus, paymentStatus string, page, pageSize int32) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * pageSize

	query := d.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if orderStatus != "" {
		query = query.Where("order_status = ?", orderStatus)
	}
	if paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(int(pageSize)).
		Offset(int(offset)).
		Find(&orders).Error

	return orders, total, err
}

// CountItemsByOrder aggregates item counts for a set of orders in one query
func (d *OrderDao) CountItemsByOrder(ctx context.Context, orderIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(orderIDs))
	if len(orderIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		OrderID int64
		N       int64
	}{}
	err := d.db.WithContext(ctx).Model(&model.OrderItem{}).
		Select("order_id, COUNT(*) AS n").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.OrderID] = r.N
	}
	return counts, nil
}

// UpdateOrderFields applies a partial update to an order
func (d *OrderDao) UpdateOrderFields(ctx context.Context, orderID int64, updates map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// LinkGuestOrders attaches all guest orders with the given email to the user
// and clears the guest flag. Running it twice is a no-op the second time.
func (d *OrderDao) LinkGuestOrders(ctx context.Context, email string, userID int64) (int64, error) {
	res := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("is_guest = ? AND guest_email = ?", true, email).
		Updates(map[string]interface{}{
			"user_id":  userID,
			"is_guest": false,
		})
	return res.RowsAffected, res.Error
}

// CancelOrder flips a pending/processing order to cancelled and restores the
// stock of its items, all in one transaction. Returns ErrOrderStatusChanged
// when the order is no longer cancellable (also makes repeat cancels safe:
// stock is restored at most once).
func (d *OrderDao) CancelOrder(ctx context.Context, orderID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND order_status IN ?", orderID, []string{model.OrderStatusPending, model.OrderStatusProcessing}).
			Update("order_status", model.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderStatusChanged
		}

		var items []model.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Model(&model.Product{}).
				Where("id = ?", it.ProductID).
				Updates(map[string]interface{}{
					"stock":    gorm.Expr("stock + ?", it.Quantity),
					"in_stock": true,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteOrder removes an order and its items
func (d *OrderDao) DeleteOrder(ctx context.Context, orderID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", orderID).Delete(&model.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
