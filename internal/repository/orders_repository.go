package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/models"
	"storefront-service/internal/tracing"
)

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// CreateOrder inserts a submitted order
func (r *OrdersRepository) CreateOrder(ctx context.Context, order *models.Order) (err error) {
	ctx, span := tracing.Start(ctx, "OrdersRepository.CreateOrder")
	defer func() { tracing.End(span, err) }()

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return classify("create order", err)
	}
	return nil
}

// InsertOrdersIfAbsent inserts orders, skipping ids already stored. Used to
// deliver the local queue, where a previous flush may have partially landed.
func (r *OrdersRepository) InsertOrdersIfAbsent(ctx context.Context, orders []models.Order) (err error) {
	if len(orders) == 0 {
		return nil
	}
	ctx, span := tracing.Start(ctx, "OrdersRepository.InsertOrdersIfAbsent")
	defer func() { tracing.End(span, err) }()

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&orders).Error; err != nil {
		return classify("flush orders", err)
	}
	return nil
}

// ListOrders returns every order, newest first
func (r *OrdersRepository) ListOrders(ctx context.Context) (orders []models.Order, err error) {
	ctx, span := tracing.Start(ctx, "OrdersRepository.ListOrders")
	defer func() { tracing.End(span, err) }()

	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&orders).Error; err != nil {
		return nil, classify("list orders", err)
	}
	return orders, nil
}

// GetOrder loads one order by id
func (r *OrdersRepository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, classify("get order", err)
	}
	return &order, nil
}

// UpdateOrderStatus patches the status column only. A missing id yields
// ErrNotFound.
func (r *OrdersRepository) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (err error) {
	ctx, span := tracing.Start(ctx, "OrdersRepository.UpdateOrderStatus")
	defer func() { tracing.End(span, err) }()

	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return classify("update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update order status: order %s: %w", id, ErrNotFound)
	}
	return nil
}
