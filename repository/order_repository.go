package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// OrderRepository defines the interface for order data access. Transaction
// binds a PaymentRepository to the same database transaction, so a
// settlement's attempt row and order transition commit or roll back as one.
type OrderRepository interface {
	Transaction(ctx context.Context, fn func(OrderRepository, PaymentRepository) error) error
	CreateWithItems(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	Save(ctx context.Context, order *models.Order) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(OrderRepository, PaymentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormOrderRepository{db: tx}, &GormPaymentRepository{db: tx})
	})
}

// CreateWithItems persists the order and its items atomically. No reader
// ever observes an order with a subset of its items.
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row so a settlement callback and a
// concurrent initialization for the same order cannot both win.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", order.ID).
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindAll retrieves all orders with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}
