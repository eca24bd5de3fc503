package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// PaymentRepository is the append-only store of settlement attempts. The
// unique index on (order_id, gateway_transaction_id) rejects a duplicate
// insert racing past the order row lock.
type PaymentRepository interface {
	Create(ctx context.Context, attempt *models.PaymentAttempt) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAttempt, error)
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("settled_at ASC").
		Find(&attempts).Error
	return attempts, err
}
