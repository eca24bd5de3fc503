package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// CartRepository defines the interface for cart data access. Mutations are
// expected to run inside Transaction with the cart row locked, so concurrent
// add/increment/decrement calls for one user serialize instead of losing
// updates.
type CartRepository interface {
	Transaction(ctx context.Context, fn func(CartRepository) error) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemsByID(ctx context.Context, itemIDs []uuid.UUID) error
	DeleteItemsByCartID(ctx context.Context, cartID uuid.UUID) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) Transaction(ctx context.Context, fn func(CartRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormCartRepository{db: tx})
	})
}

func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUserIDForUpdate locks the cart row for the duration of the enclosing
// transaction.
func (r *GormCartRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *GormCartRepository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormCartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

// DeleteItemsByID removes exactly the given lines. Checkout uses this so a
// line added concurrently with the snapshot read survives in the cart
// instead of being silently discarded.
func (r *GormCartRepository) DeleteItemsByID(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id IN ?", itemIDs).Error
}

func (r *GormCartRepository) DeleteItemsByCartID(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
