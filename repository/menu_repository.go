package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// MenuRepository is the read-only catalog lookup used by cart and browse
// paths. Catalog CRUD is owned elsewhere.
type MenuRepository interface {
	FindByID(ctx context.Context, menuItemID uuid.UUID) (*models.MenuItem, error)
	FindAll(ctx context.Context, page, limit int) ([]models.MenuItem, int64, error)
}

type GormMenuRepository struct {
	db *gorm.DB
}

func NewGormMenuRepository(db *gorm.DB) MenuRepository {
	return &GormMenuRepository{db: db}
}

func (r *GormMenuRepository) FindByID(ctx context.Context, menuItemID uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", menuItemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormMenuRepository) FindAll(ctx context.Context, page, limit int) ([]models.MenuItem, int64, error) {
	var items []models.MenuItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("available = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
