package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
)

type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.NotificationLog, int64, error)
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormNotificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.NotificationLog, int64, error) {
	var logs []models.NotificationLog
	var total int64

	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	query := r.db.WithContext(ctx).
		Model(&models.NotificationLog{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, total, err
}
