package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem is a catalog entry. The cart and order paths only read it to
// resolve name and current price; catalog CRUD lives outside this service.
type MenuItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // in cents
	ImageURL    string         `json:"image_url"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
