package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's mutable pre-checkout selection. One cart per user,
// created lazily on first add.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// Total is the cart total in cents, always computed from the current lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal
	}
	return total
}

// FindItem returns the line for the given menu item, or nil.
func (c *Cart) FindItem(menuItemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartItem is one cart line. Name and UnitPrice are captured when the item
// is first added and are never refreshed from the catalog for the cart's
// lifetime. A cart never holds two lines for the same menu item.
type CartItem struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID     uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_menu,unique" json:"cart_id"`
	MenuItemID uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_menu,unique" json:"menu_item_id"`
	Name       string    `gorm:"not null" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`
	Subtotal   int64     `gorm:"not null" json:"subtotal"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Recalculate recomputes the line subtotal from quantity and captured price.
func (i *CartItem) Recalculate() {
	i.Subtotal = i.UnitPrice * int64(i.Quantity)
}
