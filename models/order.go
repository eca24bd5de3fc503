package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the order lifecycle state. Transitions are monotonic
// except cancellation on payment failure.
type OrderStatus string

const (
	OrderInitialized OrderStatus = "INITIALIZED"
	OrderConfirmed   OrderStatus = "CONFIRMED"
	OrderOnTheWay    OrderStatus = "ON_THE_WAY"
	OrderDelivered   OrderStatus = "DELIVERED"
	OrderCancelled   OrderStatus = "CANCELLED"
)

// PaymentStatus is strictly PENDING -> COMPLETED | FAILED, never reversed.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Terminal reports whether the payment status can never change again.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// orderTransitions lists the allowed order status moves.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderInitialized: {OrderConfirmed, OrderCancelled},
	OrderConfirmed:   {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay:    {OrderDelivered},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch OrderStatus(raw) {
	case OrderInitialized, OrderConfirmed, OrderOnTheWay, OrderDelivered, OrderCancelled:
		return OrderStatus(raw), true
	}
	return "", false
}

// Order is an immutable snapshot of a cart taken at checkout. Items and
// total are fixed at creation; only the status fields move afterwards.
type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderedAt     time.Time     `gorm:"not null" json:"ordered_at"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"` // in cents
	OrderStatus   OrderStatus   `gorm:"type:varchar(20);not null" json:"order_status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem carries the menu item snapshot copied from the cart line at
// checkout time; the catalog is never re-read afterwards.
type OrderItem struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID uuid.UUID `gorm:"type:uuid;not null" json:"menu_item_id"`
	Name       string    `gorm:"not null" json:"name"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Subtotal   int64     `gorm:"not null" json:"subtotal"`
}
