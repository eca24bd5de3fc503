package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced    = "order.placed"
	EventPaymentSettled = "payment.settled"
)

// OrderEvent is the domain event published after an order commits or a
// settlement lands. Publishing is best-effort; consumers must tolerate
// duplicates.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       uuid.UUID `json:"order_id"`
	UserID        uuid.UUID `json:"user_id"`
	TotalAmount   int64     `json:"total_amount"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
