package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentAttempt is one settlement outcome for an order. Rows are appended,
// never mutated; together they form the audit trail behind the order's
// current payment status. The unique index on (order_id, transaction id)
// keeps webhook redelivery from duplicating rows.
type PaymentAttempt struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID              uuid.UUID `gorm:"type:uuid;not null;index:idx_order_txn,unique" json:"order_id"`
	Amount               int64     `gorm:"not null" json:"amount"`
	GatewayTransactionID *string   `gorm:"index:idx_order_txn,unique" json:"gateway_transaction_id,omitempty"`
	Success              bool      `gorm:"not null" json:"success"`
	FailureReason        *string   `json:"failure_reason,omitempty"`
	SettledAt            time.Time `gorm:"not null" json:"settled_at"`
}
