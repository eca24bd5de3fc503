package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLog records every outbound notification, sent or failed.
type NotificationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Recipient string    `gorm:"not null" json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	Channel   string    `gorm:"type:varchar(10);not null" json:"channel"`
	Status    string    `gorm:"type:varchar(10);not null" json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
