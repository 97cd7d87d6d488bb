package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PaymentEvent represents an append-only audit entry for a payment request
type PaymentEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID         `gorm:"type:uuid;not null;index:idx_payment_events_request_created,priority:1" json:"request_id"`
	ActorID   string            `gorm:"size:64;not null" json:"actor_id"`
	ActorRole string            `gorm:"size:20;not null" json:"actor_role"`
	EventType string            `gorm:"size:50;not null;index" json:"event_type"`
	Detail    datatypes.JSONMap `json:"detail,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index:idx_payment_events_request_created,priority:2" json:"created_at"`

	// Relations
	Request *PaymentRequest `gorm:"foreignKey:RequestID" json:"-"`
}

// TableName specifies the table name for GORM
func (PaymentEvent) TableName() string {
	return "payment_events"
}
