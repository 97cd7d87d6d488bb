package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification represents a user inbox entry
type Notification struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string            `gorm:"size:64;not null;index" json:"user_id"`
	Type      string            `gorm:"size:50;not null" json:"type"`
	Payload   datatypes.JSONMap `json:"payload"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// Celebration represents a one-shot badge message
type Celebration struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string            `gorm:"size:64;not null;index" json:"user_id"`
	Title     string            `gorm:"size:120;not null" json:"title"`
	Message   string            `gorm:"not null" json:"message"`
	Badge     string            `gorm:"size:50" json:"badge"`
	Payload   datatypes.JSONMap `json:"payload"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Celebration) TableName() string {
	return "celebrations"
}
