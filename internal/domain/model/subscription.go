package model

import (
	"time"
)

// UserSubscription represents the plan a user is entitled to
type UserSubscription struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string     `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Plan      string     `gorm:"size:20;not null" json:"plan"`
	Status    string     `gorm:"size:20;not null" json:"status"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
