package entity

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// UserSubscription is the plan a user is currently entitled to.
type UserSubscription struct {
	UserID    string             `json:"user_id"`
	Plan      Plan               `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	StartedAt time.Time          `json:"started_at"`
	EndsAt    *time.Time         `json:"ends_at,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}
