package entity

import (
	"time"

	"github.com/google/uuid"
)

const NotificationPlanPaidSuccess = "plan_paid_success"

// Notification is a user-visible inbox entry.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Celebration is a badge-style message shown once after an achievement.
type Celebration struct {
	ID        uuid.UUID              `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Badge     string                 `json:"badge"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// Identity is a user record from the identity service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
