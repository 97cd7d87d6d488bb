package repository

import (
	"context"

	"github.com/stashway/stashway-backend/internal/domain/entity"
)

type SubscriptionRepository interface {
	// Upsert replaces the user's subscription row, creating it if missing.
	Upsert(ctx context.Context, subscription *entity.UserSubscription) error
	GetByUserID(ctx context.Context, userID string) (*entity.UserSubscription, error)
}
