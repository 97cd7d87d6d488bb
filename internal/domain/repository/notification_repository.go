package repository

import (
	"context"

	"github.com/stashway/stashway-backend/internal/domain/entity"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	CreateCelebration(ctx context.Context, celebration *entity.Celebration) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
}
