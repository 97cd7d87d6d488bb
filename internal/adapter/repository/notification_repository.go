package repository

import (
	"context"
	"fmt"

	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/domain/model"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB, logger *zap.Logger) domainRepo.NotificationRepository {
	return &notificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	row := &model.Notification{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Payload:   notification.Payload,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CreateCelebration(ctx context.Context, celebration *entity.Celebration) error {
	row := &model.Celebration{
		ID:        celebration.ID,
		UserID:    celebration.UserID,
		Title:     celebration.Title,
		Message:   celebration.Message,
		Badge:     celebration.Badge,
		Payload:   celebration.Payload,
		CreatedAt: celebration.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create celebration: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications first
func (r *notificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	var rows []model.Notification

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*entity.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, &entity.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Type:      row.Type,
			Payload:   row.Payload,
			ReadAt:    row.ReadAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return notifications, nil
}
