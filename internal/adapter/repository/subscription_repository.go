package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/domain/model"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert keeps exactly one row per user
func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *entity.UserSubscription) error {
	row := &model.UserSubscription{
		UserID:    subscription.UserID,
		Plan:      subscription.Plan.String(),
		Status:    string(subscription.Status),
		StartedAt: subscription.StartedAt,
		EndsAt:    subscription.EndsAt,
		CreatedAt: subscription.UpdatedAt,
		UpdatedAt: subscription.UpdatedAt,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "status", "started_at", "ends_at", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to upsert subscription",
			zap.String("user_id", subscription.UserID),
			zap.String("plan", subscription.Plan.String()),
			zap.Error(err))
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// GetByUserID returns nil, nil when the user never had a plan
func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) (*entity.UserSubscription, error) {
	var row model.UserSubscription

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get subscription",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &entity.UserSubscription{
		UserID:    row.UserID,
		Plan:      entity.Plan(row.Plan),
		Status:    entity.SubscriptionStatus(row.Status),
		StartedAt: row.StartedAt,
		EndsAt:    row.EndsAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
