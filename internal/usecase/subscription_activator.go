package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
)

// SubscriptionActivator grants the purchased plan once a payment is verified.
type SubscriptionActivator struct {
	subscriptions domainRepo.SubscriptionRepository
	now           func() time.Time
	logger        *zap.Logger
}

func NewSubscriptionActivator(subscriptions domainRepo.SubscriptionRepository, logger *zap.Logger) *SubscriptionActivator {
	return &SubscriptionActivator{
		subscriptions: subscriptions,
		now:           time.Now,
		logger:        logger,
	}
}

// Activate sets the user's plan to active from now with no end date.
func (a *SubscriptionActivator) Activate(ctx context.Context, userID string, plan entity.Plan) (*entity.UserSubscription, error) {
	now := a.now().UTC()
	sub := &entity.UserSubscription{
		UserID:    userID,
		Plan:      plan,
		Status:    entity.SubscriptionActive,
		StartedAt: now,
		EndsAt:    nil,
		UpdatedAt: now,
	}

	if err := a.subscriptions.Upsert(ctx, sub); err != nil {
		a.logger.Error("Failed to activate subscription",
			zap.String("user_id", userID),
			zap.String("plan", plan.String()),
			zap.String("step", "subscription_upsert"),
			zap.String("status", "failed"),
			zap.Error(err))
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	a.logger.Info("Subscription activated",
		zap.String("user_id", userID),
		zap.String("plan", plan.String()),
		zap.String("step", "subscription_upsert"),
		zap.String("status", "success"))

	return sub, nil
}

// GetSubscription returns the user's current plan, or ErrSubscriptionNotFound.
func (a *SubscriptionActivator) GetSubscription(ctx context.Context, userID string) (*entity.UserSubscription, error) {
	sub, err := a.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domainErrors.ErrSubscriptionNotFound
	}
	return sub, nil
}
