package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/domain/model"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentEventRepository creates the append-only audit log repository
func NewPaymentEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentEventRepository {
	return &paymentEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentEventRepository) Append(ctx context.Context, event *entity.PaymentEvent) error {
	row := eventToModel(event)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("Failed to append payment event",
			zap.String("request_id", event.RequestID.String()),
			zap.String("event_type", string(event.EventType)),
			zap.Error(err))
		return fmt.Errorf("failed to append payment event: %w", err)
	}
	event.ID = row.ID
	return nil
}

// FindByRequestID returns the request's events in insertion order
func (r *paymentEventRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.PaymentEvent, error) {
	var rows []model.PaymentEvent

	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list payment events",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}

	events := make([]*entity.PaymentEvent, 0, len(rows))
	for i := range rows {
		events = append(events, eventToEntity(&rows[i]))
	}
	return events, nil
}

func eventToModel(event *entity.PaymentEvent) *model.PaymentEvent {
	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &model.PaymentEvent{
		ID:        id,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		ActorRole: string(event.ActorRole),
		EventType: string(event.EventType),
		Detail:    event.Detail,
		CreatedAt: event.CreatedAt,
	}
}

func eventToEntity(row *model.PaymentEvent) *entity.PaymentEvent {
	return &entity.PaymentEvent{
		ID:        row.ID,
		RequestID: row.RequestID,
		ActorID:   row.ActorID,
		ActorRole: entity.ActorRole(row.ActorRole),
		EventType: entity.PaymentEventType(row.EventType),
		Detail:    row.Detail,
		CreatedAt: row.CreatedAt,
	}
}
