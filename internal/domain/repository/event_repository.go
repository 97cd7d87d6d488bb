package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
)

// PaymentEventRepository is the append-only audit log.
type PaymentEventRepository interface {
	Append(ctx context.Context, event *entity.PaymentEvent) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.PaymentEvent, error)
}
