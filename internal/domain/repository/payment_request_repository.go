package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
)

// PaymentRequestRepository persists payment requests and guards their status.
type PaymentRequestRepository interface {
	// Create inserts a new request. A reference code collision returns a
	// DUPLICATE_REFERENCE PaymentRequestError.
	Create(ctx context.Context, req *entity.PaymentRequest, event *entity.PaymentEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error)
	FindByUserID(ctx context.Context, userID string) ([]*entity.PaymentRequest, error)
	List(ctx context.Context, filter entity.PaymentRequestFilter) ([]*entity.PaymentRequest, int64, error)

	// Transition moves the request to "to" only if its current status is one of
	// "from". When no row matches it returns a PaymentStatusError. A non-nil event
	// is appended in the same transaction.
	Transition(ctx context.Context, id uuid.UUID, from []entity.PaymentStatus, to entity.PaymentStatus, changes entity.StatusChanges, event *entity.PaymentEvent) error

	// RecordError sets last_error without touching status.
	RecordError(ctx context.Context, id uuid.UUID, message string, event *entity.PaymentEvent) error
}
