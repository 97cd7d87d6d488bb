package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
)

// ExtractionRepository is append-only storage for extraction attempts.
type ExtractionRepository interface {
	Save(ctx context.Context, extraction *entity.Extraction) error
	FindLatest(ctx context.Context, requestID uuid.UUID, kind entity.ExtractionKind) (*entity.Extraction, error)
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.Extraction, error)
}
