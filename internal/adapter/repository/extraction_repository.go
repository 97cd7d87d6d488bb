package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/domain/model"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type extractionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewExtractionRepository creates a new extraction repository
func NewExtractionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ExtractionRepository {
	return &extractionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *extractionRepository) Save(ctx context.Context, extraction *entity.Extraction) error {
	if extraction.ID == uuid.Nil {
		extraction.ID = uuid.New()
	}

	row := &model.PaymentExtraction{
		ID:            extraction.ID,
		RequestID:     extraction.RequestID,
		Kind:          string(extraction.Kind),
		Amount:        extraction.Amount,
		TransactionID: extraction.TransactionID,
		ReferenceCode: extraction.ReferenceCode,
		Timestamp:     extraction.Timestamp,
		Sender:        extraction.Sender,
		Receiver:      extraction.Receiver,
		ImagePath:     extraction.ImagePath,
		RawResponse:   extraction.RawResponse,
		CreatedAt:     extraction.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("Failed to save extraction",
			zap.String("request_id", extraction.RequestID.String()),
			zap.String("kind", string(extraction.Kind)),
			zap.Error(err))
		return fmt.Errorf("failed to save extraction: %w", err)
	}
	return nil
}

// FindLatest returns the newest extraction of the given kind, or nil
func (r *extractionRepository) FindLatest(ctx context.Context, requestID uuid.UUID, kind entity.ExtractionKind) (*entity.Extraction, error) {
	var row model.PaymentExtraction

	err := r.db.WithContext(ctx).
		Where("request_id = ? AND kind = ?", requestID, string(kind)).
		Order("created_at DESC, id DESC").
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest extraction",
			zap.String("request_id", requestID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}

	return extractionToEntity(&row), nil
}

func (r *extractionRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.Extraction, error) {
	var rows []model.PaymentExtraction

	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}

	extractions := make([]*entity.Extraction, 0, len(rows))
	for i := range rows {
		extractions = append(extractions, extractionToEntity(&rows[i]))
	}
	return extractions, nil
}

func extractionToEntity(row *model.PaymentExtraction) *entity.Extraction {
	return &entity.Extraction{
		ID:          row.ID,
		RequestID:   row.RequestID,
		Kind:        entity.ExtractionKind(row.Kind),
		ImagePath:   row.ImagePath,
		RawResponse: row.RawResponse,
		CreatedAt:   row.CreatedAt,
		ExtractedFields: entity.ExtractedFields{
			Amount:        row.Amount,
			TransactionID: row.TransactionID,
			ReferenceCode: row.ReferenceCode,
			Timestamp:     row.Timestamp,
			Sender:        row.Sender,
			Receiver:      row.Receiver,
		},
	}
}
