package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/domain/model"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SecretSealer encrypts values at rest, bound to associated data.
type SecretSealer interface {
	Seal(plaintext, associatedData string) (string, error)
	Open(sealed, associatedData string) (string, error)
}

type paymentRequestRepository struct {
	db     *gorm.DB
	sealer SecretSealer
	logger *zap.Logger
}

// NewPaymentRequestRepository creates a new payment request repository.
// Reference secrets are sealed with the request ID as associated data.
func NewPaymentRequestRepository(db *gorm.DB, sealer SecretSealer, logger *zap.Logger) domainRepo.PaymentRequestRepository {
	return &paymentRequestRepository{
		db:     db,
		sealer: sealer,
		logger: logger,
	}
}

// Create inserts the request and its creation event atomically
func (r *paymentRequestRepository) Create(ctx context.Context, req *entity.PaymentRequest, event *entity.PaymentEvent) error {
	row, err := r.entityToModel(req)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainErrors.NewDuplicateReferenceError(err)
			}
			r.logger.Error("Failed to create payment request",
				zap.String("request_id", req.ID.String()),
				zap.String("user_id", req.UserID),
				zap.Error(err))
			return fmt.Errorf("failed to create payment request: %w", err)
		}

		if event != nil {
			if err := tx.Create(eventToModel(event)).Error; err != nil {
				return fmt.Errorf("failed to append payment event: %w", err)
			}
		}
		return nil
	})
}

// FindByID returns nil, nil when the request does not exist
func (r *paymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error) {
	var row model.PaymentRequest

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment request",
			zap.String("request_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}

	return r.modelToEntity(&row), nil
}

// FindByUserID lists a user's requests, newest first
func (r *paymentRequestRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.PaymentRequest, error) {
	var rows []model.PaymentRequest

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list payment requests for user",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}

	return r.modelsToEntities(rows), nil
}

// List returns one page of requests matching the filter and the total count
func (r *paymentRequestRepository) List(ctx context.Context, filter entity.PaymentRequestFilter) ([]*entity.PaymentRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.PaymentRequest{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment requests: %w", err)
	}

	var rows []model.PaymentRequest
	err := query.
		Order("created_at DESC").
		Offset(filter.CalculateOffset()).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list payment requests", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list payment requests: %w", err)
	}

	return r.modelsToEntities(rows), total, nil
}

// Transition applies a conditional status update. The WHERE clause carries
// the expected current status so concurrent writers cannot both succeed.
func (r *paymentRequestRepository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from []entity.PaymentStatus,
	to entity.PaymentStatus,
	changes entity.StatusChanges,
	event *entity.PaymentEvent,
) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": changes.At,
	}
	switch to {
	case entity.StatusUserUploaded:
		updates["user_uploaded_at"] = changes.At
		if changes.ScreenshotPath != nil {
			updates["user_screenshot_path"] = *changes.ScreenshotPath
		}
	case entity.StatusAdminUploaded:
		updates["admin_uploaded_at"] = changes.At
		if changes.ScreenshotPath != nil {
			updates["admin_screenshot_path"] = *changes.ScreenshotPath
		}
	case entity.StatusVerified:
		updates["verified_at"] = changes.At
	case entity.StatusRejected:
		updates["rejected_at"] = changes.At
	case entity.StatusExpired:
		updates["expired_at"] = changes.At
	}
	if changes.ClearLastError {
		updates["last_error"] = nil
	}
	if changes.LastError != nil {
		updates["last_error"] = *changes.LastError
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.PaymentRequest{}).
			Where("id = ? AND status IN ?", id, statuses).
			Updates(updates)
		if result.Error != nil {
			r.logger.Error("Failed to transition payment request",
				zap.String("request_id", id.String()),
				zap.String("to", string(to)),
				zap.Error(result.Error))
			return fmt.Errorf("failed to transition payment request: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			var current model.PaymentRequest
			err := tx.Select("status").Where("id = ?", id).First(&current).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.NewRequestNotFoundError(id.String())
			}
			if err != nil {
				return fmt.Errorf("failed to read payment request status: %w", err)
			}
			return domainErrors.NewPaymentStatusError(id.String(), current.Status, string(to))
		}

		if event != nil {
			if err := tx.Create(eventToModel(event)).Error; err != nil {
				return fmt.Errorf("failed to append payment event: %w", err)
			}
		}
		return nil
	})
}

// RecordError stores a diagnostic without touching status
func (r *paymentRequestRepository) RecordError(ctx context.Context, id uuid.UUID, message string, event *entity.PaymentEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.PaymentRequest{}).
			Where("id = ?", id).
			Update("last_error", message)
		if result.Error != nil {
			return fmt.Errorf("failed to record payment request error: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.NewRequestNotFoundError(id.String())
		}

		if event != nil {
			if err := tx.Create(eventToModel(event)).Error; err != nil {
				return fmt.Errorf("failed to append payment event: %w", err)
			}
		}
		return nil
	})
}

func (r *paymentRequestRepository) entityToModel(req *entity.PaymentRequest) (*model.PaymentRequest, error) {
	sealed, err := r.sealer.Seal(req.ReferenceSecret, req.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to seal reference secret: %w", err)
	}

	return &model.PaymentRequest{
		ID:                    req.ID,
		UserID:                req.UserID,
		Plan:                  req.Plan.String(),
		AmountExpected:        req.AmountExpected,
		Currency:              req.Currency,
		ReferenceCode:         req.ReferenceCode,
		ReferenceSecretSealed: sealed,
		GeneratedMessage:      req.GeneratedMessage,
		PayeeIdentifier:       req.PayeeIdentifier,
		Status:                string(req.Status),
		LastError:             req.LastError,
		UserScreenshotPath:    req.UserScreenshotPath,
		AdminScreenshotPath:   req.AdminScreenshotPath,
		CreatedAt:             req.CreatedAt,
		UpdatedAt:             req.CreatedAt,
		UserUploadedAt:        req.UserUploadedAt,
		AdminUploadedAt:       req.AdminUploadedAt,
		VerifiedAt:            req.VerifiedAt,
		RejectedAt:            req.RejectedAt,
		ExpiredAt:             req.ExpiredAt,
		ExpiresAt:             req.ExpiresAt,
	}, nil
}

func (r *paymentRequestRepository) modelToEntity(row *model.PaymentRequest) *entity.PaymentRequest {
	// A secret that cannot be opened is returned empty; reconciliation rejects it
	secret, err := r.sealer.Open(row.ReferenceSecretSealed, row.ID.String())
	if err != nil {
		r.logger.Warn("Failed to open reference secret",
			zap.String("request_id", row.ID.String()),
			zap.Error(err))
		secret = ""
	}

	return &entity.PaymentRequest{
		ID:                  row.ID,
		UserID:              row.UserID,
		Plan:                entity.Plan(row.Plan),
		AmountExpected:      row.AmountExpected,
		Currency:            row.Currency,
		ReferenceCode:       row.ReferenceCode,
		ReferenceSecret:     secret,
		GeneratedMessage:    row.GeneratedMessage,
		PayeeIdentifier:     row.PayeeIdentifier,
		Status:              entity.PaymentStatus(row.Status),
		LastError:           row.LastError,
		UserScreenshotPath:  row.UserScreenshotPath,
		AdminScreenshotPath: row.AdminScreenshotPath,
		CreatedAt:           row.CreatedAt,
		UserUploadedAt:      row.UserUploadedAt,
		AdminUploadedAt:     row.AdminUploadedAt,
		VerifiedAt:          row.VerifiedAt,
		RejectedAt:          row.RejectedAt,
		ExpiredAt:           row.ExpiredAt,
		ExpiresAt:           row.ExpiresAt,
	}
}

func (r *paymentRequestRepository) modelsToEntities(rows []model.PaymentRequest) []*entity.PaymentRequest {
	reqs := make([]*entity.PaymentRequest, 0, len(rows))
	for i := range rows {
		reqs = append(reqs, r.modelToEntity(&rows[i]))
	}
	return reqs
}

// isUniqueViolation matches translated and raw driver errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
