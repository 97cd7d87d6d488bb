package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
)

// UploadedImage is a screenshot that already passed boundary validation.
type UploadedImage struct {
	Data      []byte
	MimeType  string
	Extension string
}

// ScreenshotExtractor reads payment fields from an image.
type ScreenshotExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*ExtractionResult, error)
}

// PlanActivator grants a plan to a user.
type PlanActivator interface {
	Activate(ctx context.Context, userID string, plan entity.Plan) (*entity.UserSubscription, error)
}

// PaymentNotifier receives post-commit notifications. Implementations must not fail the caller.
type PaymentNotifier interface {
	PaymentVerified(ctx context.Context, req *entity.PaymentRequest)
	PaymentAwaitingReview(ctx context.Context, req *entity.PaymentRequest)
}

// VerificationService drives uploads, extraction and reconciliation.
type VerificationService struct {
	requests    *PaymentRequestService
	extractions domainRepo.ExtractionRepository
	events      domainRepo.PaymentEventRepository
	blobs       provider.BlobStorage
	extractor   ScreenshotExtractor
	reconciler  *Reconciler
	activator   PlanActivator
	notifier    PaymentNotifier
	now         func() time.Time
	logger      *zap.Logger
}

// VerificationDeps groups the collaborators of VerificationService.
type VerificationDeps struct {
	Requests    *PaymentRequestService
	Extractions domainRepo.ExtractionRepository
	Events      domainRepo.PaymentEventRepository
	Blobs       provider.BlobStorage
	Extractor   ScreenshotExtractor
	Reconciler  *Reconciler
	Activator   PlanActivator
	Notifier    PaymentNotifier
}

func NewVerificationService(deps VerificationDeps, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		requests:    deps.Requests,
		extractions: deps.Extractions,
		events:      deps.Events,
		blobs:       deps.Blobs,
		extractor:   deps.Extractor,
		reconciler:  deps.Reconciler,
		activator:   deps.Activator,
		notifier:    deps.Notifier,
		now:         time.Now,
		logger:      logger,
	}
}

// UploadPaymentScreenshot stores the payer's screenshot and extracts it.
// On extraction failure the status stays user_uploaded and last_error is set;
// the payer may upload again.
func (s *VerificationService) UploadPaymentScreenshot(ctx context.Context, userID string, requestID uuid.UUID, image UploadedImage) (*entity.Extraction, error) {
	log := s.logger.With(
		zap.String("request_id", requestID.String()),
		zap.String("user_id", userID),
		zap.String("flow", "payer_upload"))

	req, err := s.requests.GetRequestForUser(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.checkUploadable(ctx, req, entity.StatusUserUploaded); err != nil {
		return nil, err
	}

	path, err := s.store(ctx, req, entity.ExtractionPayer, image)
	if err != nil {
		log.Error("Screenshot upload failed", zap.String("step", "blob_upload"), zap.Error(err))
		return nil, err
	}

	if err := s.requests.MarkUserUploaded(ctx, req, path); err != nil {
		return nil, err
	}
	log.Info("Payer screenshot stored", zap.String("step", "mark_user_uploaded"), zap.String("path", path))

	ext, err := s.extractAndSave(ctx, req, entity.ExtractionPayer, userID, entity.ActorPayer, path, image)
	if err != nil {
		return nil, err
	}

	if err := s.requests.MarkAIParsed(ctx, req, ext.ID); err != nil {
		return nil, err
	}
	log.Info("Payer screenshot parsed", zap.String("step", "mark_ai_parsed"), zap.String("extraction_id", ext.ID.String()))

	s.notifier.PaymentAwaitingReview(ctx, req)

	return ext, nil
}

// AdminUploadCounterScreenshot stores the admin's confirmation, extracts it and
// reconciles both sides. Business-rule failures come back as a rejected result
// with a nil error.
func (s *VerificationService) AdminUploadCounterScreenshot(ctx context.Context, adminID string, requestID uuid.UUID, image UploadedImage) (*entity.VerificationResult, error) {
	log := s.logger.With(
		zap.String("request_id", requestID.String()),
		zap.String("admin_id", adminID),
		zap.String("flow", "admin_upload"))

	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domainErrors.NewRequestNotFoundError(requestID.String())
	}

	if req.Status.IsDecided() {
		log.Warn("Reconciliation attempted on finalized request",
			zap.String("step", "status_guard"),
			zap.String("current_status", string(req.Status)))
		return alreadyDecided(), domainErrors.NewPaymentStatusError(req.ID.String(), string(req.Status), string(entity.StatusAdminUploaded))
	}
	if req.Status == entity.StatusExpired {
		return nil, domainErrors.NewRequestExpiredError(req.ID.String())
	}
	if !req.Status.CanTransitionTo(entity.StatusAdminUploaded) {
		return nil, domainErrors.NewPaymentStatusError(req.ID.String(), string(req.Status), string(entity.StatusAdminUploaded))
	}

	path, err := s.store(ctx, req, entity.ExtractionAdmin, image)
	if err != nil {
		log.Error("Screenshot upload failed", zap.String("step", "blob_upload"), zap.Error(err))
		return nil, err
	}

	if err := s.requests.MarkAdminUploaded(ctx, req, adminID, path); err != nil {
		return nil, err
	}
	log.Info("Admin screenshot stored", zap.String("step", "mark_admin_uploaded"), zap.String("path", path))

	adminExt, err := s.extractAndSave(ctx, req, entity.ExtractionAdmin, adminID, entity.ActorAdmin, path, image)
	if err != nil {
		return nil, err
	}

	payerExt, err := s.extractions.FindLatest(ctx, req.ID, entity.ExtractionPayer)
	if err != nil {
		return nil, fmt.Errorf("failed to load payer extraction: %w", err)
	}

	return s.reconcile(ctx, adminID, req.ID, payerExt, adminExt)
}

// Reconcile re-runs the decision from the latest stored extractions.
func (s *VerificationService) Reconcile(ctx context.Context, adminID string, requestID uuid.UUID) (*entity.VerificationResult, error) {
	payerExt, err := s.extractions.FindLatest(ctx, requestID, entity.ExtractionPayer)
	if err != nil {
		return nil, fmt.Errorf("failed to load payer extraction: %w", err)
	}
	adminExt, err := s.extractions.FindLatest(ctx, requestID, entity.ExtractionAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin extraction: %w", err)
	}
	return s.reconcile(ctx, adminID, requestID, payerExt, adminExt)
}

func (s *VerificationService) reconcile(ctx context.Context, adminID string, requestID uuid.UUID, payerExt, adminExt *entity.Extraction) (*entity.VerificationResult, error) {
	log := s.logger.With(zap.String("request_id", requestID.String()), zap.String("flow", "reconcile"))

	// Fresh read so the decision is taken against the committed status
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domainErrors.NewRequestNotFoundError(requestID.String())
	}

	result := s.reconciler.Verify(req, payerExt, adminExt, s.now().UTC())

	if req.Status.IsDecided() {
		log.Warn("Request finalized concurrently, aborting",
			zap.String("step", "status_guard"),
			zap.String("current_status", string(req.Status)))
		return &result, domainErrors.NewPaymentStatusError(req.ID.String(), string(req.Status), "")
	}

	if !result.Verified {
		if err := s.requests.MarkRejected(ctx, req, adminID, result.Errors); err != nil {
			return nil, err
		}
		log.Info("Payment rejected",
			zap.String("step", "mark_rejected"),
			zap.Strings("errors", result.Errors))
		return &result, nil
	}

	if err := s.requests.MarkVerified(ctx, req, adminID); err != nil {
		return nil, err
	}
	log.Info("Payment verified", zap.String("step", "mark_verified"))

	if err := s.fulfil(ctx, req); err != nil {
		return &result, err
	}

	s.notifier.PaymentVerified(ctx, req)

	return &result, nil
}

// fulfil activates the plan. A failure here leaves the request verified and is
// reported as an inconsistency.
func (s *VerificationService) fulfil(ctx context.Context, req *entity.PaymentRequest) error {
	sub, err := s.activator.Activate(ctx, req.UserID, req.Plan)
	if err != nil {
		s.logger.Error("Verified payment could not be fulfilled",
			zap.String("request_id", req.ID.String()),
			zap.String("user_id", req.UserID),
			zap.String("plan", req.Plan.String()),
			zap.String("step", "activate_subscription"),
			zap.String("status", "inconsistent"),
			zap.Error(err))

		s.appendEvent(ctx, req, entity.EventPlanUpgradeFailed, map[string]interface{}{
			"plan":  req.Plan.String(),
			"error": err.Error(),
		})
		return domainErrors.NewReconciliationInconsistencyError(req.ID.String(), req.UserID, req.Plan.String(), err)
	}

	s.appendEvent(ctx, req, entity.EventPlanUpgraded, map[string]interface{}{
		"plan":       sub.Plan.String(),
		"started_at": sub.StartedAt.Format(time.RFC3339),
	})
	return nil
}

func (s *VerificationService) appendEvent(ctx context.Context, req *entity.PaymentRequest, eventType entity.PaymentEventType, detail map[string]interface{}) {
	event := &entity.PaymentEvent{
		RequestID: req.ID,
		ActorID:   entity.SystemActorID,
		ActorRole: entity.ActorSystem,
		EventType: eventType,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		s.logger.Error("Failed to append payment event",
			zap.String("request_id", req.ID.String()),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

// checkUploadable applies lazy expiry and the status guard for an upload.
func (s *VerificationService) checkUploadable(ctx context.Context, req *entity.PaymentRequest, next entity.PaymentStatus) error {
	if !req.Status.IsTerminal() && req.IsExpiredAt(s.now()) {
		if err := s.requests.MarkExpired(ctx, req); err != nil {
			var statusErr *domainErrors.PaymentStatusError
			if !errors.As(err, &statusErr) {
				return err
			}
		}
		return domainErrors.NewRequestExpiredError(req.ID.String())
	}
	if req.Status == entity.StatusExpired {
		return domainErrors.NewRequestExpiredError(req.ID.String())
	}
	if !req.Status.CanTransitionTo(next) {
		return domainErrors.NewPaymentStatusError(req.ID.String(), string(req.Status), string(next))
	}
	return nil
}

func (s *VerificationService) store(ctx context.Context, req *entity.PaymentRequest, kind entity.ExtractionKind, image UploadedImage) (string, error) {
	path := fmt.Sprintf("mmg/%s/%s/%d%s", req.ID, kind, s.now().UnixNano(), image.Extension)
	if err := s.blobs.Upload(ctx, path, image.Data, image.MimeType); err != nil {
		return "", fmt.Errorf("failed to store screenshot: %w", err)
	}
	return path, nil
}

// extractAndSave runs the extractor and persists a successful result. Failures
// are written to last_error with the raw answer kept in the event detail.
func (s *VerificationService) extractAndSave(
	ctx context.Context,
	req *entity.PaymentRequest,
	kind entity.ExtractionKind,
	actorID string,
	role entity.ActorRole,
	path string,
	image UploadedImage,
) (*entity.Extraction, error) {
	result, err := s.extractor.Extract(ctx, image.Data, image.MimeType)
	if err != nil {
		s.recordExtractionFailure(ctx, req, kind, actorID, role, path, err)
		return nil, err
	}

	ext := &entity.Extraction{
		ID:              uuid.New(),
		RequestID:       req.ID,
		Kind:            kind,
		ImagePath:       &path,
		RawResponse:     result.Raw,
		CreatedAt:       s.now().UTC(),
		ExtractedFields: result.Fields,
	}
	if err := s.extractions.Save(ctx, ext); err != nil {
		s.logger.Error("Failed to save extraction",
			zap.String("request_id", req.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("step", "save_extraction"),
			zap.Error(err))
		if recErr := s.requests.RecordFailure(ctx, req, "failed to save extraction: "+err.Error(), nil); recErr != nil {
			s.logger.Error("Failed to record extraction save failure",
				zap.String("request_id", req.ID.String()),
				zap.String("step", "record_failure"),
				zap.Error(recErr))
		}
		return nil, fmt.Errorf("failed to save extraction: %w", err)
	}

	return ext, nil
}

func (s *VerificationService) recordExtractionFailure(
	ctx context.Context,
	req *entity.PaymentRequest,
	kind entity.ExtractionKind,
	actorID string,
	role entity.ActorRole,
	path string,
	cause error,
) {
	eventType := entity.EventUserExtractionFailed
	if kind == entity.ExtractionAdmin {
		eventType = entity.EventAdminExtractionFailed
	}

	detail := map[string]interface{}{
		"path":  path,
		"error": cause.Error(),
	}
	var extractionErr *domainErrors.ExtractionError
	if errors.As(cause, &extractionErr) {
		detail["error_type"] = extractionErr.Type
		if extractionErr.Raw != "" {
			detail["raw_response"] = extractionErr.Raw
		}
	}

	event := &entity.PaymentEvent{
		ActorID:   actorID,
		ActorRole: role,
		EventType: eventType,
		Detail:    detail,
	}
	if err := s.requests.RecordFailure(ctx, req, cause.Error(), event); err != nil {
		s.logger.Error("Failed to record extraction failure",
			zap.String("request_id", req.ID.String()),
			zap.String("step", "record_failure"),
			zap.Error(err))
	}
}

func alreadyDecided() *entity.VerificationResult {
	return &entity.VerificationResult{
		Verified: false,
		Errors:   []string{ReasonAlreadyDecided},
	}
}
