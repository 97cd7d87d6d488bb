package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
)

const maxReferenceAttempts = 3

// RequestSettings holds the per-deployment values stamped onto new requests.
type RequestSettings struct {
	PayeeIdentifier string
	Currency        string
	Prices          map[entity.Plan]decimal.Decimal
	TTL             time.Duration
}

// PaymentRequestService creates payment requests and applies guarded status transitions.
type PaymentRequestService struct {
	requests  domainRepo.PaymentRequestRepository
	generator ReferenceGenerator
	settings  RequestSettings
	now       func() time.Time
	logger    *zap.Logger
}

func NewPaymentRequestService(
	requests domainRepo.PaymentRequestRepository,
	generator ReferenceGenerator,
	settings RequestSettings,
	logger *zap.Logger,
) *PaymentRequestService {
	return &PaymentRequestService{
		requests:  requests,
		generator: generator,
		settings:  settings,
		now:       time.Now,
		logger:    logger,
	}
}

// BuildPaymentMessage renders the text the payer pastes into the MMG transfer note.
func BuildPaymentMessage(plan entity.Plan, referenceCode string) string {
	return fmt.Sprintf("STASHWAY %s PAYMENT - REF:%s", plan.Label(), referenceCode)
}

// CreateRequest issues a new payment request for a paid plan.
func (s *PaymentRequestService) CreateRequest(ctx context.Context, userID, rawPlan string) (*entity.PaymentRequest, error) {
	plan, ok := entity.ParsePlan(rawPlan)
	if !ok {
		s.logger.Warn("Rejected payment request for invalid plan",
			zap.String("user_id", userID),
			zap.String("plan", rawPlan),
			zap.String("step", "plan_validation"),
			zap.String("status", "failed"))
		return nil, domainErrors.NewInvalidPlanError(rawPlan)
	}

	amount, ok := s.settings.Prices[plan]
	if !ok {
		s.logger.Error("No price configured for plan",
			zap.String("plan", plan.String()),
			zap.String("step", "price_lookup"),
			zap.String("status", "failed"))
		return nil, domainErrors.NewPricingConfigError(plan.String())
	}

	var lastErr error
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		req, err := s.newRequest(userID, plan, amount)
		if err != nil {
			return nil, err
		}

		event := &entity.PaymentEvent{
			RequestID: req.ID,
			ActorID:   userID,
			ActorRole: entity.ActorPayer,
			EventType: entity.EventRequestCreated,
			Detail: map[string]interface{}{
				"plan":            plan.String(),
				"amount_expected": amount.String(),
				"currency":        req.Currency,
				"expires_at":      req.ExpiresAt.Format(time.RFC3339),
			},
			CreatedAt: req.CreatedAt,
		}

		err = s.requests.Create(ctx, req, event)
		if err == nil {
			s.logger.Info("Payment request created",
				zap.String("request_id", req.ID.String()),
				zap.String("user_id", userID),
				zap.String("plan", plan.String()),
				zap.String("amount_expected", amount.String()),
				zap.String("step", "create_request"),
				zap.String("status", "success"))
			return req, nil
		}

		var reqErr *domainErrors.PaymentRequestError
		if errors.As(err, &reqErr) && reqErr.Type == domainErrors.ErrTypeDuplicateReference {
			s.logger.Warn("Reference code collision, regenerating",
				zap.Int("attempt", attempt),
				zap.String("step", "create_request"))
			lastErr = err
			continue
		}

		s.logger.Error("Failed to persist payment request",
			zap.String("user_id", userID),
			zap.String("step", "create_request"),
			zap.String("status", "failed"),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	return nil, fmt.Errorf("failed to create payment request after %d attempts: %w", maxReferenceAttempts, lastErr)
}

func (s *PaymentRequestService) newRequest(userID string, plan entity.Plan, amount decimal.Decimal) (*entity.PaymentRequest, error) {
	code, err := s.generator.GenerateReferenceCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}
	secret, err := s.generator.GenerateReferenceSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference secret: %w", err)
	}

	now := s.now().UTC()
	return &entity.PaymentRequest{
		ID:               uuid.New(),
		UserID:           userID,
		Plan:             plan,
		AmountExpected:   amount,
		Currency:         s.settings.Currency,
		ReferenceCode:    code,
		ReferenceSecret:  secret,
		GeneratedMessage: BuildPaymentMessage(plan, code),
		PayeeIdentifier:  s.settings.PayeeIdentifier,
		Status:           entity.StatusGenerated,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.settings.TTL),
	}, nil
}

// GetRequest returns the request or nil when it does not exist.
func (s *PaymentRequestService) GetRequest(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}
	return req, nil
}

// GetRequestForUser returns the request only when userID owns it.
func (s *PaymentRequestService) GetRequestForUser(ctx context.Context, userID string, id uuid.UUID) (*entity.PaymentRequest, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.UserID != userID {
		return nil, domainErrors.NewRequestNotFoundError(id.String())
	}
	return req, nil
}

// ListRequestsForUser returns the user's requests, newest first.
func (s *PaymentRequestService) ListRequestsForUser(ctx context.Context, userID string) ([]*entity.PaymentRequest, error) {
	reqs, err := s.requests.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	return reqs, nil
}

// ListRequests is the paginated admin listing.
func (s *PaymentRequestService) ListRequests(ctx context.Context, filter entity.PaymentRequestFilter) (*entity.PaginatedPaymentRequests, error) {
	filter.PaginationParams.Validate()

	reqs, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}

	return &entity.PaginatedPaymentRequests{
		Data:       reqs,
		Pagination: entity.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

// MarkUserUploaded records the payer's screenshot.
func (s *PaymentRequestService) MarkUserUploaded(ctx context.Context, req *entity.PaymentRequest, path string) error {
	return s.transition(ctx, req, entity.StatusUserUploaded, entity.StatusChanges{ScreenshotPath: &path}, &entity.PaymentEvent{
		ActorID:   req.UserID,
		ActorRole: entity.ActorPayer,
		EventType: entity.EventUserUploaded,
		Detail:    map[string]interface{}{"path": path},
	})
}

// MarkAIParsed records a successful payer extraction and clears stale diagnostics.
func (s *PaymentRequestService) MarkAIParsed(ctx context.Context, req *entity.PaymentRequest, extractionID uuid.UUID) error {
	return s.transition(ctx, req, entity.StatusAIParsed, entity.StatusChanges{ClearLastError: true}, &entity.PaymentEvent{
		ActorID:   entity.SystemActorID,
		ActorRole: entity.ActorSystem,
		EventType: entity.EventAIParsed,
		Detail:    map[string]interface{}{"extraction_id": extractionID.String()},
	})
}

// MarkAdminUploaded records the admin's counter-screenshot.
func (s *PaymentRequestService) MarkAdminUploaded(ctx context.Context, req *entity.PaymentRequest, adminID, path string) error {
	return s.transition(ctx, req, entity.StatusAdminUploaded, entity.StatusChanges{ScreenshotPath: &path, ClearLastError: true}, &entity.PaymentEvent{
		ActorID:   adminID,
		ActorRole: entity.ActorAdmin,
		EventType: entity.EventAdminUploaded,
		Detail:    map[string]interface{}{"path": path},
	})
}

// MarkVerified finalizes a successful reconciliation.
func (s *PaymentRequestService) MarkVerified(ctx context.Context, req *entity.PaymentRequest, adminID string) error {
	return s.transition(ctx, req, entity.StatusVerified, entity.StatusChanges{ClearLastError: true}, &entity.PaymentEvent{
		ActorID:   adminID,
		ActorRole: entity.ActorAdmin,
		EventType: entity.EventAdminVerified,
		Detail: map[string]interface{}{
			"plan":   req.Plan.String(),
			"amount": req.AmountExpected.String(),
		},
	})
}

// MarkRejected finalizes a failed reconciliation with every reason.
func (s *PaymentRequestService) MarkRejected(ctx context.Context, req *entity.PaymentRequest, adminID string, reasons []string) error {
	lastError := domainErrors.JoinReasons(reasons)
	return s.transition(ctx, req, entity.StatusRejected, entity.StatusChanges{LastError: &lastError}, &entity.PaymentEvent{
		ActorID:   adminID,
		ActorRole: entity.ActorAdmin,
		EventType: entity.EventAdminRejected,
		Detail:    map[string]interface{}{"errors": reasons},
	})
}

// MarkExpired moves a request past its deadline into the terminal expired state.
func (s *PaymentRequestService) MarkExpired(ctx context.Context, req *entity.PaymentRequest) error {
	lastError := domainErrors.NewRequestExpiredError(req.ID.String()).Message
	return s.transition(ctx, req, entity.StatusExpired, entity.StatusChanges{LastError: &lastError}, &entity.PaymentEvent{
		ActorID:   entity.SystemActorID,
		ActorRole: entity.ActorSystem,
		EventType: entity.EventRequestExpired,
		Detail:    map[string]interface{}{"expires_at": req.ExpiresAt.Format(time.RFC3339)},
	})
}

// RecordFailure stores a diagnostic on the request without moving its status.
func (s *PaymentRequestService) RecordFailure(ctx context.Context, req *entity.PaymentRequest, message string, event *entity.PaymentEvent) error {
	if event != nil {
		event.RequestID = req.ID
		event.CreatedAt = s.now().UTC()
	}
	if err := s.requests.RecordError(ctx, req.ID, message, event); err != nil {
		return fmt.Errorf("failed to record request error: %w", err)
	}
	req.LastError = &message
	return nil
}

func (s *PaymentRequestService) transition(ctx context.Context, req *entity.PaymentRequest, to entity.PaymentStatus, changes entity.StatusChanges, event *entity.PaymentEvent) error {
	if !req.Status.CanTransitionTo(to) {
		s.logger.Warn("Rejected status transition",
			zap.String("request_id", req.ID.String()),
			zap.String("from", string(req.Status)),
			zap.String("to", string(to)),
			zap.String("step", "status_guard"))
		return domainErrors.NewPaymentStatusError(req.ID.String(), string(req.Status), string(to))
	}

	now := s.now().UTC()
	changes.At = now
	event.RequestID = req.ID
	event.CreatedAt = now
	if event.Detail == nil {
		event.Detail = map[string]interface{}{}
	}
	event.Detail["from"] = string(req.Status)
	event.Detail["to"] = string(to)

	if err := s.requests.Transition(ctx, req.ID, []entity.PaymentStatus{req.Status}, to, changes, event); err != nil {
		s.logger.Warn("Status transition failed",
			zap.String("request_id", req.ID.String()),
			zap.String("from", string(req.Status)),
			zap.String("to", string(to)),
			zap.String("step", "status_transition"),
			zap.Error(err))
		return err
	}

	applyTransition(req, to, changes)
	return nil
}

// applyTransition mirrors the repository update onto the in-memory request.
func applyTransition(req *entity.PaymentRequest, to entity.PaymentStatus, changes entity.StatusChanges) {
	at := changes.At
	req.Status = to
	if changes.ClearLastError {
		req.LastError = nil
	}
	if changes.LastError != nil {
		req.LastError = changes.LastError
	}

	switch to {
	case entity.StatusUserUploaded:
		req.UserUploadedAt = &at
		req.UserScreenshotPath = changes.ScreenshotPath
	case entity.StatusAdminUploaded:
		req.AdminUploadedAt = &at
		req.AdminScreenshotPath = changes.ScreenshotPath
	case entity.StatusVerified:
		req.VerifiedAt = &at
	case entity.StatusRejected:
		req.RejectedAt = &at
	case entity.StatusExpired:
		req.ExpiredAt = &at
	}
}
