package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/middleware/auth"
	"github.com/stashway/stashway-backend/internal/usecase"
	pkgerrors "github.com/stashway/stashway-backend/pkg/errors"
	"go.uber.org/zap"
)

// PaymentRequestUsecase is the payer side of the request store
type PaymentRequestUsecase interface {
	CreateRequest(ctx context.Context, userID, rawPlan string) (*entity.PaymentRequest, error)
	GetRequestForUser(ctx context.Context, userID string, id uuid.UUID) (*entity.PaymentRequest, error)
	ListRequestsForUser(ctx context.Context, userID string) ([]*entity.PaymentRequest, error)
}

// PayerUploadUsecase extracts the payer's screenshot
type PayerUploadUsecase interface {
	UploadPaymentScreenshot(ctx context.Context, userID string, requestID uuid.UUID, image usecase.UploadedImage) (*entity.Extraction, error)
}

// SubscriptionReader reads the caller's current plan
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, userID string) (*entity.UserSubscription, error)
}

// NotificationReader lists the caller's inbox
type NotificationReader interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
}

type PaymentHandler struct {
	requests       PaymentRequestUsecase
	uploads        PayerUploadUsecase
	subscriptions  SubscriptionReader
	notifications  NotificationReader
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewPaymentHandler(
	requests PaymentRequestUsecase,
	uploads PayerUploadUsecase,
	subscriptions SubscriptionReader,
	notifications NotificationReader,
	maxUploadBytes int64,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		requests:       requests,
		uploads:        uploads,
		subscriptions:  subscriptions,
		notifications:  notifications,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type createPaymentRequestRequest struct {
	Plan string `json:"plan" validate:"required"`
}

type createPaymentRequestResponse struct {
	RequestID        uuid.UUID       `json:"request_id"`
	GeneratedMessage string          `json:"generated_message"`
	ReferenceCode    string          `json:"reference_code"`
	AmountExpected   decimal.Decimal `json:"amount_expected"`
	Currency         string          `json:"currency"`
	PayeeIdentifier  string          `json:"payee_identifier"`
	ExpiresAt        time.Time       `json:"expires_at"`
}

// payerRequestView is the only shape of a request payers ever see
type payerRequestView struct {
	ID               uuid.UUID       `json:"id"`
	Plan             entity.Plan     `json:"plan"`
	AmountExpected   decimal.Decimal `json:"amount_expected"`
	Currency         string          `json:"currency"`
	ReferenceCode    string          `json:"reference_code"`
	GeneratedMessage string          `json:"generated_message"`
	PayeeIdentifier  string          `json:"payee_identifier"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	ExpiresAt        time.Time       `json:"expires_at"`
	VerifiedAt       *time.Time      `json:"verified_at,omitempty"`
}

func newPayerRequestView(req *entity.PaymentRequest) payerRequestView {
	return payerRequestView{
		ID:               req.ID,
		Plan:             req.Plan,
		AmountExpected:   req.AmountExpected,
		Currency:         req.Currency,
		ReferenceCode:    req.ReferenceCode,
		GeneratedMessage: req.GeneratedMessage,
		PayeeIdentifier:  req.PayeeIdentifier,
		Status:           req.Status.PayerStatus(),
		CreatedAt:        req.CreatedAt,
		ExpiresAt:        req.ExpiresAt,
		VerifiedAt:       req.VerifiedAt,
	}
}

type screenshotResponse struct {
	RequestID uuid.UUID              `json:"request_id"`
	Status    string                 `json:"status"`
	Extracted entity.ExtractedFields `json:"extracted"`
}

// CreateRequest handles POST /api/v1/mmg/requests
func (h *PaymentHandler) CreateRequest(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req createPaymentRequestRequest
	if err := c.Bind(&req); err != nil {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid request body", err))
	}
	if err := c.Validate(req); err != nil {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "plan is required", err))
	}

	created, err := h.requests.CreateRequest(c.Request().Context(), user.UserID, req.Plan)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create payment request",
			zap.String("user_id", user.UserID),
			zap.String("plan", req.Plan))
	}

	return c.JSON(http.StatusCreated, createPaymentRequestResponse{
		RequestID:        created.ID,
		GeneratedMessage: created.GeneratedMessage,
		ReferenceCode:    created.ReferenceCode,
		AmountExpected:   created.AmountExpected,
		Currency:         created.Currency,
		PayeeIdentifier:  created.PayeeIdentifier,
		ExpiresAt:        created.ExpiresAt,
	})
}

// ListRequests handles GET /api/v1/mmg/requests
func (h *PaymentHandler) ListRequests(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	reqs, err := h.requests.ListRequestsForUser(c.Request().Context(), user.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list payment requests", zap.String("user_id", user.UserID))
	}

	views := make([]payerRequestView, len(reqs))
	for i, r := range reqs {
		views[i] = newPayerRequestView(r)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GetRequest handles GET /api/v1/mmg/requests/:id
func (h *PaymentHandler) GetRequest(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, ok := parseRequestID(c)
	if !ok {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrNotFound, "payment request not found", nil))
	}

	req, err := h.requests.GetRequestForUser(c.Request().Context(), user.UserID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get payment request",
			zap.String("user_id", user.UserID),
			zap.String("request_id", id.String()))
	}

	return c.JSON(http.StatusOK, newPayerRequestView(req))
}

// UploadScreenshot handles POST /api/v1/mmg/requests/:id/screenshot.
// Extraction failures are not surfaced to the payer; they get 202 processing.
func (h *PaymentHandler) UploadScreenshot(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, ok := parseRequestID(c)
	if !ok {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrNotFound, "payment request not found", nil))
	}

	image, err := readScreenshot(c, h.maxUploadBytes)
	if err != nil {
		return respondError(c, h.logger, err, "Rejected payer screenshot", zap.String("request_id", id.String()))
	}

	ext, err := h.uploads.UploadPaymentScreenshot(c.Request().Context(), user.UserID, id, image)
	if err != nil {
		var extractErr *domainErrors.ExtractionError
		if errors.As(err, &extractErr) {
			h.logger.Warn("Payer screenshot extraction failed",
				zap.String("request_id", id.String()),
				zap.String("error_type", extractErr.Type),
				zap.Error(err))
			return c.JSON(http.StatusAccepted, echo.Map{"status": "processing"})
		}
		return respondError(c, h.logger, err, "Failed to upload payer screenshot",
			zap.String("user_id", user.UserID),
			zap.String("request_id", id.String()))
	}

	return c.JSON(http.StatusOK, screenshotResponse{
		RequestID: id,
		Status:    entity.StatusAIParsed.PayerStatus(),
		Extracted: ext.ExtractedFields,
	})
}

// GetSubscription handles GET /api/v1/mmg/subscription
func (h *PaymentHandler) GetSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.GetSubscription(c.Request().Context(), user.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get subscription", zap.String("user_id", user.UserID))
	}
	return c.JSON(http.StatusOK, sub)
}

// ListNotifications handles GET /api/v1/mmg/notifications
func (h *PaymentHandler) ListNotifications(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit := entity.DefaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "limit must be a number", err))
		}
		limit = parsed
	}

	list, err := h.notifications.ListForUser(c.Request().Context(), user.UserID, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list notifications", zap.String("user_id", user.UserID))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": list})
}

func parseRequestID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
