package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/middleware/auth"
	"github.com/stashway/stashway-backend/internal/usecase"
	pkgerrors "github.com/stashway/stashway-backend/pkg/errors"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminVerificationUsecase drives the admin side of verification
type AdminVerificationUsecase interface {
	AdminUploadCounterScreenshot(ctx context.Context, adminID string, requestID uuid.UUID, image usecase.UploadedImage) (*entity.VerificationResult, error)
	Reconcile(ctx context.Context, adminID string, requestID uuid.UUID) (*entity.VerificationResult, error)
}

// AdminReviewUsecase serves admin listings and audit views
type AdminReviewUsecase interface {
	ListRequests(ctx context.Context, filter entity.PaymentRequestFilter) (*entity.PaginatedPaymentRequests, error)
	GetRequestDetail(ctx context.Context, id uuid.UUID) (*usecase.RequestDetail, error)
	ExportRequests(ctx context.Context, filter entity.PaymentRequestFilter, w io.Writer) (int, error)
}

type AdminHandler struct {
	verification   AdminVerificationUsecase
	review         AdminReviewUsecase
	maxUploadBytes int64
	now            func() time.Time
	logger         *zap.Logger
}

func NewAdminHandler(verification AdminVerificationUsecase, review AdminReviewUsecase, maxUploadBytes int64, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		verification:   verification,
		review:         review,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
		logger:         logger,
	}
}

// UploadScreenshot handles POST /api/v1/admin/mmg/requests/:id/screenshot
func (h *AdminHandler) UploadScreenshot(c echo.Context) error {
	admin, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, ok := parseRequestID(c)
	if !ok {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid request id", nil))
	}

	image, err := readScreenshot(c, h.maxUploadBytes)
	if err != nil {
		return respondError(c, h.logger, err, "Rejected admin screenshot", zap.String("request_id", id.String()))
	}

	result, err := h.verification.AdminUploadCounterScreenshot(c.Request().Context(), admin.UserID, id, image)
	return h.writeResult(c, admin.UserID, id, result, err)
}

// Reconcile handles POST /api/v1/admin/mmg/requests/:id/reconcile
func (h *AdminHandler) Reconcile(c echo.Context) error {
	admin, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	id, ok := parseRequestID(c)
	if !ok {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid request id", nil))
	}

	result, err := h.verification.Reconcile(c.Request().Context(), admin.UserID, id)
	return h.writeResult(c, admin.UserID, id, result, err)
}

func (h *AdminHandler) writeResult(c echo.Context, adminID string, id uuid.UUID, result *entity.VerificationResult, err error) error {
	if err != nil {
		return respondError(c, h.logger, err, "Admin verification failed",
			zap.String("admin_id", adminID),
			zap.String("request_id", id.String()))
	}

	h.logger.Info("Admin verification completed",
		zap.String("admin_id", adminID),
		zap.String("request_id", id.String()),
		zap.Bool("verified", result.Verified),
		zap.Int("error_count", len(result.Errors)))

	if result.Errors == nil {
		result.Errors = []string{}
	}
	return c.JSON(http.StatusOK, result)
}

// ListRequests handles GET /api/v1/admin/mmg/requests
func (h *AdminHandler) ListRequests(c echo.Context) error {
	filter, ferr := parseFilter(c)
	if ferr != nil {
		return pkgerrors.WriteJSON(c, ferr)
	}

	page, err := h.review.ListRequests(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list payment requests")
	}
	return c.JSON(http.StatusOK, page)
}

// GetRequest handles GET /api/v1/admin/mmg/requests/:id
func (h *AdminHandler) GetRequest(c echo.Context) error {
	id, ok := parseRequestID(c)
	if !ok {
		return pkgerrors.WriteJSON(c, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid request id", nil))
	}

	detail, err := h.review.GetRequestDetail(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get payment request detail", zap.String("request_id", id.String()))
	}
	return c.JSON(http.StatusOK, detail)
}

// ExportRequests handles GET /api/v1/admin/mmg/requests/export
func (h *AdminHandler) ExportRequests(c echo.Context) error {
	filter, ferr := parseFilter(c)
	if ferr != nil {
		return pkgerrors.WriteJSON(c, ferr)
	}

	var buf bytes.Buffer
	rows, err := h.review.ExportRequests(c.Request().Context(), filter, &buf)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to export payment requests")
	}

	filename := fmt.Sprintf("mmg-requests-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set("X-Export-Rows", fmt.Sprint(rows))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

type listQuery struct {
	Status string `query:"status"`
	UserID string `query:"user_id"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

func parseFilter(c echo.Context) (entity.PaymentRequestFilter, *pkgerrors.AppError) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return entity.PaymentRequestFilter{}, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid query parameters", err)
	}

	filter := entity.PaymentRequestFilter{
		UserID:           q.UserID,
		PaginationParams: entity.PaginationParams{Page: q.Page, Limit: q.Limit},
	}
	if q.Status != "" {
		status := entity.PaymentStatus(q.Status)
		if !status.IsValid() {
			return entity.PaymentRequestFilter{}, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "unknown status: "+q.Status, nil)
		}
		filter.Status = &status
	}
	return filter, nil
}
