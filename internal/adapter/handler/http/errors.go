package http

import (
	"errors"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	pkgerrors "github.com/stashway/stashway-backend/pkg/errors"
	"go.uber.org/zap"
)

// toAppError maps domain errors onto transport codes
func toAppError(err error) *pkgerrors.AppError {
	var (
		appErr       *pkgerrors.AppError
		uploadErr    *domainErrors.UploadValidationError
		requestErr   *domainErrors.PaymentRequestError
		statusErr    *domainErrors.PaymentStatusError
		inconsistent *domainErrors.ReconciliationInconsistencyError
		extractErr   *domainErrors.ExtractionError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &uploadErr):
		return pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, uploadErr.Error(), err)
	case errors.As(err, &requestErr):
		switch requestErr.Type {
		case domainErrors.ErrTypeInvalidPlan:
			return pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, requestErr.Message, err)
		case domainErrors.ErrTypeRequestNotFound:
			return pkgerrors.NewAppError(pkgerrors.ErrNotFound, "payment request not found", err)
		case domainErrors.ErrTypeRequestExpired:
			return pkgerrors.NewAppError(pkgerrors.ErrConflict, "payment request has expired", err)
		default:
			return pkgerrors.NewAppError(pkgerrors.ErrInternal, "payment request could not be processed", err)
		}
	case errors.As(err, &statusErr):
		return pkgerrors.NewAppError(pkgerrors.ErrConflict, "payment request is not in a state that allows this action", err)
	case errors.As(err, &inconsistent):
		return pkgerrors.NewAppError(pkgerrors.ErrInconsistency, "payment verified but plan activation failed", err)
	case errors.As(err, &extractErr):
		if extractErr.IsFormat() {
			return pkgerrors.NewAppError(pkgerrors.ErrUnavailable, "could not read payment details from screenshot", err)
		}
		return pkgerrors.NewAppError(pkgerrors.ErrUnavailable, "screenshot reader unavailable", err)
	case errors.Is(err, domainErrors.ErrSubscriptionNotFound):
		return pkgerrors.NewAppError(pkgerrors.ErrNotFound, "no active subscription", err)
	default:
		return pkgerrors.NewAppError(pkgerrors.ErrInternal, "internal server error", err)
	}
}

// respondError logs server-side failures and writes the mapped error body
func respondError(c echo.Context, logger *zap.Logger, err error, msg string, fields ...zap.Field) error {
	appErr := toAppError(err)
	if pkgerrors.ToHTTPStatus(appErr.Code()) >= 500 {
		pkgerrors.LogError(logger, appErr, msg, fields...)
	} else {
		logger.Warn(msg, append(fields, zap.String("error_code", appErr.Code()), zap.Error(err))...)
	}
	return pkgerrors.WriteJSON(c, appErr)
}
