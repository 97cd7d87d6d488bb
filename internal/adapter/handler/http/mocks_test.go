package http

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRequestUsecase struct {
	mock.Mock
}

func (m *MockPaymentRequestUsecase) CreateRequest(ctx context.Context, userID, rawPlan string) (*entity.PaymentRequest, error) {
	args := m.Called(ctx, userID, rawPlan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestUsecase) GetRequestForUser(ctx context.Context, userID string, id uuid.UUID) (*entity.PaymentRequest, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestUsecase) ListRequestsForUser(ctx context.Context, userID string) ([]*entity.PaymentRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentRequest), args.Error(1)
}

type MockPayerUploadUsecase struct {
	mock.Mock
}

func (m *MockPayerUploadUsecase) UploadPaymentScreenshot(ctx context.Context, userID string, requestID uuid.UUID, image usecase.UploadedImage) (*entity.Extraction, error) {
	args := m.Called(ctx, userID, requestID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Extraction), args.Error(1)
}

type MockSubscriptionReader struct {
	mock.Mock
}

func (m *MockSubscriptionReader) GetSubscription(ctx context.Context, userID string) (*entity.UserSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserSubscription), args.Error(1)
}

type MockNotificationReader struct {
	mock.Mock
}

func (m *MockNotificationReader) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

type MockAdminVerificationUsecase struct {
	mock.Mock
}

func (m *MockAdminVerificationUsecase) AdminUploadCounterScreenshot(ctx context.Context, adminID string, requestID uuid.UUID, image usecase.UploadedImage) (*entity.VerificationResult, error) {
	args := m.Called(ctx, adminID, requestID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationResult), args.Error(1)
}

func (m *MockAdminVerificationUsecase) Reconcile(ctx context.Context, adminID string, requestID uuid.UUID) (*entity.VerificationResult, error) {
	args := m.Called(ctx, adminID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationResult), args.Error(1)
}

type MockAdminReviewUsecase struct {
	mock.Mock
}

func (m *MockAdminReviewUsecase) ListRequests(ctx context.Context, filter entity.PaymentRequestFilter) (*entity.PaginatedPaymentRequests, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaginatedPaymentRequests), args.Error(1)
}

func (m *MockAdminReviewUsecase) GetRequestDetail(ctx context.Context, id uuid.UUID) (*usecase.RequestDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RequestDetail), args.Error(1)
}

func (m *MockAdminReviewUsecase) ExportRequests(ctx context.Context, filter entity.PaymentRequestFilter, w io.Writer) (int, error) {
	args := m.Called(ctx, filter, w)
	return args.Int(0), args.Error(1)
}
