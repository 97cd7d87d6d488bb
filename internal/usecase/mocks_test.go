package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockVisionModel is a mock implementation of provider.VisionModel
type MockVisionModel struct {
	mock.Mock
}

func (m *MockVisionModel) GenerateContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, prompt, image, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockVisionModel) Name() string {
	return "mock"
}

// MockBlobStorage is a mock implementation of provider.BlobStorage
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	args := m.Called(ctx, path, data, contentType)
	return args.Error(0)
}

func (m *MockBlobStorage) Download(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStorage) CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, path, ttl)
	return args.String(0), args.Error(1)
}

// MockPaymentRequestRepository is a mock implementation of PaymentRequestRepository
type MockPaymentRequestRepository struct {
	mock.Mock
}

func (m *MockPaymentRequestRepository) Create(ctx context.Context, req *entity.PaymentRequest, event *entity.PaymentEvent) error {
	args := m.Called(ctx, req, event)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.PaymentRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) List(ctx context.Context, filter entity.PaymentRequestFilter) ([]*entity.PaymentRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.PaymentRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRequestRepository) Transition(ctx context.Context, id uuid.UUID, from []entity.PaymentStatus, to entity.PaymentStatus, changes entity.StatusChanges, event *entity.PaymentEvent) error {
	args := m.Called(ctx, id, from, to, changes, event)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) RecordError(ctx context.Context, id uuid.UUID, message string, event *entity.PaymentEvent) error {
	args := m.Called(ctx, id, message, event)
	return args.Error(0)
}

// MockExtractionRepository is a mock implementation of ExtractionRepository
type MockExtractionRepository struct {
	mock.Mock
}

func (m *MockExtractionRepository) Save(ctx context.Context, extraction *entity.Extraction) error {
	args := m.Called(ctx, extraction)
	return args.Error(0)
}

func (m *MockExtractionRepository) FindLatest(ctx context.Context, requestID uuid.UUID, kind entity.ExtractionKind) (*entity.Extraction, error) {
	args := m.Called(ctx, requestID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Extraction), args.Error(1)
}

func (m *MockExtractionRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.Extraction, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Extraction), args.Error(1)
}

// MockEventRepository is a mock implementation of PaymentEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, event *entity.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entity.PaymentEvent, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentEvent), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, subscription *entity.UserSubscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*entity.UserSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserSubscription), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateCelebration(ctx context.Context, celebration *entity.Celebration) error {
	args := m.Called(ctx, celebration)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

// MockMailer is a mock implementation of provider.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	args := m.Called(ctx, recipients, subject, body)
	return args.Error(0)
}

// MockPublisher is a mock implementation of provider.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

// MockIdentityService is a mock implementation of provider.IdentityService
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) GetUserByID(ctx context.Context, userID string) (*entity.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Identity), args.Error(1)
}
