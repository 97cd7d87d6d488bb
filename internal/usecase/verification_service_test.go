package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockPaymentNotifier is a mock implementation of PaymentNotifier
type MockPaymentNotifier struct {
	mock.Mock
}

func (m *MockPaymentNotifier) PaymentVerified(ctx context.Context, req *entity.PaymentRequest) {
	m.Called(ctx, req)
}

func (m *MockPaymentNotifier) PaymentAwaitingReview(ctx context.Context, req *entity.PaymentRequest) {
	m.Called(ctx, req)
}

type verificationFixture struct {
	requests      *MockPaymentRequestRepository
	extractions   *MockExtractionRepository
	events        *MockEventRepository
	blobs         *MockBlobStorage
	vision        *MockVisionModel
	subscriptions *MockSubscriptionRepository
	notifier      *MockPaymentNotifier
	service       *VerificationService
	now           time.Time
}

func newVerificationFixture() *verificationFixture {
	logger := zap.NewNop()
	f := &verificationFixture{
		requests:      new(MockPaymentRequestRepository),
		extractions:   new(MockExtractionRepository),
		events:        new(MockEventRepository),
		blobs:         new(MockBlobStorage),
		vision:        new(MockVisionModel),
		subscriptions: new(MockSubscriptionRepository),
		notifier:      new(MockPaymentNotifier),
		now:           scenarioNow,
	}
	clock := func() time.Time { return f.now }

	requestService := NewPaymentRequestService(f.requests, NewReferenceGenerator(), testSettings(), logger)
	requestService.now = clock
	activator := NewSubscriptionActivator(f.subscriptions, logger)
	activator.now = clock

	f.service = NewVerificationService(VerificationDeps{
		Requests:    requestService,
		Extractions: f.extractions,
		Events:      f.events,
		Blobs:       f.blobs,
		Extractor:   NewEvidenceExtractor(f.vision, time.Second, logger),
		Reconciler:  NewReconciler(testRules()),
		Activator:   activator,
		Notifier:    f.notifier,
	}, logger)
	f.service.now = clock

	return f
}

func (f *verificationFixture) assertExpectations(t *testing.T) {
	f.requests.AssertExpectations(t)
	f.extractions.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.blobs.AssertExpectations(t)
	f.vision.AssertExpectations(t)
	f.subscriptions.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func (f *verificationFixture) expectTransition(req *entity.PaymentRequest, from, to entity.PaymentStatus, err error) {
	f.requests.On("Transition", mock.Anything, req.ID, []entity.PaymentStatus{from}, to, mock.Anything, mock.Anything).
		Return(err).Once()
}

func pendingRequest(status entity.PaymentStatus) *entity.PaymentRequest {
	req := scenarioRequest()
	req.Status = status
	return req
}

var pngImage = UploadedImage{Data: []byte("png-bytes"), MimeType: "image/png", Extension: ".png"}

const payerAnswer = `{"amount": 3762, "transaction_id": "MMG123", "reference_code": "ABCD1234EFGH5678IJKL9999", "datetime": null, "sender": "592-611-1111", "receiver": "592-600-0000"}`

func TestVerificationService_UploadPaymentScreenshot(t *testing.T) {
	t.Run("stores, parses and advances to ai_parsed", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusGenerated)

		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.blobs.On("Upload", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.HasPrefix(p, "mmg/"+req.ID.String()+"/payer_submitted/") && strings.HasSuffix(p, ".png")
		}), pngImage.Data, "image/png").Return(nil)
		f.expectTransition(req, entity.StatusGenerated, entity.StatusUserUploaded, nil)
		f.vision.On("GenerateContent", mock.Anything, ExtractionPrompt, pngImage.Data, "image/png").Return(payerAnswer, nil)
		f.extractions.On("Save", mock.Anything, mock.MatchedBy(func(e *entity.Extraction) bool {
			return e.Kind == entity.ExtractionPayer && e.RawResponse == payerAnswer && e.RequestID == req.ID
		})).Return(nil)
		f.expectTransition(req, entity.StatusUserUploaded, entity.StatusAIParsed, nil)
		f.notifier.On("PaymentAwaitingReview", mock.Anything, req).Return()

		ext, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		require.NoError(t, err)
		assert.Equal(t, scenarioRef, *ext.ReferenceCode)
		assert.True(t, decimal.NewFromInt(3762).Equal(*ext.Amount))
		assert.Equal(t, entity.StatusAIParsed, req.Status)
		assert.NotNil(t, req.UserUploadedAt)
		f.assertExpectations(t)
	})

	t.Run("non-json answer keeps user_uploaded and records last_error", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusGenerated)

		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.expectTransition(req, entity.StatusGenerated, entity.StatusUserUploaded, nil)
		f.vision.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("Sorry, I cannot help with that.", nil)
		f.requests.On("RecordError", mock.Anything, req.ID, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, domainErrors.ErrTypeExtractionFormat)
		}), mock.MatchedBy(func(e *entity.PaymentEvent) bool {
			return e.EventType == entity.EventUserExtractionFailed &&
				e.Detail["raw_response"] == "Sorry, I cannot help with that."
		})).Return(nil)

		ext, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		assert.Nil(t, ext)
		var extractionErr *domainErrors.ExtractionError
		if assert.ErrorAs(t, err, &extractionErr) {
			assert.True(t, extractionErr.IsFormat())
		}
		assert.Equal(t, entity.StatusUserUploaded, req.Status)
		require.NotNil(t, req.LastError)
		f.extractions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "PaymentAwaitingReview", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("failed save logs when the diagnostic cannot be recorded", func(t *testing.T) {
		f := newVerificationFixture()
		core, logs := observer.New(zap.ErrorLevel)
		f.service.logger = zap.New(core)
		req := pendingRequest(entity.StatusGenerated)

		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.expectTransition(req, entity.StatusGenerated, entity.StatusUserUploaded, nil)
		f.vision.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(payerAnswer, nil)
		f.extractions.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		f.requests.On("RecordError", mock.Anything, req.ID, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "disk full")
		}), mock.Anything).Return(errors.New("connection reset"))

		ext, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		assert.Nil(t, ext)
		assert.ErrorContains(t, err, "disk full")
		assert.Equal(t, entity.StatusUserUploaded, req.Status)

		recorded := logs.FilterField(zap.String("step", "record_failure")).All()
		require.Len(t, recorded, 1)
		assert.Contains(t, recorded[0].ContextMap()["error"], "connection reset")
		f.notifier.AssertNotCalled(t, "PaymentAwaitingReview", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("model outage is an extraction service error", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusUserUploaded)

		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.expectTransition(req, entity.StatusUserUploaded, entity.StatusUserUploaded, nil)
		f.vision.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("503 unavailable"))
		f.requests.On("RecordError", mock.Anything, req.ID, mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		var extractionErr *domainErrors.ExtractionError
		if assert.ErrorAs(t, err, &extractionErr) {
			assert.Equal(t, domainErrors.ErrTypeExtractionService, extractionErr.Type)
		}
		assert.Equal(t, entity.StatusUserUploaded, req.Status)
		f.assertExpectations(t)
	})

	t.Run("expired request transitions to expired", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusGenerated)
		req.ExpiresAt = f.now.Add(-time.Minute)

		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
		f.expectTransition(req, entity.StatusGenerated, entity.StatusExpired, nil)

		_, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		var reqErr *domainErrors.PaymentRequestError
		if assert.ErrorAs(t, err, &reqErr) {
			assert.Equal(t, domainErrors.ErrTypeRequestExpired, reqErr.Type)
		}
		assert.Equal(t, entity.StatusExpired, req.Status)
		f.blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("other users cannot upload", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusGenerated)
		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.service.UploadPaymentScreenshot(context.Background(), "intruder", req.ID, pngImage)

		var reqErr *domainErrors.PaymentRequestError
		if assert.ErrorAs(t, err, &reqErr) {
			assert.Equal(t, domainErrors.ErrTypeRequestNotFound, reqErr.Type)
		}
		f.assertExpectations(t)
	})

	t.Run("upload after parse is a conflict", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)
		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.service.UploadPaymentScreenshot(context.Background(), req.UserID, req.ID, pngImage)

		var statusErr *domainErrors.PaymentStatusError
		assert.ErrorAs(t, err, &statusErr)
		f.assertExpectations(t)
	})
}

func payerExtraction(req *entity.PaymentRequest) *entity.Extraction {
	ext := extraction(entity.ExtractionPayer, scenarioRef, 3762)
	ext.RequestID = req.ID
	return ext
}

func (f *verificationFixture) expectAdminUpload(req *entity.PaymentRequest, answer string) {
	f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)
	f.blobs.On("Upload", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "/admin_submitted/")
	}), mock.Anything, mock.Anything).Return(nil)
	f.expectTransition(req, entity.StatusAIParsed, entity.StatusAdminUploaded, nil)
	f.vision.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(answer, nil)
	f.extractions.On("Save", mock.Anything, mock.MatchedBy(func(e *entity.Extraction) bool {
		return e.Kind == entity.ExtractionAdmin
	})).Return(nil)
	f.extractions.On("FindLatest", mock.Anything, req.ID, entity.ExtractionPayer).Return(payerExtraction(req), nil)
}

func eventOfType(eventType entity.PaymentEventType) interface{} {
	return mock.MatchedBy(func(e *entity.PaymentEvent) bool { return e.EventType == eventType })
}

func TestVerificationService_AdminUploadCounterScreenshot(t *testing.T) {
	t.Run("matching screenshots verify and activate the plan", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)

		f.expectAdminUpload(req, payerAnswer)
		f.expectTransition(req, entity.StatusAdminUploaded, entity.StatusVerified, nil)
		f.subscriptions.On("Upsert", mock.Anything, mock.MatchedBy(func(s *entity.UserSubscription) bool {
			return s.UserID == req.UserID && s.Plan == entity.PlanPro && s.Status == entity.SubscriptionActive && s.EndsAt == nil
		})).Return(nil)
		f.events.On("Append", mock.Anything, eventOfType(entity.EventPlanUpgraded)).Return(nil)
		f.notifier.On("PaymentVerified", mock.Anything, req).Return()

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Empty(t, result.Errors)
		assert.Equal(t, entity.StatusVerified, req.Status)
		assert.NotNil(t, req.VerifiedAt)
		f.assertExpectations(t)
	})

	t.Run("admin reference mismatch rejects with reasons", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)
		answer := strings.Replace(payerAnswer, scenarioRef, "ABCD1234EFGH5678IJKL9998", 1)

		f.expectAdminUpload(req, answer)
		f.requests.On("Transition", mock.Anything, req.ID, []entity.PaymentStatus{entity.StatusAdminUploaded}, entity.StatusRejected,
			mock.MatchedBy(func(c entity.StatusChanges) bool {
				return c.LastError != nil && *c.LastError == ReasonAdminReferenceMismatch
			}), eventOfType(entity.EventAdminRejected)).Return(nil)

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, []string{ReasonAdminReferenceMismatch}, result.Errors)
		assert.Equal(t, entity.StatusRejected, req.Status)
		f.subscriptions.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "PaymentVerified", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("unreadable reference secret is rejected", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)
		req.ReferenceSecret = ""

		f.expectAdminUpload(req, payerAnswer)
		f.requests.On("Transition", mock.Anything, req.ID, []entity.PaymentStatus{entity.StatusAdminUploaded}, entity.StatusRejected,
			mock.MatchedBy(func(c entity.StatusChanges) bool {
				return c.LastError != nil && strings.Contains(*c.LastError, ReasonSecretInvalid)
			}), eventOfType(entity.EventAdminRejected)).Return(nil)

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, []string{ReasonSecretInvalid}, result.Errors)
		assert.Equal(t, entity.StatusRejected, req.Status)
		f.subscriptions.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("expired request is rejected with expiry reason", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)
		req.ExpiresAt = f.now.Add(-time.Second)

		f.expectAdminUpload(req, payerAnswer)
		f.requests.On("Transition", mock.Anything, req.ID, []entity.PaymentStatus{entity.StatusAdminUploaded}, entity.StatusRejected,
			mock.Anything, eventOfType(entity.EventAdminRejected)).Return(nil)

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Contains(t, result.Errors, ReasonRequestExpired)
		f.assertExpectations(t)
	})

	t.Run("already verified request reports status guard without writes", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusVerified)
		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		var statusErr *domainErrors.PaymentStatusError
		assert.ErrorAs(t, err, &statusErr)
		require.NotNil(t, result)
		assert.False(t, result.Verified)
		assert.Equal(t, []string{ReasonAlreadyDecided}, result.Errors)
		f.blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.requests.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("concurrent verification loses the conditional update", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)

		f.expectAdminUpload(req, payerAnswer)
		f.expectTransition(req, entity.StatusAdminUploaded, entity.StatusVerified,
			domainErrors.NewPaymentStatusError(req.ID.String(), "", string(entity.StatusVerified)))

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		assert.Nil(t, result)
		var statusErr *domainErrors.PaymentStatusError
		assert.ErrorAs(t, err, &statusErr)
		f.subscriptions.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("activation failure surfaces an inconsistency and keeps verified", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusAIParsed)

		f.expectAdminUpload(req, payerAnswer)
		f.expectTransition(req, entity.StatusAdminUploaded, entity.StatusVerified, nil)
		f.subscriptions.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
		f.events.On("Append", mock.Anything, eventOfType(entity.EventPlanUpgradeFailed)).Return(nil)

		result, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		var inconsistency *domainErrors.ReconciliationInconsistencyError
		assert.ErrorAs(t, err, &inconsistency)
		require.NotNil(t, result)
		assert.True(t, result.Verified)
		assert.Equal(t, entity.StatusVerified, req.Status)
		f.notifier.AssertNotCalled(t, "PaymentVerified", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("admin upload before payer parse is a conflict", func(t *testing.T) {
		f := newVerificationFixture()
		req := pendingRequest(entity.StatusGenerated)
		f.requests.On("FindByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", req.ID, pngImage)

		var statusErr *domainErrors.PaymentStatusError
		assert.ErrorAs(t, err, &statusErr)
		f.assertExpectations(t)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newVerificationFixture()
		id := uuid.New()
		f.requests.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.service.AdminUploadCounterScreenshot(context.Background(), "admin-1", id, pngImage)

		var reqErr *domainErrors.PaymentRequestError
		if assert.ErrorAs(t, err, &reqErr) {
			assert.Equal(t, domainErrors.ErrTypeRequestNotFound, reqErr.Type)
		}
	})
}
