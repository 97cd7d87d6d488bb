package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentHandlerMocks struct {
	requests      *MockPaymentRequestUsecase
	uploads       *MockPayerUploadUsecase
	subscriptions *MockSubscriptionReader
	notifications *MockNotificationReader
}

func newPaymentHandlerForTest() (*PaymentHandler, paymentHandlerMocks) {
	m := paymentHandlerMocks{
		requests:      new(MockPaymentRequestUsecase),
		uploads:       new(MockPayerUploadUsecase),
		subscriptions: new(MockSubscriptionReader),
		notifications: new(MockNotificationReader),
	}
	h := NewPaymentHandler(m.requests, m.uploads, m.subscriptions, m.notifications, testMaxSize, zap.NewNop())
	return h, m
}

func (m paymentHandlerMocks) assertExpectations(t *testing.T) {
	m.requests.AssertExpectations(t)
	m.uploads.AssertExpectations(t)
	m.subscriptions.AssertExpectations(t)
	m.notifications.AssertExpectations(t)
}

func TestPaymentHandler_CreateRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(m paymentHandlerMocks)
		wantStatus int
		wantCode   string
	}{
		{
			name: "creates request",
			body: `{"plan":"pro"}`,
			mockSetup: func(m paymentHandlerMocks) {
				m.requests.On("CreateRequest", mock.Anything, testUserID, "pro").Return(sampleRequest(), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "unknown plan",
			body: `{"plan":"gold"}`,
			mockSetup: func(m paymentHandlerMocks) {
				m.requests.On("CreateRequest", mock.Anything, testUserID, "gold").
					Return(nil, domainErrors.NewInvalidPlanError("gold"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "missing plan",
			body:       `{}`,
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "malformed body",
			body:       `{"plan":`,
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name: "pricing misconfigured",
			body: `{"plan":"pro"}`,
			mockSetup: func(m paymentHandlerMocks) {
				m.requests.On("CreateRequest", mock.Anything, testUserID, "pro").
					Return(nil, domainErrors.NewPricingConfigError("pro"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newPaymentHandlerForTest()
			tt.mockSetup(m)

			c, rec := newContext(newEcho(), http.MethodPost, "/api/v1/mmg/requests", strings.NewReader(tt.body), "application/json", payer())
			require.NoError(t, h.CreateRequest(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_CreateRequest_ResponseShape(t *testing.T) {
	h, m := newPaymentHandlerForTest()
	req := sampleRequest()
	m.requests.On("CreateRequest", mock.Anything, testUserID, "pro").Return(req, nil)

	c, rec := newContext(newEcho(), http.MethodPost, "/api/v1/mmg/requests", strings.NewReader(`{"plan":"pro"}`), "application/json", payer())
	require.NoError(t, h.CreateRequest(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, req.ID.String(), body["request_id"])
	assert.Equal(t, req.ReferenceCode, body["reference_code"])
	assert.Equal(t, req.GeneratedMessage, body["generated_message"])
	assert.Equal(t, "GYD", body["currency"])
	assert.Equal(t, "592-600-0000", body["payee_identifier"])
	assert.NotContains(t, rec.Body.String(), req.ReferenceSecret)
}

func TestPaymentHandler_GetRequest(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		mockSetup  func(m paymentHandlerMocks)
		wantStatus int
		check      func(t *testing.T, body string)
	}{
		{
			name: "payer view hides diagnostics",
			id:   testRequestID.String(),
			mockSetup: func(m paymentHandlerMocks) {
				m.requests.On("GetRequestForUser", mock.Anything, testUserID, testRequestID).Return(sampleRequest(), nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"waiting_for_verification"`)
				assert.NotContains(t, body, "last_error")
				assert.NotContains(t, body, "EXTRACTION_SERVICE")
				assert.NotContains(t, body, "s3cr3t")
				assert.NotContains(t, body, "user_id")
			},
		},
		{
			name: "other user's request is not found",
			id:   testRequestID.String(),
			mockSetup: func(m paymentHandlerMocks) {
				m.requests.On("GetRequestForUser", mock.Anything, testUserID, testRequestID).
					Return(nil, domainErrors.NewRequestNotFoundError(testRequestID.String()))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed id is not found",
			id:         "not-a-uuid",
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newPaymentHandlerForTest()
			tt.mockSetup(m)

			c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/requests/"+tt.id, nil, "", payer())
			require.NoError(t, h.GetRequest(withID(c, tt.id)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				tt.check(t, rec.Body.String())
			}
			m.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_ListRequests(t *testing.T) {
	h, m := newPaymentHandlerForTest()
	m.requests.On("ListRequestsForUser", mock.Anything, testUserID).Return([]*entity.PaymentRequest{sampleRequest()}, nil)

	c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/requests", nil, "", payer())
	require.NoError(t, h.ListRequests(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "waiting_for_verification", body.Data[0]["status"])
	assert.NotContains(t, body.Data[0], "last_error")
	m.assertExpectations(t)
}

func TestPaymentHandler_UploadScreenshot(t *testing.T) {
	amount := decimal.NewFromInt(3762)
	ref := "ABCD2345EFGH6789JKLM2345"

	tests := []struct {
		name       string
		field      string
		data       []byte
		mockSetup  func(m paymentHandlerMocks)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "extracted fields returned",
			field: "file",
			data:  pngBytes,
			mockSetup: func(m paymentHandlerMocks) {
				m.uploads.On("UploadPaymentScreenshot", mock.Anything, testUserID, testRequestID,
					mock.MatchedBy(func(img usecase.UploadedImage) bool {
						return img.MimeType == "image/png" && img.Extension == ".png" && bytes.Equal(img.Data, pngBytes)
					})).
					Return(&entity.Extraction{ExtractedFields: entity.ExtractedFields{Amount: &amount, ReferenceCode: &ref}}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   ref,
		},
		{
			name:  "extraction failure is reported as processing",
			field: "file",
			data:  pngBytes,
			mockSetup: func(m paymentHandlerMocks) {
				m.uploads.On("UploadPaymentScreenshot", mock.Anything, testUserID, testRequestID, mock.Anything).
					Return(nil, domainErrors.NewExtractionFormatError("no JSON object", "I cannot read this", nil))
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `"status":"processing"`,
		},
		{
			name:  "model outage is reported as processing",
			field: "file",
			data:  pngBytes,
			mockSetup: func(m paymentHandlerMocks) {
				m.uploads.On("UploadPaymentScreenshot", mock.Anything, testUserID, testRequestID, mock.Anything).
					Return(nil, domainErrors.NewExtractionServiceError(errors.New("timeout")))
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `"status":"processing"`,
		},
		{
			name:       "missing file",
			field:      "",
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "screenshot file is required",
		},
		{
			name:       "oversized file",
			field:      "file",
			data:       append(append([]byte{}, pngBytes...), make([]byte, testMaxSize)...),
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "screenshot too large",
		},
		{
			name:       "non-image file",
			field:      "file",
			data:       []byte("just some text, not a screenshot"),
			mockSetup:  func(m paymentHandlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "unsupported screenshot type",
		},
		{
			name:  "expired request",
			field: "file",
			data:  pngBytes,
			mockSetup: func(m paymentHandlerMocks) {
				m.uploads.On("UploadPaymentScreenshot", mock.Anything, testUserID, testRequestID, mock.Anything).
					Return(nil, domainErrors.NewRequestExpiredError(testRequestID.String()))
			},
			wantStatus: http.StatusConflict,
			wantBody:   "payment request has expired",
		},
		{
			name:  "already parsed",
			field: "file",
			data:  pngBytes,
			mockSetup: func(m paymentHandlerMocks) {
				m.uploads.On("UploadPaymentScreenshot", mock.Anything, testUserID, testRequestID, mock.Anything).
					Return(nil, domainErrors.NewPaymentStatusError(testRequestID.String(), "ai_parsed", "user_uploaded"))
			},
			wantStatus: http.StatusConflict,
			wantBody:   "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newPaymentHandlerForTest()
			tt.mockSetup(m)

			body, contentType := multipartBody(t, tt.field, "receipt.png", tt.data)
			c, rec := newContext(newEcho(), http.MethodPost, "/api/v1/mmg/requests/"+testRequestID.String()+"/screenshot", body, contentType, payer())
			require.NoError(t, h.UploadScreenshot(withID(c, testRequestID.String())))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			m.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_GetSubscription(t *testing.T) {
	t.Run("current plan", func(t *testing.T) {
		h, m := newPaymentHandlerForTest()
		m.subscriptions.On("GetSubscription", mock.Anything, testUserID).
			Return(&entity.UserSubscription{UserID: testUserID, Plan: entity.PlanPro, Status: entity.SubscriptionActive}, nil)

		c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/subscription", nil, "", payer())
		require.NoError(t, h.GetSubscription(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"plan":"pro"`)
	})

	t.Run("none yet", func(t *testing.T) {
		h, m := newPaymentHandlerForTest()
		m.subscriptions.On("GetSubscription", mock.Anything, testUserID).Return(nil, domainErrors.ErrSubscriptionNotFound)

		c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/subscription", nil, "", payer())
		require.NoError(t, h.GetSubscription(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPaymentHandler_ListNotifications(t *testing.T) {
	t.Run("passes limit", func(t *testing.T) {
		h, m := newPaymentHandlerForTest()
		m.notifications.On("ListForUser", mock.Anything, testUserID, 5).
			Return([]*entity.Notification{{UserID: testUserID, Type: entity.NotificationPlanPaidSuccess}}, nil)

		c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/notifications?limit=5", nil, "", payer())
		require.NoError(t, h.ListNotifications(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), entity.NotificationPlanPaidSuccess)
		m.assertExpectations(t)
	})

	t.Run("bad limit", func(t *testing.T) {
		h, _ := newPaymentHandlerForTest()
		c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/notifications?limit=ten", nil, "", payer())
		require.NoError(t, h.ListNotifications(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPaymentHandler_RequiresAuth(t *testing.T) {
	h, _ := newPaymentHandlerForTest()
	c, rec := newContext(newEcho(), http.MethodGet, "/api/v1/mmg/requests", nil, "", nil)
	require.NoError(t, h.ListRequests(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
