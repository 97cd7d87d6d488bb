package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/middleware/auth"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "user-123"
	testAdminID = "admin-1"
	testMaxSize = 1024
)

var testRequestID = uuid.MustParse("7f1c2a3e-9b4d-4c1e-8a2f-1d3e5f7a9b0c")

// pngBytes is a PNG signature followed by an IHDR chunk header
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

// newContext builds a context for an authenticated caller. A nil user skips auth.
func newContext(e *echo.Echo, method, target string, body io.Reader, contentType string, user *auth.AuthUser) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func payer() *auth.AuthUser {
	return &auth.AuthUser{UserID: testUserID, Email: "payer@example.com"}
}

func admin() *auth.AuthUser {
	return &auth.AuthUser{UserID: testAdminID, Email: "ops@stashway.app"}
}

func sampleRequest() *entity.PaymentRequest {
	lastErr := "EXTRACTION_SERVICE: model unavailable"
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &entity.PaymentRequest{
		ID:               testRequestID,
		UserID:           testUserID,
		Plan:             entity.PlanPro,
		AmountExpected:   decimal.NewFromInt(3762),
		Currency:         "GYD",
		ReferenceCode:    "ABCD2345EFGH6789JKLM2345",
		ReferenceSecret:  "s3cr3t-s3cr3t-s3cr3t-s3cr3t-s3cr3t",
		GeneratedMessage: "STASHWAY PRO PAYMENT - REF:ABCD2345EFGH6789JKLM2345",
		PayeeIdentifier:  "592-600-0000",
		Status:           entity.StatusUserUploaded,
		LastError:        &lastErr,
		CreatedAt:        created,
		ExpiresAt:        created.Add(48 * time.Hour),
	}
}
