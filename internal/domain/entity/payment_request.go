package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest is a server-issued intent to receive a fixed amount for a plan.
type PaymentRequest struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              string          `json:"user_id"`
	Plan                Plan            `json:"plan"`
	AmountExpected      decimal.Decimal `json:"amount_expected"`
	Currency            string          `json:"currency"`
	ReferenceCode       string          `json:"reference_code"`
	ReferenceSecret     string          `json:"-"`
	GeneratedMessage    string          `json:"generated_message"`
	PayeeIdentifier     string          `json:"payee_identifier"`
	Status              PaymentStatus   `json:"status"`
	LastError           *string         `json:"last_error,omitempty"`
	UserScreenshotPath  *string         `json:"user_screenshot_path,omitempty"`
	AdminScreenshotPath *string         `json:"admin_screenshot_path,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UserUploadedAt      *time.Time      `json:"user_uploaded_at,omitempty"`
	AdminUploadedAt     *time.Time      `json:"admin_uploaded_at,omitempty"`
	VerifiedAt          *time.Time      `json:"verified_at,omitempty"`
	RejectedAt          *time.Time      `json:"rejected_at,omitempty"`
	ExpiredAt           *time.Time      `json:"expired_at,omitempty"`
	ExpiresAt           time.Time       `json:"expires_at"`
}

// IsExpiredAt reports whether the request can no longer be paid at now.
func (r *PaymentRequest) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// StatusChanges carries the column updates applied together with a status transition.
type StatusChanges struct {
	At             time.Time
	LastError      *string
	ClearLastError bool
	ScreenshotPath *string
}

// PaymentRequestFilter narrows admin listings.
type PaymentRequestFilter struct {
	Status *PaymentStatus
	UserID string
	PaginationParams
}

// PaginatedPaymentRequests is one page of an admin listing.
type PaginatedPaymentRequests struct {
	Data       []*PaymentRequest `json:"data"`
	Pagination PaginationMeta    `json:"pagination"`
}
