package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest represents an MMG payment request row
type PaymentRequest struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                string          `gorm:"column:user_id;not null;size:64;index:idx_payment_requests_user_created,priority:1" json:"user_id"`
	Plan                  string          `gorm:"size:20;not null" json:"plan"`
	AmountExpected        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_expected"`
	Currency              string          `gorm:"size:3;not null" json:"currency"`
	ReferenceCode         string          `gorm:"size:24;not null;uniqueIndex:idx_payment_requests_reference_code" json:"reference_code"`
	ReferenceSecretSealed string          `gorm:"column:reference_secret_sealed;not null" json:"-"`
	GeneratedMessage      string          `gorm:"not null" json:"generated_message"`
	PayeeIdentifier       string          `gorm:"size:64;not null" json:"payee_identifier"`
	Status                string          `gorm:"size:20;not null;index" json:"status"`
	LastError             *string         `json:"last_error,omitempty"`
	UserScreenshotPath    *string         `gorm:"size:255" json:"user_screenshot_path,omitempty"`
	AdminScreenshotPath   *string         `gorm:"size:255" json:"admin_screenshot_path,omitempty"`
	CreatedAt             time.Time       `gorm:"not null;index:idx_payment_requests_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	UserUploadedAt        *time.Time      `json:"user_uploaded_at,omitempty"`
	AdminUploadedAt       *time.Time      `json:"admin_uploaded_at,omitempty"`
	VerifiedAt            *time.Time      `json:"verified_at,omitempty"`
	RejectedAt            *time.Time      `json:"rejected_at,omitempty"`
	ExpiredAt             *time.Time      `json:"expired_at,omitempty"`
	ExpiresAt             time.Time       `gorm:"not null" json:"expires_at"`
}

// TableName specifies the table name for GORM
func (PaymentRequest) TableName() string {
	return "payment_requests"
}
