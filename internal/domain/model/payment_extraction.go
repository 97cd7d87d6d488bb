package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentExtraction represents one vision-model extraction of a screenshot
type PaymentExtraction struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_payment_extractions_request_kind,priority:1" json:"request_id"`
	Kind          string           `gorm:"size:20;not null;index:idx_payment_extractions_request_kind,priority:2" json:"kind"`
	Amount        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount,omitempty"`
	TransactionID *string          `gorm:"size:128" json:"transaction_id,omitempty"`
	ReferenceCode *string          `gorm:"size:24" json:"reference_code,omitempty"`
	Timestamp     *string          `gorm:"column:extracted_datetime;size:64" json:"datetime,omitempty"`
	Sender        *string          `gorm:"size:128" json:"sender,omitempty"`
	Receiver      *string          `gorm:"size:128" json:"receiver,omitempty"`
	ImagePath     *string          `gorm:"size:255" json:"image_path,omitempty"`
	RawResponse   string           `gorm:"type:text;not null" json:"raw_response"`
	CreatedAt     time.Time        `gorm:"not null" json:"created_at"`

	// Relations
	Request *PaymentRequest `gorm:"foreignKey:RequestID" json:"-"`
}

// TableName specifies the table name for GORM
func (PaymentExtraction) TableName() string {
	return "payment_extractions"
}
