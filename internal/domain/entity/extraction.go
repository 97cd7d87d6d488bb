package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtractionKind tags who submitted the screenshot an extraction came from.
type ExtractionKind string

const (
	ExtractionPayer ExtractionKind = "payer_submitted"
	ExtractionAdmin ExtractionKind = "admin_submitted"
)

// ExtractedFields is the validated shape of one vision-model answer.
// Every field is optional; absent or malformed values are nil.
type ExtractedFields struct {
	Amount        *decimal.Decimal `json:"amount"`
	TransactionID *string          `json:"transaction_id"`
	ReferenceCode *string          `json:"reference_code"`
	Timestamp     *string          `json:"datetime"`
	Sender        *string          `json:"sender"`
	Receiver      *string          `json:"receiver"`
}

// Extraction is one persisted extraction attempt.
type Extraction struct {
	ID          uuid.UUID      `json:"id"`
	RequestID   uuid.UUID      `json:"request_id"`
	Kind        ExtractionKind `json:"kind"`
	ImagePath   *string        `json:"image_path,omitempty"`
	RawResponse string         `json:"raw_response"`
	CreatedAt   time.Time      `json:"created_at"`
	ExtractedFields
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"01/02/2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"2 Jan 2006 15:04",
	"2006-01-02",
}

// ParsedTimestamp interprets the extracted datetime. Values without an
// explicit offset are read as wall-clock time in loc (UTC when nil). It
// returns false if the field is absent or matches none of the known layouts.
func (f ExtractedFields) ParsedTimestamp(loc *time.Location) (time.Time, bool) {
	if f.Timestamp == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(*f.Timestamp)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// VerificationResult is the outcome of reconciling both extractions.
type VerificationResult struct {
	Verified bool     `json:"verified"`
	Errors   []string `json:"errors"`
}
