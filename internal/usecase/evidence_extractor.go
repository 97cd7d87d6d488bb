package usecase

import (
	"context"
	"time"

	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	"go.uber.org/zap"
)

// ExtractionPrompt is sent with every screenshot.
const ExtractionPrompt = `You are reading a screenshot of an MMG (Mobile Money Guyana) payment confirmation.
Return ONLY a JSON object with exactly these keys and nothing else:
{"amount": number|null, "transaction_id": string|null, "reference_code": string|null, "datetime": string|null, "sender": string|null, "receiver": string|null}
Rules:
- amount is the transferred amount as a plain number without currency symbols or separators.
- reference_code is the 24 character code from the payment message or note, copied exactly.
- datetime is the transaction time in ISO-8601 if visible.
- sender and receiver are the phone numbers or names shown for each party.
- Use null for anything you cannot read with confidence. Do not guess.`

// ExtractionResult carries parsed fields along with the verbatim model output.
type ExtractionResult struct {
	Fields   entity.ExtractedFields
	Raw      string
	Provider string
}

// EvidenceExtractor reads payment fields from a confirmation screenshot.
type EvidenceExtractor struct {
	model   provider.VisionModel
	timeout time.Duration
	logger  *zap.Logger
}

func NewEvidenceExtractor(model provider.VisionModel, timeout time.Duration, logger *zap.Logger) *EvidenceExtractor {
	return &EvidenceExtractor{
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Extract calls the vision model under a deadline and parses its answer.
// Model failures return EXTRACTION_SERVICE errors; unusable answers return
// EXTRACTION_FORMAT errors that keep the raw text.
func (e *EvidenceExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*ExtractionResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := e.model.GenerateContent(ctx, ExtractionPrompt, image, mimeType)
	duration := time.Since(start)
	if err != nil {
		e.logger.Error("Vision model call failed",
			zap.String("provider", e.model.Name()),
			zap.String("step", "generate_content"),
			zap.String("status", "failed"),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, domainErrors.NewExtractionServiceError(err)
	}

	fields, err := ParseExtraction(raw)
	if err != nil {
		e.logger.Warn("Vision model returned unparseable output",
			zap.String("provider", e.model.Name()),
			zap.String("step", "parse_response"),
			zap.String("status", "failed"),
			zap.Int("raw_length", len(raw)))
		return nil, err
	}

	e.logger.Info("Screenshot extracted",
		zap.String("provider", e.model.Name()),
		zap.String("step", "parse_response"),
		zap.String("status", "success"),
		zap.Duration("duration", duration),
		zap.Bool("has_amount", fields.Amount != nil),
		zap.Bool("has_reference_code", fields.ReferenceCode != nil),
		zap.Bool("has_transaction_id", fields.TransactionID != nil))

	return &ExtractionResult{
		Fields:   *fields,
		Raw:      raw,
		Provider: e.model.Name(),
	}, nil
}
