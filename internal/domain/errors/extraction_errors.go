package errors

import "fmt"

// Extraction error types
const (
	ErrTypeExtractionFormat  = "EXTRACTION_FORMAT"
	ErrTypeExtractionService = "EXTRACTION_SERVICE"
)

// ExtractionError is returned by the evidence extractor. Raw holds whatever the
// model answered, if anything, so callers can keep it for audit.
type ExtractionError struct {
	Type    string
	Message string
	Raw     string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s - %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// IsFormat reports whether the model answered but not with usable JSON.
func (e *ExtractionError) IsFormat() bool {
	return e.Type == ErrTypeExtractionFormat
}

// NewExtractionFormatError creates an error for an unparseable model answer
func NewExtractionFormatError(message, raw string, cause error) *ExtractionError {
	return &ExtractionError{
		Type:    ErrTypeExtractionFormat,
		Message: message,
		Raw:     raw,
		Cause:   cause,
	}
}

// NewExtractionServiceError creates an error for an unreachable or failing model
func NewExtractionServiceError(cause error) *ExtractionError {
	return &ExtractionError{
		Type:    ErrTypeExtractionService,
		Message: "vision model request failed",
		Cause:   cause,
	}
}
