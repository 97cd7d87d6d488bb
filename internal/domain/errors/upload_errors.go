package errors

import "fmt"

// UploadValidationError is returned at the boundary for a missing, oversized or
// non-image screenshot.
type UploadValidationError struct {
	Reason   string
	Size     int64
	MaxSize  int64
	MimeType string
}

func (e *UploadValidationError) Error() string {
	switch {
	case e.MaxSize > 0:
		return fmt.Sprintf("screenshot too large: %d bytes, limit %d", e.Size, e.MaxSize)
	case e.MimeType != "":
		return fmt.Sprintf("unsupported screenshot type: %s", e.MimeType)
	default:
		return e.Reason
	}
}

// NewMissingFileError creates an error for an upload without a file
func NewMissingFileError() *UploadValidationError {
	return &UploadValidationError{Reason: "screenshot file is required"}
}

// NewFileTooLargeError creates an error for an upload over the size limit
func NewFileTooLargeError(size, maxSize int64) *UploadValidationError {
	return &UploadValidationError{
		Reason:  "screenshot too large",
		Size:    size,
		MaxSize: maxSize,
	}
}

// NewUnsupportedTypeError creates an error for a non-image upload
func NewUnsupportedTypeError(mimeType string) *UploadValidationError {
	return &UploadValidationError{
		Reason:   "unsupported screenshot type",
		MimeType: mimeType,
	}
}
