package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/usecase"
)

const screenshotField = "file"

var allowedScreenshotTypes = []string{"image/png", "image/jpeg", "image/webp"}

// readScreenshot loads the multipart screenshot and checks size and content type.
// The type is sniffed from the bytes; the client's Content-Type is ignored.
func readScreenshot(c echo.Context, maxBytes int64) (usecase.UploadedImage, error) {
	fh, err := c.FormFile(screenshotField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return usecase.UploadedImage{}, domainErrors.NewMissingFileError()
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return usecase.UploadedImage{}, domainErrors.NewFileTooLargeError(maxErr.Limit, maxBytes)
		}
		return usecase.UploadedImage{}, domainErrors.NewMissingFileError()
	}
	if fh.Size > maxBytes {
		return usecase.UploadedImage{}, domainErrors.NewFileTooLargeError(fh.Size, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return usecase.UploadedImage{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return usecase.UploadedImage{}, err
	}
	if int64(len(data)) > maxBytes {
		return usecase.UploadedImage{}, domainErrors.NewFileTooLargeError(int64(len(data)), maxBytes)
	}
	if len(data) == 0 {
		return usecase.UploadedImage{}, domainErrors.NewMissingFileError()
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedScreenshotTypes...) {
		return usecase.UploadedImage{}, domainErrors.NewUnsupportedTypeError(mt.String())
	}

	return usecase.UploadedImage{
		Data:      data,
		MimeType:  mt.String(),
		Extension: mt.Extension(),
	}, nil
}
