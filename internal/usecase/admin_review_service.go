package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "MMG Requests"

// RequestDetail is the admin view of one request with its full audit trail.
type RequestDetail struct {
	Request            *entity.PaymentRequest `json:"request"`
	Extractions        []*entity.Extraction   `json:"extractions"`
	Events             []*entity.PaymentEvent `json:"events"`
	UserScreenshotURL  string                 `json:"user_screenshot_url,omitempty"`
	AdminScreenshotURL string                 `json:"admin_screenshot_url,omitempty"`
}

// AdminReviewService serves admin read paths.
type AdminReviewService struct {
	requests     *PaymentRequestService
	extractions  domainRepo.ExtractionRepository
	events       domainRepo.PaymentEventRepository
	blobs        provider.BlobStorage
	signedURLTTL time.Duration
	logger       *zap.Logger
}

func NewAdminReviewService(
	requests *PaymentRequestService,
	extractions domainRepo.ExtractionRepository,
	events domainRepo.PaymentEventRepository,
	blobs provider.BlobStorage,
	signedURLTTL time.Duration,
	logger *zap.Logger,
) *AdminReviewService {
	return &AdminReviewService{
		requests:     requests,
		extractions:  extractions,
		events:       events,
		blobs:        blobs,
		signedURLTTL: signedURLTTL,
		logger:       logger,
	}
}

// ListRequests is the paginated admin queue, including last_error.
func (s *AdminReviewService) ListRequests(ctx context.Context, filter entity.PaymentRequestFilter) (*entity.PaginatedPaymentRequests, error) {
	return s.requests.ListRequests(ctx, filter)
}

// GetRequestDetail loads a request with every extraction and event.
// Screenshot links are best effort; a signing failure leaves the URL empty.
func (s *AdminReviewService) GetRequestDetail(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	req, err := s.requests.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domainErrors.NewRequestNotFoundError(id.String())
	}

	extractions, err := s.extractions.FindByRequestID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load extractions: %w", err)
	}
	events, err := s.events.FindByRequestID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	return &RequestDetail{
		Request:            req,
		Extractions:        extractions,
		Events:             events,
		UserScreenshotURL:  s.signedURL(ctx, req.UserScreenshotPath),
		AdminScreenshotURL: s.signedURL(ctx, req.AdminScreenshotPath),
	}, nil
}

func (s *AdminReviewService) signedURL(ctx context.Context, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	url, err := s.blobs.CreateSignedURL(ctx, *path, s.signedURLTTL)
	if err != nil {
		s.logger.Warn("Failed to sign screenshot URL",
			zap.String("path", *path),
			zap.String("step", "sign_url"),
			zap.Error(err))
		return ""
	}
	return url
}

// ExportRequests writes every request matching filter to an xlsx workbook.
// Pagination in filter is ignored; all pages are walked.
func (s *AdminReviewService) ExportRequests(ctx context.Context, filter entity.PaymentRequestFilter, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("failed to prepare sheet: %w", err)
	}

	headers := []string{"ID", "User", "Plan", "Amount", "Currency", "Reference", "Status", "Last Error", "Created", "User Uploaded", "Admin Uploaded", "Decided", "Expires"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	styleHeader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		f.SetCellStyle(exportSheet, "A1", lastCol+"1", styleHeader)
	}

	filter.Page = 1
	filter.Limit = entity.MaxPageSize
	row := 2
	for {
		page, err := s.requests.ListRequests(ctx, filter)
		if err != nil {
			return 0, err
		}
		for _, req := range page.Data {
			values := []interface{}{
				req.ID.String(),
				req.UserID,
				req.Plan.String(),
				req.AmountExpected.InexactFloat64(),
				req.Currency,
				req.ReferenceCode,
				string(req.Status),
				stringOrEmpty(req.LastError),
				req.CreatedAt.Format(time.RFC3339),
				timeOrEmpty(req.UserUploadedAt),
				timeOrEmpty(req.AdminUploadedAt),
				timeOrEmpty(decidedAt(req)),
				req.ExpiresAt.Format(time.RFC3339),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(exportSheet, cell, v)
			}
			row++
		}
		if filter.Page >= page.Pagination.TotalPages {
			break
		}
		filter.Page++
	}

	f.SetColWidth(exportSheet, "A", "A", 38)
	f.SetColWidth(exportSheet, "B", "B", 38)
	f.SetColWidth(exportSheet, "F", "F", 28)
	f.SetColWidth(exportSheet, "H", "H", 40)
	f.SetColWidth(exportSheet, "I", "M", 22)

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	exported := row - 2
	s.logger.Info("Payment requests exported",
		zap.Int("rows", exported),
		zap.String("step", "export"),
		zap.String("status", "success"))
	return exported, nil
}

func decidedAt(req *entity.PaymentRequest) *time.Time {
	switch {
	case req.VerifiedAt != nil:
		return req.VerifiedAt
	case req.RejectedAt != nil:
		return req.RejectedAt
	default:
		return req.ExpiredAt
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
