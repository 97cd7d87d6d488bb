package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stashway/stashway-backend/internal/domain/entity"
	domainErrors "github.com/stashway/stashway-backend/internal/domain/errors"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	"go.uber.org/zap"
)

// SupabaseIdentityRepository looks up users through the Supabase Auth admin API
type SupabaseIdentityRepository struct {
	client         *http.Client
	baseURL        string
	serviceRoleKey string
	logger         *zap.Logger
}

// NewSupabaseIdentityRepository creates a new Supabase identity repository.
// serviceRoleKey must be the service_role key; anon keys cannot read auth.users.
func NewSupabaseIdentityRepository(baseURL, serviceRoleKey string, logger *zap.Logger) provider.IdentityService {
	return &SupabaseIdentityRepository{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:        baseURL,
		serviceRoleKey: serviceRoleKey,
		logger:         logger,
	}
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetUserByID returns nil, nil when the user does not exist
func (r *SupabaseIdentityRepository) GetUserByID(ctx context.Context, userID string) (*entity.Identity, error) {
	startTime := time.Now()
	queryURL := fmt.Sprintf("%s/auth/v1/admin/users/%s", r.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, domainErrors.NewIdentityUnavailableError(userID, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("apikey", r.serviceRoleKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	requestDuration := time.Since(startTime)
	if err != nil {
		r.logger.Error("SupabaseIdentity: HTTP request failed",
			zap.String("user_id", userID),
			zap.String("step", "execute_http_request"),
			zap.String("status", "failed"),
			zap.Duration("request_duration", requestDuration),
			zap.Error(err))
		return nil, domainErrors.NewIdentityUnavailableError(userID, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		r.logger.Debug("SupabaseIdentity: User not found",
			zap.String("user_id", userID),
			zap.Int("status_code", resp.StatusCode))
		return nil, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("SupabaseIdentity: Service key rejected",
			zap.String("user_id", userID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("suggested_fix", "Ensure supabase.service_role_key holds the service_role key"),
			zap.ByteString("response_body", body))
		return nil, domainErrors.NewIdentityUnauthorizedError(userID)
	default:
		body, _ := io.ReadAll(resp.Body)
		r.logger.Warn("SupabaseIdentity: Unexpected status",
			zap.String("user_id", userID),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", body),
			zap.String("step", "check_response_status"),
			zap.String("status", "failed"))
		return nil, domainErrors.NewIdentityUnavailableError(userID,
			fmt.Errorf("supabase API error: status %d", resp.StatusCode))
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		r.logger.Error("SupabaseIdentity: Failed to decode JSON response",
			zap.String("user_id", userID),
			zap.String("step", "parse_json_response"),
			zap.Error(err))
		return nil, domainErrors.NewIdentityUnavailableError(userID, fmt.Errorf("failed to decode response: %w", err))
	}

	r.logger.Debug("SupabaseIdentity: User lookup completed",
		zap.String("user_id", userID),
		zap.String("step", "repository_complete"),
		zap.String("status", "success"),
		zap.Duration("total_repository_duration", time.Since(startTime)))

	return &entity.Identity{ID: user.ID, Email: user.Email}, nil
}
