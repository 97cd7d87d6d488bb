package provider

import (
	"context"
	"time"

	"github.com/stashway/stashway-backend/internal/domain/entity"
)

// VisionModel answers a text prompt about one image.
type VisionModel interface {
	GenerateContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// Name returns the provider name for logs and audit detail
	Name() string
}

// BlobStorage stores uploaded screenshots.
type BlobStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
	CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// IdentityService looks up users in the auth platform. Admin use only.
type IdentityService interface {
	GetUserByID(ctx context.Context, userID string) (*entity.Identity, error)
}

// Mailer dispatches plain-text email.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// Publisher fans out realtime messages to connected clients.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}
