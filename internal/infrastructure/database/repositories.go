package database

import (
	"github.com/stashway/stashway-backend/internal/adapter/repository"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	PaymentRequest domainRepo.PaymentRequestRepository
	Extraction     domainRepo.ExtractionRepository
	Event          domainRepo.PaymentEventRepository
	Subscription   domainRepo.SubscriptionRepository
	Notification   domainRepo.NotificationRepository
}

// NewRepositories creates repository instances sharing one connection
func NewRepositories(db *gorm.DB, sealer repository.SecretSealer, logger *zap.Logger) *Repositories {
	return &Repositories{
		PaymentRequest: repository.NewPaymentRequestRepository(db, sealer, logger),
		Extraction:     repository.NewExtractionRepository(db, logger),
		Event:          repository.NewPaymentEventRepository(db, logger),
		Subscription:   repository.NewSubscriptionRepository(db, logger),
		Notification:   repository.NewNotificationRepository(db, logger),
	}
}
