package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	httpHandler "github.com/stashway/stashway-backend/internal/adapter/handler/http"
	"github.com/stashway/stashway-backend/internal/adapter/repository"
	"github.com/stashway/stashway-backend/internal/config"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/infrastructure/crypto"
	"github.com/stashway/stashway-backend/internal/infrastructure/database"
	grpcServer "github.com/stashway/stashway-backend/internal/infrastructure/grpc"
	httpServer "github.com/stashway/stashway-backend/internal/infrastructure/http"
	"github.com/stashway/stashway-backend/internal/infrastructure/mail"
	providerFactory "github.com/stashway/stashway-backend/internal/infrastructure/provider"
	"github.com/stashway/stashway-backend/internal/infrastructure/storage"
	"github.com/stashway/stashway-backend/internal/middleware/auth"
	"github.com/stashway/stashway-backend/internal/usecase"
	"github.com/stashway/stashway-backend/pkg/logger"
	"github.com/stashway/stashway-backend/pkg/messaging"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	secretBox, err := crypto.NewAESSecretBox(cfg.Security.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("Failed to initialize secret box", zap.Error(err))
	}
	repos := database.NewRepositories(db, secretBox, zapLogger)

	blobs, err := storage.NewS3Storage(ctx, cfg.Storage, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize screenshot storage", zap.Error(err))
	}

	vision, err := providerFactory.NewFactory(cfg.AI, zapLogger).GetVisionModel(ctx)
	if err != nil {
		zapLogger.Fatal("Failed to initialize vision model", zap.Error(err))
	}
	if closer, ok := vision.(io.Closer); ok {
		defer closer.Close()
	}

	receiptZone, err := cfg.MMG.Location()
	if err != nil {
		zapLogger.Fatal("Failed to resolve receipt timezone", zap.Error(err))
	}

	notifications := usecase.NewNotificationSink(repos.Notification,
		notificationOptions(cfg, zapLogger), zapLogger)
	subscriptions := usecase.NewSubscriptionActivator(repos.Subscription, zapLogger)

	requests := usecase.NewPaymentRequestService(repos.PaymentRequest, usecase.NewReferenceGenerator(),
		usecase.RequestSettings{
			PayeeIdentifier: cfg.MMG.PayeeIdentifier,
			Currency:        cfg.MMG.Currency,
			Prices:          planPrices(cfg.MMG),
			TTL:             cfg.MMG.RequestTTL,
		}, zapLogger)

	verification := usecase.NewVerificationService(usecase.VerificationDeps{
		Requests:    requests,
		Extractions: repos.Extraction,
		Events:      repos.Event,
		Blobs:       blobs,
		Extractor:   usecase.NewEvidenceExtractor(vision, cfg.MMG.ExtractionTimeout, zapLogger),
		Reconciler: usecase.NewReconciler(usecase.ReconciliationRules{
			AmountTolerance: cfg.MMG.Tolerance(),
			TimestampWindow: cfg.MMG.TimestampWindow,
			Location:        receiptZone,
		}),
		Activator: subscriptions,
		Notifier:  notifications,
	}, zapLogger)

	review := usecase.NewAdminReviewService(requests, repos.Extraction, repos.Event,
		blobs, cfg.Storage.SignedURLTTL, zapLogger)

	handlers := httpServer.Handlers{
		Payment: httpHandler.NewPaymentHandler(requests, verification, subscriptions, notifications,
			cfg.MMG.MaxUploadBytes, zapLogger),
		Admin: httpHandler.NewAdminHandler(verification, review, cfg.MMG.MaxUploadBytes, zapLogger),
	}

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, handlers, auth.NewEmailAdminPolicy(cfg.MMG.AdminEmails))

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers stopped")
}

func planPrices(cfg config.MMGConfig) map[entity.Plan]decimal.Decimal {
	prices := make(map[entity.Plan]decimal.Decimal, len(entity.PaidPlans))
	for _, plan := range entity.PaidPlans {
		if price, ok := cfg.Price(plan.String()); ok {
			prices[plan] = price
		}
	}
	return prices
}

func notificationOptions(cfg *config.Config, zapLogger *zap.Logger) usecase.NotificationOptions {
	opts := usecase.NotificationOptions{
		Channel:     cfg.Redis.NotificationChannel,
		AdminEmails: cfg.MMG.AdminEmails,
	}

	if cfg.Redis.Enabled() {
		publisher, err := messaging.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The inbox row is still written without realtime fan-out
			zapLogger.Warn("Redis unavailable, notifications will not be published", zap.Error(err))
		} else {
			opts.Publisher = publisher
		}
	}

	if cfg.Email.Enabled() {
		opts.Mailer = mail.NewSMTPMailer(cfg.Email, zapLogger)
	}

	if cfg.Supabase.ProjectURL != "" && cfg.Supabase.ServiceRoleKey != "" {
		opts.Identity = repository.NewSupabaseIdentityRepository(cfg.Supabase.ProjectURL, cfg.Supabase.ServiceRoleKey, zapLogger)
	}

	return opts
}
