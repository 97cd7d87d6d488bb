package database

import (
	"fmt"

	"github.com/stashway/stashway-backend/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// appendOnlyTables reject UPDATE and DELETE at the database level
var appendOnlyTables = []string{"payment_events", "payment_extractions"}

// Migrate runs database migrations. Postgres-only objects are skipped on other dialects.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running GORM auto-migrations...")
	err := db.AutoMigrate(
		&model.PaymentRequest{},
		&model.PaymentExtraction{},
		&model.PaymentEvent{},
		&model.UserSubscription{},
		&model.Notification{},
		&model.Celebration{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	if db.Dialector.Name() != "postgres" {
		logger.Info("Skipping Postgres constraints and triggers", zap.String("dialect", db.Dialector.Name()))
		return nil
	}

	logger.Info("Creating custom indexes and constraints...")
	if err := createConstraints(db); err != nil {
		logger.Error("Failed to create constraints", zap.Error(err))
		return err
	}

	logger.Info("Creating append-only triggers...")
	if err := createAppendOnlyTriggers(db, logger); err != nil {
		logger.Error("Failed to create append-only triggers", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func createConstraints(db *gorm.DB) error {
	statements := []string{
		// Pending work for the admin queue
		`CREATE INDEX IF NOT EXISTS idx_payment_requests_pending ON payment_requests (created_at) WHERE status IN ('user_uploaded', 'ai_parsed', 'admin_uploaded')`,
		`ALTER TABLE payment_requests DROP CONSTRAINT IF EXISTS chk_payment_requests_status`,
		`ALTER TABLE payment_requests ADD CONSTRAINT chk_payment_requests_status CHECK (status IN ('generated', 'user_uploaded', 'ai_parsed', 'admin_uploaded', 'verified', 'rejected', 'expired'))`,
		`ALTER TABLE payment_requests DROP CONSTRAINT IF EXISTS chk_payment_requests_reference`,
		`ALTER TABLE payment_requests ADD CONSTRAINT chk_payment_requests_reference CHECK (reference_code ~ '^[A-HJ-NP-Z2-9]{24}$')`,
		`ALTER TABLE payment_requests DROP CONSTRAINT IF EXISTS chk_payment_requests_amount`,
		`ALTER TABLE payment_requests ADD CONSTRAINT chk_payment_requests_amount CHECK (amount_expected > 0)`,
		`ALTER TABLE payment_extractions DROP CONSTRAINT IF EXISTS chk_payment_extractions_kind`,
		`ALTER TABLE payment_extractions ADD CONSTRAINT chk_payment_extractions_kind CHECK (kind IN ('payer_submitted', 'admin_submitted'))`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func createAppendOnlyTriggers(db *gorm.DB, logger *zap.Logger) error {
	functionSQL := `
CREATE OR REPLACE FUNCTION reject_append_only_change()
RETURNS TRIGGER AS $$
BEGIN
    RAISE EXCEPTION '% is append-only', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql;`

	if err := db.Exec(functionSQL).Error; err != nil {
		logger.Error("Failed to create append-only trigger function", zap.Error(err))
		return err
	}

	for _, table := range appendOnlyTables {
		dropSQL := fmt.Sprintf(`DROP TRIGGER IF EXISTS append_only_%s ON %s;`, table, table)
		if err := db.Exec(dropSQL).Error; err != nil {
			logger.Warn("Failed to drop existing trigger", zap.String("table", table), zap.Error(err))
		}

		triggerSQL := fmt.Sprintf(`
CREATE TRIGGER append_only_%s
    BEFORE UPDATE OR DELETE ON %s
    FOR EACH ROW EXECUTE FUNCTION reject_append_only_change();`, table, table)
		if err := db.Exec(triggerSQL).Error; err != nil {
			logger.Error("Failed to create append-only trigger", zap.String("table", table), zap.Error(err))
			return err
		}
		logger.Info("Created append-only trigger", zap.String("table", table))
	}

	return nil
}
