package db

import (
	"github.com/hpatel/profilesync-backend/internal/app/model"
	"github.com/hpatel/profilesync-backend/pkg/logger"
)

// Migrate runs the schema migrations for the audit store.
func Migrate() error {
	logger.Info("Running database migrations", nil)

	if err := DB.AutoMigrate(
		&model.PaymentTransaction{},
	); err != nil {
		return err
	}

	logger.Info("Database migrations completed", nil)
	return nil
}
