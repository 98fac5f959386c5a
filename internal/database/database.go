package database

import (
	"fmt"
	"time"

	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/tracking"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres establishes the production connection and performs schema
// migrations.
func OpenPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	db, err := Open(postgres.Open(dsn), logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Open connects through the provided dialector and migrates the schema. Tests
// pass an in-memory sqlite dialector; production goes through OpenPostgres.
func Open(dialector gorm.Dialector, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&tracking.Visitor{},
		&pricing.Item{},
		&orders.Order{},
		&orders.SearchedPlace{},
		&migrationRecord{},
	); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized")
	}

	return db, nil
}
