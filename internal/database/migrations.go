package database

import (
	"errors"
	"time"

	"github.com/listingshield/backend/internal/pricing"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const migrationSeedPricingCatalog = "2026-01-12_seed_pricing_catalog"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationSeedPricingCatalog, apply: seedPricingCatalog},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

func seedPricingCatalog(db *gorm.DB) error {
	describe := func(text string) *string { return &text }
	defaults := []pricing.Item{
		{
			Code:        pricing.CodeRemove,
			Name:        "Google Business Profile Removal",
			Price:       499,
			Type:        pricing.ItemTypeService,
			Description: describe("Full removal of the business profile from Google Maps and Search."),
			IsActive:    true,
		},
		{
			Code:        pricing.CodeReset,
			Name:        "Google Business Profile Reset",
			Price:       299,
			Type:        pricing.ItemTypeService,
			Description: describe("Reset of reviews and listing history for an existing profile."),
			IsActive:    true,
		},
		{
			Code:        pricing.CodeYearProtection,
			Name:        "1-Year Re-listing Protection",
			Price:       199,
			Type:        pricing.ItemTypeAddon,
			Description: describe("Monitoring and repeated takedown for one year after removal."),
			IsActive:    true,
		},
		{
			Code:        pricing.CodeExpressService,
			Name:        "Express Service",
			Price:       149,
			Type:        pricing.ItemTypeAddon,
			Description: describe("Processing starts within 24 hours of payment."),
			IsActive:    true,
		},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}
