package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medimanage/api/internal/config"
	"github.com/medimanage/api/internal/domain"
	"github.com/medimanage/api/internal/domain/calculation"
	"github.com/medimanage/api/internal/domain/medicine"
	"github.com/medimanage/api/internal/domain/prescription"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"auth", "catalog", "ledger", "audit"} // logical namespaces
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&medicine.Medicine{},
		&calculation.Calculation{},
		&prescription.Prescription{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Catalog search: GIN trigram indexes for case-insensitive substring match
		{
			name:  "idx_medicines_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicines_name_trgm ON catalog.medicines USING gin (name gin_trgm_ops)`,
		},
		{
			name:  "idx_medicines_composition_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicines_composition_trgm ON catalog.medicines USING gin ((short_composition1 || ' ' || coalesce(short_composition2, '')) gin_trgm_ops)`,
		},
		{
			name:  "idx_medicines_manufacturer_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicines_manufacturer_trgm ON catalog.medicines USING gin (manufacturer gin_trgm_ops)`,
		},
		// Calendar queries scan a user's prescriptions by date range
		{
			name:  "idx_prescriptions_user_range",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_user_range ON ledger.prescriptions (user_id, start_date, end_date)`,
		},
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return fmt.Errorf("enabling pg_trgm: %w", err)
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
