package database

import (
	"fmt"
	"log/slog"
	"time"

	"recipehub/internal/config"
	"recipehub/internal/middleware/auth"
	"recipehub/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxConnectAttempts = 5
	connectRetryDelay  = 2 * time.Second
)

// Connect opens the database, retrying while the server comes up, and runs
// the schema migration.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if cfg.IsDevelopment() {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		db, err = open(cfg, gormConfig)
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying",
			"attempt", attempt,
			"max_attempts", maxConnectAttempts,
			"error", err,
		)
		time.Sleep(connectRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database connected", "driver", cfg.DBDriver)
	return db, nil
}

func open(cfg *config.Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Rating{},
		&models.RefreshToken{},
		&models.HomepageContent{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedSuperAdmin creates the initial super admin account when the configured
// username does not exist yet. A blank configuration skips seeding.
func SeedSuperAdmin(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	if cfg.SeedAdminUsername == "" || cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ?", cfg.SeedAdminUsername).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing super admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}
	admin := &models.User{
		ID:       uuid.NewString(),
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: hash,
		Role:     "super_admin",
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}
	log.Info("seeded super admin account", "username", cfg.SeedAdminUsername)
	return nil
}
